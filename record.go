package ntpcli

// Record pairs the local times of one exchange with the decoded reply.
// Send and Recv are in the engine's time base.
type Record struct {
	Send      int64
	Recv      int64
	Responder string
	Packet    *Packet
}

// Midpoint is the middle of the server's receive and transmit
// timestamps in local units. It approximates the server clock while it
// was handling the request; it is not an NTP offset.
func (r *Record) Midpoint(tb TimeBase) int64 {
	rx := tb.Ticks(r.Packet.Receive)
	tx := tb.Ticks(r.Packet.Transmit)
	return rx + (tx-rx)/2
}

func (r *Record) RoundTrip() int64 {
	return r.Recv - r.Send
}

// Offset is the server midpoint minus the local midpoint.
func (r *Record) Offset(tb TimeBase) int64 {
	return r.Midpoint(tb) - (r.Send + r.RoundTrip()/2)
}

// Sink consumes records as they are produced.
type Sink interface {
	Write(r *Record) error
}
