package ntpcli

import (
	"encoding/binary"
)

// Packet is an NTP v4 header without extension fields.
type Packet struct {
	Leap           uint8
	Version        uint8
	Mode           uint8
	Stratum        uint8
	Poll           int8
	Precision      int8
	RootDelay      ShortTime
	RootDispersion ShortTime
	ReferenceID    [4]byte
	Reference      Timestamp
	Origin         Timestamp
	Receive        Timestamp
	Transmit       Timestamp
}

// NewRequest returns a client request with every timestamp left zero.
func NewRequest() *Packet {
	return &Packet{
		Leap:    NoLeap,
		Version: Version,
		Mode:    ModeClient,
	}
}

// Encode serializes p into exactly PacketSize bytes.
func Encode(p *Packet) []byte {
	return p.AppendBinary(make([]byte, 0, PacketSize))
}

// AppendBinary appends the wire form of p to b.
func (p *Packet) AppendBinary(b []byte) []byte {
	start := len(b)
	b = append(b, make([]byte, PacketSize)...)
	m := b[start:]

	SetLi(m, p.Leap)
	SetVersion(m, p.Version)
	SetMode(m, p.Mode)
	SetUint8(m, StratumPos, p.Stratum)
	SetInt8(m, PollPos, p.Poll)
	SetInt8(m, ClockPrecisionPos, p.Precision)
	SetUint32(m, RootDelayPos, p.RootDelay.Uint32())
	SetUint32(m, RootDispersionPos, p.RootDispersion.Uint32())
	copy(m[ReferIDPos:ReferIDPos+4], p.ReferenceID[:])
	SetUint64(m, ReferenceTimeStamp, p.Reference.Uint64())
	SetUint64(m, OriginTimeStamp, p.Origin.Uint64())
	SetUint64(m, ReceiveTimeStamp, p.Receive.Uint64())
	SetUint64(m, TransmitTimeStamp, p.Transmit.Uint64())
	return b
}

func (p *Packet) MarshalBinary() ([]byte, error) {
	return Encode(p), nil
}

// Decode reads one packet from b starting at off and returns it along
// with the offset just past it.
func Decode(b []byte, off int) (p *Packet, next int, err error) {
	if off < 0 || off > len(b) || len(b)-off < PacketSize {
		return nil, off, ErrTruncatedPacket
	}
	m := b[off : off+PacketSize]
	// BCE
	_ = m[PacketSize-1]

	p = &Packet{}
	p.Leap, p.Version, p.Mode = GetLi(m), GetVersion(m), GetMode(m)
	p.Stratum = m[StratumPos]
	p.Poll = int8(m[PollPos])
	p.Precision = int8(m[ClockPrecisionPos])
	p.RootDelay = shortTimeFromUint32(binary.BigEndian.Uint32(m[RootDelayPos:]))
	p.RootDispersion = shortTimeFromUint32(binary.BigEndian.Uint32(m[RootDispersionPos:]))
	copy(p.ReferenceID[:], m[ReferIDPos:ReferIDPos+4])
	p.Reference = timestampFromUint64(binary.BigEndian.Uint64(m[ReferenceTimeStamp:]))
	p.Origin = timestampFromUint64(binary.BigEndian.Uint64(m[OriginTimeStamp:]))
	p.Receive = timestampFromUint64(binary.BigEndian.Uint64(m[ReceiveTimeStamp:]))
	p.Transmit = timestampFromUint64(binary.BigEndian.Uint64(m[TransmitTimeStamp:]))
	return p, off + PacketSize, nil
}

func (p *Packet) UnmarshalBinary(b []byte) error {
	q, _, err := Decode(b, 0)
	if err != nil {
		return err
	}
	*p = *q
	return nil
}

// ReferenceText renders the reference ID the way it is meant for the
// packet's stratum.
func (p *Packet) ReferenceText() string {
	return ReferenceText(p.Stratum, p.ReferenceID)
}
