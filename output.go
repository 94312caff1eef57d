package ntpcli

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

var longHeader = []string{
	"ip", "sendTime", "recvTime",
	"LeapIndicator", "Version", "Stratum", "Poll", "Precision",
	"RootDelay", "RootDispersion", "Reference",
	"ReceiveTx", "TransmitTx",
}

// CSVSink prints one line per record in the short or long form.
type CSVSink struct {
	w    *csv.Writer
	form Form
	tb   TimeBase
}

func NewCSVSink(w io.Writer, form Form, tb TimeBase) *CSVSink {
	return &CSVSink{w: csv.NewWriter(w), form: form, tb: tb}
}

// WriteHeader prints the column names of the long form. The short form
// has no header.
func (s *CSVSink) WriteHeader() error {
	if s.form != FormLong {
		return nil
	}
	return s.flush(s.w.Write(longHeader))
}

func (s *CSVSink) Write(r *Record) error {
	if r.Packet == nil {
		return errors.New("record without packet")
	}
	return s.flush(s.w.Write(s.row(r)))
}

func (s *CSVSink) row(r *Record) []string {
	itoa := func(v int64) string { return strconv.FormatInt(v, 10) }
	p := r.Packet
	if s.form != FormLong {
		return []string{itoa(r.Send), itoa(r.Recv), itoa(r.Midpoint(s.tb))}
	}
	return []string{
		r.Responder,
		itoa(r.Send),
		itoa(r.Recv),
		itoa(int64(p.Leap)),
		itoa(int64(p.Version)),
		itoa(int64(p.Stratum)),
		itoa(int64(p.Poll)),
		itoa(int64(p.Precision)),
		formatSeconds(p.RootDelay),
		formatSeconds(p.RootDispersion),
		p.ReferenceText(),
		itoa(s.tb.Ticks(p.Receive)),
		itoa(s.tb.Ticks(p.Transmit)),
	}
}

func formatSeconds(st ShortTime) string {
	return strconv.FormatFloat(float64(st.Nanoseconds())/nanoPerSec, 'f', 6, 64)
}

func (s *CSVSink) flush(err error) error {
	if err != nil {
		return errors.Wrap(err, "write csv")
	}
	s.w.Flush()
	return errors.Wrap(s.w.Error(), "flush csv")
}
