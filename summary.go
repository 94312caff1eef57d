package ntpcli

import (
	"sync"

	"github.com/apex/log"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

var errNoSample = errors.New("no sample collected")

// Summary accumulates offsets and round trips in seconds over a run.
type Summary struct {
	mu     sync.Mutex
	offset stats.Float64Data
	rtt    stats.Float64Data
}

type SummaryStats struct {
	Count        int
	OffsetMedian float64
	OffsetStdDev float64
	RTTMedian    float64
	RTTStdDev    float64
	RTTMin       float64
}

func (s *Summary) Add(r *Record, tb TimeBase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset = append(s.offset, tb.Seconds(r.Offset(tb)))
	s.rtt = append(s.rtt, tb.Seconds(r.RoundTrip()))
}

func (s *Summary) Stats() (st SummaryStats, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st.Count = len(s.rtt)
	if st.Count == 0 {
		return st, errNoSample
	}
	if st.OffsetMedian, err = s.offset.Median(); err != nil {
		return
	}
	if st.OffsetStdDev, err = s.offset.StandardDeviation(); err != nil {
		return
	}
	if st.RTTMedian, err = s.rtt.Median(); err != nil {
		return
	}
	if st.RTTStdDev, err = s.rtt.StandardDeviation(); err != nil {
		return
	}
	st.RTTMin, err = s.rtt.Min()
	return
}

// Fields renders the statistics as durations for structured logging.
func (st SummaryStats) Fields() log.Fields {
	return log.Fields{
		"count":         st.Count,
		"offset_median": secondToDuration(st.OffsetMedian),
		"offset_stddev": secondToDuration(st.OffsetStdDev),
		"rtt_median":    secondToDuration(st.RTTMedian),
		"rtt_stddev":    secondToDuration(st.RTTStdDev),
		"rtt_min":       secondToDuration(st.RTTMin),
	}
}
