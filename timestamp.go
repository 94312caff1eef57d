package ntpcli

import (
	"time"
)

var (
	ntpEpoch      = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	fileTimeEpoch = time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC)
	unixEpoch     = time.Unix(0, 0).UTC()
)

// Timestamp is the 64 bit NTP timestamp: seconds since 1900-01-01 and a
// fraction of 1/2^32 second.
type Timestamp struct {
	Seconds  uint32
	Fraction uint32
}

// ShortTime is the 32 bit NTP short format: seconds and a fraction of
// 1/2^16 second. Root delay and root dispersion use it.
type ShortTime struct {
	Seconds  uint16
	Fraction uint16
}

// Uint64 returns the timestamp as it appears on the wire.
func (t Timestamp) Uint64() uint64 {
	return uint64(t.Seconds)<<32 | uint64(t.Fraction)
}

// Time returns t as a time.Time in the first NTP era.
func (t Timestamp) Time() time.Time {
	nsec := int64(uint64(t.Fraction) * nanoPerSec >> 32)
	return ntpEpoch.Add(time.Duration(t.Seconds) * time.Second).Add(time.Duration(nsec))
}

func timestampFromUint64(v uint64) Timestamp {
	return Timestamp{Seconds: uint32(v >> 32), Fraction: uint32(v)}
}

func (s ShortTime) Uint32() uint32 {
	return uint32(s.Seconds)<<16 | uint32(s.Fraction)
}

// Nanoseconds converts the short format duration to nanoseconds.
func (s ShortTime) Nanoseconds() int64 {
	frac := uint64(s.Fraction) * nanoPerSec >> 16
	return int64(s.Seconds)*nanoPerSec + int64(frac)
}

func (s ShortTime) Duration() time.Duration {
	return time.Duration(s.Nanoseconds())
}

func shortTimeFromUint32(v uint32) ShortTime {
	return ShortTime{Seconds: uint16(v >> 16), Fraction: uint16(v)}
}

// TimeBase describes the local time unit records are expressed in: a
// count of Unit since Epoch.
type TimeBase struct {
	Name  string
	Epoch time.Time
	Unit  time.Duration
}

var (
	// FileTime counts 100ns ticks since 1601-01-01 UTC.
	FileTime = TimeBase{Name: "filetime", Epoch: fileTimeEpoch, Unit: 100 * time.Nanosecond}

	// UnixNano counts nanoseconds since 1970-01-01 UTC.
	UnixNano = TimeBase{Name: "unixnano", Epoch: unixEpoch, Unit: time.Nanosecond}
)

// TimeBaseByName returns the named time base.
func TimeBaseByName(name string) (TimeBase, bool) {
	switch name {
	case FileTime.Name:
		return FileTime, true
	case UnixNano.Name:
		return UnixNano, true
	}
	return TimeBase{}, false
}

func (tb TimeBase) unitsPerSec() int64 {
	return int64(time.Second / tb.Unit)
}

// EpochOffset is the NTP epoch expressed in local units.
func (tb TimeBase) EpochOffset() int64 {
	sec := ntpEpoch.Unix() - tb.Epoch.Unix()
	return sec * tb.unitsPerSec()
}

// Ticks converts an NTP timestamp into local units. The fraction is
// scaled to nanoseconds before it is reduced to the local unit.
func (tb TimeBase) Ticks(t Timestamp) int64 {
	frac := int64(uint64(t.Fraction) * nanoPerSec >> 32)
	return tb.EpochOffset() + int64(t.Seconds)*tb.unitsPerSec() + frac/int64(tb.Unit)
}

// FromTime converts a local clock reading into local units.
func (tb TimeBase) FromTime(t time.Time) int64 {
	sec := t.Unix() - tb.Epoch.Unix()
	return sec*tb.unitsPerSec() + int64(t.Nanosecond())/int64(tb.Unit)
}

// Seconds converts a count of local units into seconds.
func (tb TimeBase) Seconds(ticks int64) float64 {
	return float64(ticks) * tb.Unit.Seconds()
}
