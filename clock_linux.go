package ntpcli

import (
	"math"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// now reads the realtime clock directly.
func now() time.Time {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_REALTIME, &ts); err != nil {
		return time.Now()
	}
	return time.Unix(ts.Unix())
}

// clockStatus reports the kernel clock precision as a log2 exponent and
// the adjtimex status flags.
func clockStatus() (precision int8, status string, err error) {
	tmx := &unix.Timex{}
	_, err = unix.Adjtimex(tmx)
	if err != nil {
		return
	}
	precision = systemPrecision(tmx)
	status = statusToString(tmx.Status)
	return
}

func systemPrecision(tmx *unix.Timex) int8 {
	// linux 1 for usec
	if tmx.Precision <= 0 {
		return int8(math.Floor(math.Log2(1e-6)))
	}
	return int8(math.Floor(math.Log2(float64(tmx.Precision) * 1e-6)))
}

const (
	staPLL       = 0x0001 /* enable PLL updates (rw) */
	staPPSFREQ   = 0x0002 /* enable PPS freq discipline (rw) */
	staPPSTIME   = 0x0004 /* enable PPS time discipline (rw) */
	staFLL       = 0x0008 /* select frequency-lock mode (rw) */
	staINS       = 0x0010 /* insert leap (rw) */
	staDEL       = 0x0020 /* delete leap (rw) */
	staUNSYNC    = 0x0040 /* clock unsynchronized (rw) */
	staFREQHOLD  = 0x0080 /* hold frequency (rw) */
	staPPSSIGNAL = 0x0100 /* PPS signal present (ro) */
	staPPSJITTER = 0x0200 /* PPS signal jitter exceeded (ro) */
	staPPSWANDER = 0x0400 /* PPS signal wander exceeded (ro) */
	staPPSERROR  = 0x0800 /* PPS signal calibration error (ro) */
	staCLOCKERR  = 0x1000 /* clock hardware fault (ro) */
	staNANO      = 0x2000 /* resolution (0 = us, 1 = ns) (ro) */
	staMODE      = 0x4000 /* mode (0 = PLL, 1 = FLL) (ro) */
	staCLK       = 0x8000 /* clock source (0 = A, 1 = B) (ro) */
)

var staNames = []struct {
	bit  int32
	name string
}{
	{staPLL, "PLL"},
	{staPPSFREQ, "PPSFREQ"},
	{staPPSTIME, "PPSTIME"},
	{staFLL, "FLL"},
	{staINS, "INS"},
	{staDEL, "DEL"},
	{staUNSYNC, "UNSYNC"},
	{staFREQHOLD, "FREQHOLD"},
	{staPPSSIGNAL, "PPSSIGNAL"},
	{staPPSJITTER, "PPSJITTER"},
	{staPPSWANDER, "PPSWANDER"},
	{staPPSERROR, "PPSERROR"},
	{staCLOCKERR, "CLOCKERR"},
	{staNANO, "NANO"},
	{staMODE, "MODE"},
	{staCLK, "CLK"},
}

func statusToString(s int32) string {
	buf := []string{}
	for _, n := range staNames {
		if n.bit&s != 0 {
			buf = append(buf, n.name)
		}
	}
	return strings.Join(buf, ",")
}
