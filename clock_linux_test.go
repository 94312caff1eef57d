package ntpcli

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestStatusToString(t *testing.T) {
	gold := []struct {
		status int32
		want   string
	}{
		{0, ""},
		{staPLL, "PLL"},
		{staPLL | staUNSYNC, "PLL,UNSYNC"},
		{staINS | staNANO | staCLK, "INS,NANO,CLK"},
	}
	for _, g := range gold {
		if got := statusToString(g.status); got != g.want {
			t.Errorf("%#x want=%q got=%q", g.status, g.want, got)
		}
	}
}

func TestSystemPrecision(t *testing.T) {
	gold := []struct {
		tmx  unix.Timex
		want int8
	}{
		{unix.Timex{Precision: 0}, -20},
		{unix.Timex{Precision: 1}, -20},
		{unix.Timex{Precision: 2}, -19},
		{unix.Timex{Precision: 1000}, -10},
	}
	for _, g := range gold {
		if p := systemPrecision(&g.tmx); p != g.want {
			t.Errorf("precision=%dus want=%d got=%d", g.tmx.Precision, g.want, p)
		}
	}
}

func TestNow(t *testing.T) {
	a := time.Now()
	b := now()
	if d := b.Sub(a); d < -time.Second || d > time.Second {
		t.Errorf("realtime clock off by %s", d)
	}
}
