package ntpcli

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var goldPackets = []struct {
	name string
	p    Packet
}{
	{"zero", Packet{}},
	{"request", *NewRequest()},
	{"all bits", Packet{
		Leap:           3,
		Version:        7,
		Mode:           7,
		Stratum:        0xff,
		Poll:           -1,
		Precision:      -1,
		RootDelay:      ShortTime{0xffff, 0xffff},
		RootDispersion: ShortTime{0xffff, 0xffff},
		ReferenceID:    [4]byte{0xff, 0xff, 0xff, 0xff},
		Reference:      Timestamp{0xffffffff, 0xffffffff},
		Origin:         Timestamp{0xffffffff, 0xffffffff},
		Receive:        Timestamp{0xffffffff, 0xffffffff},
		Transmit:       Timestamp{0xffffffff, 0xffffffff},
	}},
	{"server reply", Packet{
		Leap:           NoLeap,
		Version:        4,
		Mode:           ModeServer,
		Stratum:        1,
		Poll:           6,
		Precision:      -20,
		RootDelay:      ShortTime{0, 0x0010},
		RootDispersion: ShortTime{0, 0x0a3d},
		ReferenceID:    [4]byte{'G', 'P', 'S', 0},
		Reference:      Timestamp{0xe9b1a7c0, 0x12345678},
		Origin:         Timestamp{0xe9b1a7d0, 0x80000000},
		Receive:        Timestamp{0xe9b1a7d0, 0x80a00000},
		Transmit:       Timestamp{0xe9b1a7d0, 0x80b00000},
	}},
}

func TestPacketRoundTrip(t *testing.T) {
	for _, g := range goldPackets {
		b := Encode(&g.p)
		if len(b) != PacketSize {
			t.Errorf("%s: size=%d", g.name, len(b))
		}
		got, next, err := Decode(b, 0)
		if err != nil {
			t.Errorf("%s: %s", g.name, err)
			continue
		}
		if next != PacketSize {
			t.Errorf("%s: next=%d", g.name, next)
		}
		if diff := cmp.Diff(g.p, *got); diff != "" {
			t.Errorf("%s: (-want +got)\n%s", g.name, diff)
		}
	}
}

func TestBytesRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	b := make([]byte, PacketSize)
	for i := 0; i < 1000; i++ {
		r.Read(b)
		p, _, err := Decode(b, 0)
		if err != nil {
			t.Fatal(err)
		}
		if got := Encode(p); !bytes.Equal(got, b) {
			t.Fatalf("encode(decode(%x))=%x", b, got)
		}
	}
}

func TestEncodeLayout(t *testing.T) {
	p := &Packet{
		Leap:           LeapIns,
		Version:        4,
		Mode:           ModeServer,
		Stratum:        2,
		Poll:           10,
		Precision:      -23,
		RootDelay:      ShortTime{1, 0x8000},
		RootDispersion: ShortTime{0, 0x0001},
		ReferenceID:    [4]byte{192, 0, 2, 1},
		Transmit:       Timestamp{0x01020304, 0x05060708},
	}
	b := Encode(p)
	gold := []struct {
		pos  int
		want []byte
	}{
		{LiVnModePos, []byte{0x64}},
		{StratumPos, []byte{2}},
		{PollPos, []byte{10}},
		{ClockPrecisionPos, []byte{0xe9}},
		{RootDelayPos, []byte{0, 1, 0x80, 0}},
		{RootDispersionPos, []byte{0, 0, 0, 1}},
		{ReferIDPos, []byte{192, 0, 2, 1}},
		{TransmitTimeStamp, []byte{1, 2, 3, 4, 5, 6, 7, 8}},
	}
	for _, g := range gold {
		if got := b[g.pos : g.pos+len(g.want)]; !bytes.Equal(got, g.want) {
			t.Errorf("pos=%d want=%x got=%x", g.pos, g.want, got)
		}
	}
}

func TestNewRequestEncoding(t *testing.T) {
	b := Encode(NewRequest())
	if b[0] != 0x23 {
		t.Errorf("flags=%#x", b[0])
	}
	if !bytes.Equal(b[1:], make([]byte, PacketSize-1)) {
		t.Errorf("non zero body %x", b[1:])
	}
}

func TestDecodeFlags(t *testing.T) {
	b := make([]byte, PacketSize)
	b[0] = 0xe3 // 0b11_100_011
	p, _, err := Decode(b, 0)
	if err != nil {
		t.Fatal(err)
	}
	if p.Leap != 3 || p.Version != 4 || p.Mode != 3 {
		t.Errorf("li=%d vn=%d mode=%d", p.Leap, p.Version, p.Mode)
	}
}

func TestDecodeSignedPrecision(t *testing.T) {
	b := make([]byte, PacketSize)
	b[PollPos] = 0xfa
	b[ClockPrecisionPos] = 0xec
	p, _, err := Decode(b, 0)
	if err != nil {
		t.Fatal(err)
	}
	if p.Precision != -20 {
		t.Errorf("precision=%d", p.Precision)
	}
	if p.Poll != -6 {
		t.Errorf("poll=%d", p.Poll)
	}
}

func TestDecodeTruncated(t *testing.T) {
	for n := 0; n < PacketSize; n++ {
		b := make([]byte, n)
		if _, _, err := Decode(b, 0); err != ErrTruncatedPacket {
			t.Errorf("len=%d err=%v", n, err)
		}
	}

	b := make([]byte, 60)
	gold := []struct {
		off int
		ok  bool
	}{
		{-1, false},
		{0, true},
		{12, true},
		{13, false},
		{60, false},
		{61, false},
	}
	for _, g := range gold {
		_, next, err := Decode(b, g.off)
		if (err == nil) != g.ok {
			t.Errorf("off=%d err=%v", g.off, err)
		}
		if g.ok && next != g.off+PacketSize {
			t.Errorf("off=%d next=%d", g.off, next)
		}
		if !g.ok && next != g.off {
			t.Errorf("off=%d moved to %d on error", g.off, next)
		}
	}
}

func TestDecodeAtOffset(t *testing.T) {
	first := goldPackets[3].p
	second := goldPackets[2].p
	b := append([]byte{0xaa, 0xbb}, Encode(&first)...)
	b = second.AppendBinary(b)

	p, off, err := Decode(b, 2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, *p); diff != "" {
		t.Errorf("first (-want +got)\n%s", diff)
	}
	p, off, err = Decode(b, off)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(second, *p); diff != "" {
		t.Errorf("second (-want +got)\n%s", diff)
	}
	if off != len(b) {
		t.Errorf("off=%d len=%d", off, len(b))
	}
	if _, _, err = Decode(b, off); err != ErrTruncatedPacket {
		t.Errorf("err=%v", err)
	}
}

func TestBinaryMarshaler(t *testing.T) {
	want := goldPackets[3].p
	b, err := want.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var got Packet
	if err = got.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Error(diff)
	}
	if err = got.UnmarshalBinary(b[:10]); err != ErrTruncatedPacket {
		t.Errorf("err=%v", err)
	}
}

func TestFlagHelpers(t *testing.T) {
	m := make([]byte, PacketSize)
	SetLi(m, NotSync)
	SetVersion(m, 4)
	SetMode(m, ModeClient)
	if m[0] != 0xe3 {
		t.Errorf("flags=%#x", m[0])
	}
	SetVersion(m, 3)
	if GetLi(m) != NotSync || GetVersion(m) != 3 || GetMode(m) != ModeClient {
		t.Errorf("li=%d vn=%d mode=%d", GetLi(m), GetVersion(m), GetMode(m))
	}
	SetMode(m, 0xff)
	if GetMode(m) != 7 || GetVersion(m) != 3 {
		t.Errorf("mode overflowed into version: %#x", m[0])
	}
}

func BenchmarkEncode(b *testing.B) {
	p := goldPackets[3].p
	buf := make([]byte, 0, PacketSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf = p.AppendBinary(buf[:0])
	}
}

func BenchmarkDecode(b *testing.B) {
	buf := Encode(&goldPackets[3].p)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Decode(buf, 0)
	}
}
