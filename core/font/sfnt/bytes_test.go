package sfnt

import (
	"testing"
	"time"

	"github.com/aslpavel/icon-viewer/core"
)

func TestReaderPrimitives(t *testing.T) {
	r := NewReader([]byte{
		0x01,
		0xFF,
		0x01, 0x02,
		0xFF, 0xFE,
		0x00, 0x00, 0x00, 0x2A,
	})
	if n, err := r.U8(); err != nil || n != 1 {
		t.Errorf("expected u8 1, got %d (%v)", n, err)
	}
	if n, err := r.I8(); err != nil || n != -1 {
		t.Errorf("expected i8 -1, got %d (%v)", n, err)
	}
	if n, err := r.U16(); err != nil || n != 0x0102 {
		t.Errorf("expected u16 0x0102, got 0x%x (%v)", n, err)
	}
	if n, err := r.I16(); err != nil || n != -2 {
		t.Errorf("expected i16 -2, got %d (%v)", n, err)
	}
	if n, err := r.U32(); err != nil || n != 42 {
		t.Errorf("expected u32 42, got %d (%v)", n, err)
	}
	if r.Tell() != 10 {
		t.Errorf("expected cursor at 10, is %d", r.Tell())
	}
}

func TestReaderTruncated(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	if _, err := r.U32(); core.Code(err) != core.ETRUNCATED {
		t.Errorf("expected ETRUNCATED reading u32 from 2 bytes, got %v", err)
	}
	// a failed read must not move the cursor
	if r.Tell() != 0 {
		t.Errorf("expected cursor to stay at 0, is %d", r.Tell())
	}
	if n, err := r.U16(); err != nil || n != 0x0102 {
		t.Errorf("expected u16 0x0102 after failed read, got 0x%x (%v)", n, err)
	}
	if _, err := r.U8(); core.Code(err) != core.ETRUNCATED {
		t.Errorf("expected ETRUNCATED at end of data, got %v", err)
	}
}

func TestReaderSeekAdvance(t *testing.T) {
	r := NewReader([]byte{0, 1, 2, 3, 4, 5, 6, 7})
	r.Seek(-2) // negative seeks from the end
	if n, _ := r.U8(); n != 6 {
		t.Errorf("expected byte 6 at offset -2, got %d", n)
	}
	r.Seek(100)
	if r.Tell() != 8 {
		t.Errorf("expected seek past end to clamp to 8, is %d", r.Tell())
	}
	r.Advance(-100)
	if r.Tell() != 0 {
		t.Errorf("expected advance to clamp at 0, is %d", r.Tell())
	}
	r.Advance(3)
	if r.Tell() != 3 {
		t.Errorf("expected cursor at 3, is %d", r.Tell())
	}
}

func TestReaderView(t *testing.T) {
	r := NewReader([]byte{0, 1, 2, 3, 4, 5})
	v := r.View(2, 4)
	if v.Len() != 2 {
		t.Fatalf("expected view of 2 bytes, got %d", v.Len())
	}
	if n, _ := v.U16(); n != 0x0203 {
		t.Errorf("expected view to read 0x0203, got 0x%x", n)
	}
	// views are clamped, not errors
	v = r.View(4, 100)
	if v.Len() != 2 {
		t.Errorf("expected clamped view of 2 bytes, got %d", v.Len())
	}
	v = r.View(7, 9)
	if v.Len() != 0 {
		t.Errorf("expected empty view past the end, got %d bytes", v.Len())
	}
}

func TestReaderFixedPoint(t *testing.T) {
	r := NewReader([]byte{
		0x00, 0x01, 0x80, 0x00, // fixed 1.5
		0xFF, 0xFF, 0x00, 0x00, // fixed -1.0
		0x20, 0x00, // f2dot14 0.5
		0xE0, 0x00, // f2dot14 -0.5
	})
	if v, _ := r.Fixed(); v != 1.5 {
		t.Errorf("expected fixed 1.5, got %g", v)
	}
	if v, _ := r.Fixed(); v != -1.0 {
		t.Errorf("expected fixed -1.0, got %g", v)
	}
	if v, _ := r.F2Dot14(); v != 0.5 {
		t.Errorf("expected f2dot14 0.5, got %g", v)
	}
	if v, _ := r.F2Dot14(); v != -0.5 {
		t.Errorf("expected f2dot14 -0.5, got %g", v)
	}
}

func TestReaderLongDate(t *testing.T) {
	// one day past the 1904 epoch
	r := NewReader([]byte{0, 0, 0, 0, 0, 1, 0x51, 0x80})
	ts, err := r.LongDate()
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(1904, time.January, 2, 0, 0, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("expected %v, got %v", want, ts)
	}
}

func TestReaderString(t *testing.T) {
	r := NewReader([]byte("glyfdata"))
	s, err := r.String(4)
	if err != nil || s != "glyf" {
		t.Errorf("expected 'glyf', got %q (%v)", s, err)
	}
	if _, err := r.String(10); core.Code(err) != core.ETRUNCATED {
		t.Errorf("expected ETRUNCATED, got %v", err)
	}
}
