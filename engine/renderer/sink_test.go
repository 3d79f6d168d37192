package renderer

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCountingSinkAndTee(t *testing.T) {
	a, b := NewCountingSink(), NewCountingSink()
	sink := Tee(a, b)

	batches := [][]mgl32.Mat4{
		{mgl32.Ident4(), mgl32.Ident4(), mgl32.Ident4()},
		nil,
		{mgl32.Translate3D(1, 2, 3)},
	}
	for _, batch := range batches {
		sink.Consume(batch)
	}

	for index, c := range []*CountingSink{a, b} {
		if c.Frames() != 3 || c.Last() != 1 || c.Total() != 4 {
			t.Fatalf("[sink %d] expected frames=3 last=1 total=4; got frames=%d last=%d total=%d",
				index, c.Frames(), c.Last(), c.Total())
		}
	}
}

func TestDumpSinkKeepsLastBuffer(t *testing.T) {
	dump := NewDumpSink()
	dump.Consume([]mgl32.Mat4{mgl32.Translate3D(9, 9, 9)})
	dump.Consume([]mgl32.Mat4{mgl32.Translate3D(1, 2, 3), mgl32.Translate3D(-4, 5, -6)})

	if dump.Len() != 2 {
		t.Fatalf("expected 2 transforms; got %d", dump.Len())
	}

	var buf bytes.Buffer
	n, err := dump.WriteTo(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2*transformSize {
		t.Fatalf("expected %d bytes; got %d", 2*transformSize, n)
	}

	// Column 3 holds the translation: floats 12..14 of each 16-float record.
	data := buf.Bytes()
	float := func(record, index int) float32 {
		offset := record*transformSize + index*4
		return math.Float32frombits(binary.NativeEndian.Uint32(data[offset:]))
	}
	expect := [][3]float32{{1, 2, 3}, {-4, 5, -6}}
	for record, xyz := range expect {
		for axis, want := range xyz {
			if got := float(record, 12+axis); got != want {
				t.Fatalf("[record %d] expected axis %d = %v; got %v", record, axis, want, got)
			}
		}
	}

	dump.Consume(nil)
	buf.Reset()
	if n, _ := dump.WriteTo(&buf); n != 0 || dump.Len() != 0 {
		t.Fatalf("expected an empty dump; got %d bytes, %d transforms", n, dump.Len())
	}
}
