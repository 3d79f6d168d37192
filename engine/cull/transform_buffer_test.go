package cull

import (
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestTransformBufferConcurrentReservations(t *testing.T) {
	const (
		writers   = 8
		perWriter = 1000
	)
	buf := NewTransformBuffer(writers * perWriter * 2)

	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if i%2 == 0 {
					buf.Append(mgl32.Translate3D(float32(w), float32(i), 0))
					continue
				}
				offset := buf.Reserve(2)
				buf.Write(offset, mgl32.Translate3D(float32(w), float32(i), 0))
				buf.Write(offset+1, mgl32.Translate3D(float32(w), float32(i), 1))
			}
		}()
	}
	wg.Wait()

	expLen := writers * (perWriter/2 + perWriter/2*2)
	if buf.Len() != expLen {
		t.Fatalf("expected %d reserved slots; got %d", expLen, buf.Len())
	}

	seen := make(map[mgl32.Mat4]struct{}, expLen)
	for _, m := range buf.Transforms() {
		if _, dup := seen[m]; dup {
			t.Fatalf("transform %v written twice", m.Col(3))
		}
		seen[m] = struct{}{}
	}
	if len(seen) != expLen {
		t.Fatalf("expected %d distinct transforms; got %d", expLen, len(seen))
	}
}

func TestTransformBufferReserveReturnsContiguousRanges(t *testing.T) {
	buf := NewTransformBuffer(10)
	specs := []struct {
		n, exp int
	}{
		{3, 0},
		{0, 3},
		{4, 3},
		{3, 7},
	}
	for specIndex, spec := range specs {
		if got := buf.Reserve(spec.n); got != spec.exp {
			t.Errorf("[spec %d] expected Reserve(%d) to start at %d; got %d", specIndex, spec.n, spec.exp, got)
		}
	}
	if buf.Len() != buf.Cap() {
		t.Fatalf("expected a full buffer; got %d of %d", buf.Len(), buf.Cap())
	}
}

func TestTransformBufferMisusePanics(t *testing.T) {
	specs := []struct {
		name string
		fn   func()
	}{
		{"reserve past capacity", func() {
			buf := NewTransformBuffer(4)
			buf.Reserve(3)
			buf.Reserve(2)
		}},
		{"append to empty buffer", func() { NewTransformBuffer(0).Append(mgl32.Ident4()) }},
		{"negative reservation", func() { NewTransformBuffer(1).Reserve(-1) }},
		{"double release", func() {
			buf := NewTransformBuffer(1)
			buf.Release()
			buf.Release()
		}},
		{"read after release", func() {
			buf := NewTransformBuffer(1)
			buf.Release()
			buf.Transforms()
		}},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected a panic")
				}
			}()
			spec.fn()
		})
	}
}

func TestTransformBufferRelease(t *testing.T) {
	buf := NewTransformBuffer(2)
	buf.Append(mgl32.Translate3D(1, 2, 3))
	if buf.Released() {
		t.Fatal("expected a fresh buffer to be live")
	}
	buf.Release()
	if !buf.Released() {
		t.Fatal("expected the buffer to report release")
	}
}
