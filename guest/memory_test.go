package guest

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"testing"

	"github.com/wippyai/dynshape/bincode"
	"github.com/wippyai/dynshape/dynamic"
	"github.com/wippyai/dynshape/errors"
	"github.com/wippyai/dynshape/schema"
)

func newScratch(t *testing.T, pages uint32) *Scratch {
	t.Helper()
	ctx := context.Background()
	s, err := NewScratch(ctx, pages, bincode.DefaultOptions())
	if err != nil {
		t.Fatalf("NewScratch: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(ctx) })
	return s
}

var pairSchema = schema.Struct("Pair", schema.F("a", schema.I32()), schema.F("b", schema.I32()))

func TestNewScratch(t *testing.T) {
	tests := []struct {
		pages uint32
		size  uint32
	}{
		{0, 65536},
		{1, 65536},
		{3, 3 * 65536},
		{200, 200 * 65536},
	}
	for _, tc := range tests {
		s := newScratch(t, tc.pages)
		if s.Size() != tc.size {
			t.Errorf("pages %d: Size = %d, want %d", tc.pages, s.Size(), tc.size)
		}
	}
	if _, err := NewScratch(context.Background(), MaxPages+1, bincode.DefaultOptions()); err == nil {
		t.Error("expected error past the page limit")
	}
}

func TestMemoryModuleLayout(t *testing.T) {
	want := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x05, 0x03, 0x01, 0x00, 0x02,
		0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
	}
	if got := memoryModule(2); !bytes.Equal(got, want) {
		t.Errorf("memoryModule(2) = % x\nwant % x", got, want)
	}
	if got := memoryModule(200); got[9] != 0x04 || got[12] != 0xc8 || got[13] != 0x01 {
		t.Errorf("multi-byte page count = % x", got[8:14])
	}
}

func TestStoreLoad(t *testing.T) {
	mem := newScratch(t, 1)
	v := dynamic.Struct("Pair", dynamic.F("a", dynamic.I32(99)), dynamic.F("b", dynamic.I32(23480)))

	n, err := mem.Store(v, 128)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if n != 8 {
		t.Fatalf("Store wrote %d bytes, want 8", n)
	}
	raw, err := mem.Read(128, n)
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte{0x63, 0, 0, 0, 0xb8, 0x5b, 0, 0}; !bytes.Equal(raw, want) {
		t.Errorf("memory = % x, want % x", raw, want)
	}

	back, err := mem.Load(pairSchema, 128, n)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !dynamic.Equal(back, v) {
		t.Errorf("Load = %v, want %v", back, v)
	}
}

func TestLoadErrors(t *testing.T) {
	mem := newScratch(t, 1)
	size := mem.Size()

	if _, err := mem.Load(pairSchema, size-4, 8); !stderrors.Is(err, &errors.Error{Kind: errors.KindOutOfBounds}) {
		t.Errorf("window past end: %v", err)
	}
	if _, err := mem.Load(pairSchema, 0, 4); !stderrors.Is(err, errors.ErrProtocol) {
		t.Errorf("short window: %v", err)
	}
	if _, err := mem.Load(nil, 0, 4); !stderrors.Is(err, errors.ErrSchemaNotProvided) {
		t.Errorf("nil schema: %v", err)
	}
}

func TestLoadTrailingBytes(t *testing.T) {
	ctx := context.Background()
	opts := bincode.DefaultOptions()
	opts.AllowTrailingBytes = false
	s, err := NewScratch(ctx, 1, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close(ctx)

	if _, err := s.Load(pairSchema, 0, 8); err != nil {
		t.Errorf("exact window: %v", err)
	}
	_, err = s.Load(pairSchema, 0, 12)
	if !stderrors.Is(err, &errors.Error{Kind: errors.KindTrailingBytes}) {
		t.Errorf("trailing window: %v", err)
	}
}

func TestStoreErrors(t *testing.T) {
	mem := newScratch(t, 1)
	size := mem.Size()
	v := dynamic.Tuple(dynamic.U64(1), dynamic.U64(2))

	if _, err := mem.Store(v, size-8); !stderrors.Is(err, errors.ErrProtocol) {
		t.Errorf("value past end: %v", err)
	}
	tail, _ := mem.Read(size-8, 8)
	if !bytes.Equal(tail, make([]byte, 8)) {
		t.Errorf("failed store modified memory: % x", tail)
	}
	if _, err := mem.Store(v, size+1); !stderrors.Is(err, &errors.Error{Kind: errors.KindOutOfBounds}) {
		t.Errorf("offset past end: %v", err)
	}
	if _, err := mem.Store(nil, 0); !stderrors.Is(err, errors.ErrSchemaNotProvided) {
		t.Errorf("nil value: %v", err)
	}
}

func TestReaderAt(t *testing.T) {
	mem := newScratch(t, 1)
	size := int64(mem.Size())
	if _, err := mem.WriteAt([]byte{1, 2, 3}, size-3); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 5)
	n, err := mem.ReadAt(buf, size-3)
	if n != 3 || err != io.EOF {
		t.Errorf("ReadAt = %d, %v; want 3, EOF", n, err)
	}
	if !bytes.Equal(buf[:3], []byte{1, 2, 3}) {
		t.Errorf("ReadAt data = % x", buf[:3])
	}
	if _, err := mem.ReadAt(buf, size); err != io.EOF {
		t.Errorf("ReadAt at end = %v", err)
	}
	if _, err := mem.WriteAt(buf, size-2); err == nil {
		t.Error("WriteAt past end should fail")
	}
	if _, err := mem.Read(uint32(size), 1); err == nil {
		t.Error("Read past end should fail")
	}
}
