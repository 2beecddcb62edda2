package guest

import (
	"bytes"
	"io"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/dynshape/bincode"
	"github.com/wippyai/dynshape/dynamic"
	"github.com/wippyai/dynshape/errors"
	"github.com/wippyai/dynshape/internal/logging"
	"github.com/wippyai/dynshape/schema"
)

// Memory wraps a wazero linear memory with bounds-checked reads and writes
// and the fixed-width framing for dynamic values.
type Memory struct {
	mem  api.Memory
	opts bincode.Options
}

var (
	_ io.ReaderAt = (*Memory)(nil)
	_ io.WriterAt = (*Memory)(nil)
)

// New wraps mem. Values are framed with opts.
func New(mem api.Memory, opts bincode.Options) *Memory {
	return &Memory{mem: mem, opts: opts}
}

// Size is the current memory size in bytes.
func (m *Memory) Size() uint32 {
	return m.mem.Size()
}

func (m *Memory) check(offset, n uint64) error {
	if size := uint64(m.mem.Size()); offset > size || n > size-offset {
		return errors.OutOfBounds(errors.PhaseMemory, offset, n, size)
	}
	return nil
}

// Read copies length bytes starting at offset.
func (m *Memory) Read(offset, length uint32) ([]byte, error) {
	if err := m.check(uint64(offset), uint64(length)); err != nil {
		return nil, err
	}
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseMemory, uint64(offset), uint64(length), uint64(m.mem.Size()))
	}
	return bytes.Clone(data), nil
}

// Write copies data into memory at offset.
func (m *Memory) Write(offset uint32, data []byte) error {
	if err := m.check(uint64(offset), uint64(len(data))); err != nil {
		return err
	}
	if !m.mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseMemory, uint64(offset), uint64(len(data)), uint64(m.mem.Size()))
	}
	return nil
}

// ReadAt implements io.ReaderAt. Reads that run past the end of memory
// return the available prefix and io.EOF.
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	size := int64(m.mem.Size())
	if off < 0 {
		return 0, errors.OutOfBounds(errors.PhaseMemory, 0, uint64(len(p)), uint64(size))
	}
	if off >= size {
		return 0, io.EOF
	}
	n := int64(len(p))
	if n > size-off {
		n = size - off
	}
	data, ok := m.mem.Read(uint32(off), uint32(n))
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseMemory, uint64(off), uint64(n), uint64(size))
	}
	copy(p, data)
	if int(n) < len(p) {
		return int(n), io.EOF
	}
	return int(n), nil
}

// WriteAt implements io.WriterAt. Partial writes are never performed.
func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(^uint32(0)) {
		return 0, errors.OutOfBounds(errors.PhaseMemory, 0, uint64(len(p)), uint64(m.mem.Size()))
	}
	if err := m.Write(uint32(off), p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Load decodes one value of shape s from the length bytes at offset.
func (m *Memory) Load(s *schema.Schema, offset, length uint32) (*dynamic.Value, error) {
	if err := m.check(uint64(offset), uint64(length)); err != nil {
		return nil, err
	}
	dec := bincode.NewDecoder(io.NewSectionReader(m, int64(offset), int64(length)), m.opts)
	v, err := dynamic.Decode(s, dec)
	if err != nil {
		return nil, err
	}
	if err := dec.Finish(); err != nil {
		return nil, err
	}
	logging.Named("guest").Debug("loaded value",
		zap.Uint32("offset", offset),
		zap.Uint64("consumed", dec.Consumed()),
		zap.Stringer("schema", s))
	return v, nil
}

// Store writes the encoding of v at offset and returns the number of bytes
// written. Nothing is written when the encoding does not fit.
func (m *Memory) Store(v *dynamic.Value, offset uint32) (uint32, error) {
	if err := m.check(uint64(offset), 0); err != nil {
		return 0, err
	}
	opts := m.opts
	room := uint64(m.mem.Size()) - uint64(offset)
	if opts.Limit == 0 || opts.Limit > room {
		opts.Limit = room
	}

	var buf bytes.Buffer
	if err := dynamic.Encode(v, bincode.NewEncoder(&buf, opts)); err != nil {
		return 0, err
	}
	if err := m.Write(offset, buf.Bytes()); err != nil {
		return 0, err
	}
	logging.Named("guest").Debug("stored value",
		zap.Uint32("offset", offset),
		zap.Int("written", buf.Len()))
	return uint32(buf.Len()), nil
}
