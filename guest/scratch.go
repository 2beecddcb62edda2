package guest

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/dynshape/bincode"
)

// MaxPages is the largest memory a 32-bit module can declare.
const MaxPages = 65536

// Scratch is a standalone linear memory backed by a private wazero runtime.
type Scratch struct {
	*Memory
	runtime wazero.Runtime
	module  api.Module
}

// NewScratch instantiates a module that only defines and exports a memory
// of the given number of 64 KiB pages. Zero pages means one.
func NewScratch(ctx context.Context, pages uint32, opts bincode.Options) (*Scratch, error) {
	if pages == 0 {
		pages = 1
	}
	if pages > MaxPages {
		return nil, fmt.Errorf("scratch memory: %d pages exceeds %d", pages, MaxPages)
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithMemoryLimitPages(pages))
	module, err := runtime.InstantiateWithConfig(ctx, memoryModule(pages),
		wazero.NewModuleConfig().WithName("scratch"))
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, fmt.Errorf("instantiate scratch memory: %w", err)
	}
	mem := module.ExportedMemory("memory")
	if mem == nil {
		_ = runtime.Close(ctx)
		return nil, fmt.Errorf("scratch module exports no memory")
	}
	return &Scratch{Memory: New(mem, opts), runtime: runtime, module: module}, nil
}

// Close releases the runtime and its memory.
func (s *Scratch) Close(ctx context.Context) error {
	return s.runtime.Close(ctx)
}

// memoryModule encodes a binary module with one memory of the given minimum
// size exported as "memory".
func memoryModule(pages uint32) []byte {
	limits := binary.AppendUvarint([]byte{0x01, 0x00}, uint64(pages))

	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	out = append(out, 0x05, byte(len(limits)))
	out = append(out, limits...)
	out = append(out, 0x07, 0x0a, 0x01, 0x06)
	out = append(out, "memory"...)
	return append(out, 0x02, 0x00)
}
