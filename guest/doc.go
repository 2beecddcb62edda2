// Package guest moves dynamic values in and out of WebAssembly linear memory.
//
// A host that shares memory with a guest module wraps the instance's
// api.Memory with New and exchanges values by offset:
//
//	mem := guest.New(instance.ExportedMemory("memory"), bincode.DefaultOptions())
//	n, err := mem.Store(v, ptr)
//	back, err := mem.Load(s, ptr, n)
//
// NewScratch provides a standalone memory on a private runtime.
package guest
