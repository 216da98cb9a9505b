package main

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/wippyai/typeconv/guestmem"
	"go.uber.org/zap"
)

// guestWASM is a module with one page of memory exported as "memory".
var guestWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 page, no max
	0x07, 0x0a, 0x01, // export section: 10 bytes, 1 export
	0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, // name: "memory"
	0x02, 0x00, // kind: memory, index 0
}

// guest owns a wazero runtime whose memory serves as conversion storage.
type guest struct {
	rt   wazero.Runtime
	mod  api.Module
	mem  *guestmem.Memory
	base uint32
}

func newGuest(ctx context.Context, logger *zap.Logger) (*guest, error) {
	rt := wazero.NewRuntime(ctx)
	mod, err := rt.Instantiate(ctx, guestWASM)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("instantiate guest: %w", err)
	}
	mem, err := guestmem.New(ctx, mod.ExportedMemory("memory"), guestmem.Options{
		Base:     1024,
		MaxPages: 256,
		Logger:   logger,
	})
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}
	return &guest{rt: rt, mod: mod, mem: mem, base: mem.Next()}, nil
}

// heap rewinds guest memory for the next conversion.
func (g *guest) heap() (heap, error) {
	g.mem.Reset(g.base)
	return g.mem, nil
}

func (g *guest) Close(ctx context.Context) error {
	return g.rt.Close(ctx)
}
