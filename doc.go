// Package typeconv converts dynamic host values to and from typed binary layouts.
//
// A destination shape is described by a Type Descriptor (package types) and
// per-instance layout metadata (package layout). The pair is compiled once into a
// kernel program (package kernel), a flat arena of conversion nodes, which is then
// evaluated many times against a linear memory.
//
// # Architecture Overview
//
//	typeconv/            Root package with Memory, Allocator and Storage interfaces
//	├── types/           Type Descriptors, kinds, string form, type registry
//	├── layout/          Arrmeta, default layout, layout navigator, byte buffer storage
//	├── host/            Host adapter contract for dynamic values
//	│   └── gohost/      Host adapter over plain Go values
//	├── kernel/          Kernel builder, into/from/copy programs, program cache
//	├── witconv/         WIT type to Type Descriptor bridge
//	├── guestmem/        wazero guest memory as Storage
//	├── errors/          Structured conversion errors
//	└── cmd/typeconv/    Command line converter and interactive viewer
//
// # Quick Start
//
//	t := types.Struct(
//	    types.NewField("a", types.Int32()),
//	    types.NewField("b", types.String(types.UTF8)),
//	)
//	meta := layout.Default(t)
//
//	in, err := kernel.InstantiateInto(t, meta)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer in.Close()
//
//	buf := layout.NewBuffer(1024)
//	dst, _ := buf.Alloc(layout.SizeOf(t), layout.AlignOf(t))
//	if err := in.ConvertOne(buf, dst, map[string]any{"a": 5, "b": "x"}); err != nil {
//	    log.Fatal(err)
//	}
//
//	out, _ := kernel.InstantiateFrom(t, meta)
//	defer out.Close()
//
//	var v host.Value
//	_ = out.ConvertOne(buf, &v, dst)
//	fmt.Println(v) // {a: 5, b: "x"}
//
// # Errors
//
// Every failure is an *errors.Error carrying the phase, the kind, the path to the
// failing leaf, the destination type string and a representation of the
// offending value:
//
//	[into] overflow at b: type int8, value 300 - value 300 overflows int8
package typeconv
