package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/wippyai/typeconv/kernel"
	"github.com/wippyai/typeconv/layout"
	"github.com/wippyai/typeconv/types"
	"github.com/wippyai/typeconv/witconv"
	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"
	"golang.org/x/term"
)

type config struct {
	typeExpr    string
	witFile     string
	name        string
	inFile      string
	guest       bool
	broadcast   bool
	interactive bool
	verbose     bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.typeExpr, "type", "", "WIT type expression, e.g. 'list<tuple<u32, string>>'")
	flag.StringVar(&cfg.witFile, "wit", "", "WIT resolve in JSON form (wasm-tools component wit --json)")
	flag.StringVar(&cfg.name, "name", "", "Type definition to use from -wit")
	flag.StringVar(&cfg.inFile, "in", "", "YAML file of values, one per document (- for stdin)")
	flag.BoolVar(&cfg.guest, "guest", false, "Convert into the linear memory of a wazero guest")
	flag.BoolVar(&cfg.broadcast, "broadcast", false, "Broadcast scalars over dimensions")
	flag.BoolVar(&cfg.interactive, "i", false, "Interactive mode with TUI")
	flag.BoolVar(&cfg.verbose, "v", false, "Log kernel and memory events")
	flag.Parse()

	if cfg.typeExpr == "" && cfg.witFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: typeconv -type <wit type> [-in values.yaml] [-guest] [-i] [-v]")
		fmt.Fprintln(os.Stderr, "       typeconv -wit types.json -name <type> [-in values.yaml]")
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config) error {
	ctx := context.Background()

	logger := zap.NewNop()
	if cfg.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		logger = l
		defer func() { _ = logger.Sync() }()
	}
	kernel.SetLogger(logger)

	t, err := loadType(cfg)
	if err != nil {
		return err
	}

	var newHeap func() (heap, error)
	if cfg.guest {
		g, err := newGuest(ctx, logger)
		if err != nil {
			return err
		}
		defer g.Close(ctx)
		newHeap = g.heap
	}

	s, err := newSession(t, newHeap, kernel.WithScalarBroadcast(cfg.broadcast))
	if err != nil {
		return err
	}
	defer s.Close()

	if cfg.interactive || (cfg.inFile == "" && isatty.IsTerminal(os.Stdin.Fd())) {
		return runInteractive(s)
	}
	return runBatch(s, cfg.inFile, os.Stdout)
}

func loadType(cfg config) (*types.Type, error) {
	if cfg.typeExpr != "" {
		wt, err := witconv.ParseType(cfg.typeExpr)
		if err != nil {
			return nil, err
		}
		return witconv.FromWIT(wt)
	}

	f, err := os.Open(cfg.witFile)
	if err != nil {
		return nil, fmt.Errorf("open WIT: %w", err)
	}
	defer f.Close()
	resolve, err := wit.DecodeJSON(f)
	if err != nil {
		return nil, fmt.Errorf("decode WIT: %w", err)
	}
	if cfg.name == "" {
		return nil, fmt.Errorf("-name is required with -wit")
	}
	td, ok := witconv.Lookup(resolve, cfg.name)
	if !ok {
		return nil, fmt.Errorf("type %q not found in %s", cfg.name, cfg.witFile)
	}
	return witconv.FromWIT(td)
}

func runBatch(s *session, inFile string, out io.Writer) error {
	in := io.Reader(os.Stdin)
	if inFile != "" && inFile != "-" {
		f, err := os.Open(inFile)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}
	values, err := decodeDocuments(in)
	if err != nil {
		return err
	}

	width := 80
	color := false
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	fmt.Fprintf(out, "type %s (%d bytes, align %d)\n", s.typ, layout.SizeOf(s.typ), layout.AlignOf(s.typ))
	failed := 0
	for i, v := range values {
		header := fmt.Sprintf("document %d", i)
		if color {
			header = titleStyle.Render(header)
		}
		fmt.Fprintln(out, header)
		r, err := s.convert(v)
		if err != nil {
			msg := err.Error()
			if color {
				msg = errorStyle.Render(msg)
			}
			fmt.Fprintln(out, msg)
			failed++
			continue
		}
		fmt.Fprint(out, r.String(width))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to convert", failed, len(values))
	}
	return nil
}
