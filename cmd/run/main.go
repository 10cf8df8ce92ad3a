package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/contract-runtime/codec"
	"github.com/wippyai/contract-runtime/engine"
	"github.com/wippyai/contract-runtime/runtime"
	"github.com/wippyai/contract-runtime/value"
)

// literals collects repeated -arg flags.
type literals []string

func (l *literals) String() string { return strings.Join(*l, " ") }

func (l *literals) Set(s string) error {
	*l = append(*l, s)
	return nil
}

func main() {
	var args literals
	var (
		wasmFile    = flag.String("wasm", "", "Path to core wasm module")
		demo        = flag.Bool("demo", false, "Run the built-in demo guest instead of -wasm")
		funcName    = flag.String("func", "", "Function to call (optional)")
		strategy    = flag.String("strategy", "ptr", "Calling convention: ptr, mem or ref")
		encode      = flag.String("encode", "", "Print the serialized form of a value literal and exit")
		list        = flag.Bool("list", false, "List exported functions and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.Var(&args, "arg", "Value literal argument (repeatable), e.g. -arg 5 -arg u7 -arg '(list 1 2)'")
	flag.Parse()

	if *encode != "" {
		if err := encodeLiteral(*encode); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *wasmFile == "" && !*demo {
		fmt.Fprintln(os.Stderr, "Usage: run -wasm <file.wasm> [-strategy ptr|mem|ref] [-func name] [-arg literal]...")
		fmt.Fprintln(os.Stderr, "       run -demo [-strategy ptr|mem|ref] -func sum -arg '(list 1 2 3)' -arg 0")
		fmt.Fprintln(os.Stderr, "       run -wasm <file.wasm> -list")
		fmt.Fprintln(os.Stderr, "       run -wasm <file.wasm> -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "       run -encode '<literal>'")
		os.Exit(1)
	}

	s, err := engine.StrategyByName(*strategy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := zap.NewNop()
	if *verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = logger.Sync() }()
	}

	src := source{file: *wasmFile, demo: *demo, strategy: s, logger: logger}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(src); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(src, *funcName, args, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// source names where the guest module comes from.
type source struct {
	strategy engine.Strategy
	logger   *zap.Logger
	file     string
	demo     bool
}

func (s source) String() string {
	if s.demo {
		return "demo (" + s.strategy.Name() + ")"
	}
	return s.file
}

// load starts a runtime and loads the module described by s.
func (s source) load(ctx context.Context) (*runtime.Runtime, *runtime.Module, error) {
	rt, err := runtime.NewWithConfig(ctx, &runtime.Config{
		Logger:   s.logger,
		Strategy: s.strategy.Name(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create runtime: %w", err)
	}

	var mod *runtime.Module
	if s.demo {
		mod, err = rt.LoadDemo(ctx, s.strategy)
	} else {
		var data []byte
		data, err = os.ReadFile(s.file)
		if err != nil {
			_ = rt.Close(ctx)
			return nil, nil, fmt.Errorf("read file: %w", err)
		}
		mod, err = rt.LoadWASM(ctx, data)
	}
	if err != nil {
		_ = rt.Close(ctx)
		return nil, nil, fmt.Errorf("load: %w", err)
	}
	return rt, mod, nil
}

func run(src source, funcName string, args []string, listOnly bool) error {
	ctx := context.Background()

	rt, mod, err := src.load(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	exports := mod.Exports()
	fmt.Printf("Module: %s\n", src)
	fmt.Printf("Strategy: %s\n", src.strategy.Name())
	fmt.Printf("\nExported functions:\n")
	for _, x := range exports {
		fmt.Printf("  %s\n", x.Signature())
	}

	if listOnly || funcName == "" {
		return nil
	}

	inst, err := mod.Instantiate(ctx)
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}
	defer inst.Close(ctx)

	fmt.Printf("\nCalling %s...\n", funcName)
	result, err := inst.CallLiteral(ctx, src.strategy, funcName, args...)
	if err != nil {
		return fmt.Errorf("call %s: %w", funcName, err)
	}

	fmt.Printf("Result: %s\n", result)
	return nil
}

// encodeLiteral prints the wire form of a literal and, for sequences, the
// span of each element.
func encodeLiteral(lit string) error {
	v, err := value.Parse(lit)
	if err != nil {
		return err
	}
	buf, err := codec.Encode(v)
	if err != nil {
		return err
	}
	fmt.Printf("Value: %s\n", v)
	fmt.Printf("Tag:   %s\n", v.Tag())
	fmt.Printf("Bytes: %d\n", len(buf))
	fmt.Printf("%s", hex.Dump(buf))

	spans, err := codec.Scan(buf)
	if err != nil {
		// not a sequence
		return nil
	}
	fmt.Printf("\nSpans:\n")
	for i, sp := range spans {
		fmt.Printf("  [%d] offset=%d len=%d\n", i, sp.Offset, sp.Len)
	}
	return nil
}
