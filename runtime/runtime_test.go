package runtime

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"go.uber.org/zap"

	"github.com/wippyai/contract-runtime/engine"
	rterrors "github.com/wippyai/contract-runtime/errors"
	"github.com/wippyai/contract-runtime/value"
)

func newDemo(t *testing.T, cfg *Config, s engine.Strategy) (*Runtime, *Instance) {
	t.Helper()
	ctx := context.Background()
	rt, err := NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("create runtime: %v", err)
	}
	t.Cleanup(func() { rt.Close(ctx) })

	mod, err := rt.LoadDemo(ctx, s)
	if err != nil {
		t.Fatalf("load demo: %v", err)
	}
	inst, err := mod.Instantiate(ctx)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	return rt, inst
}

func TestRuntime_Call(t *testing.T) {
	for _, s := range engine.Strategies() {
		t.Run(s.Name(), func(t *testing.T) {
			_, inst := newDemo(t, &Config{Strategy: s.Name()}, s)
			ctx := context.Background()

			got, err := inst.Call(ctx, "add", 2, 3)
			if err != nil {
				t.Fatal(err)
			}
			if !value.Equal(got, value.NewInt(5)) {
				t.Errorf("add(2, 3) = %v", got)
			}

			got, err = inst.Call(ctx, "sum", []any{uint64(1), uint64(2), uint64(3)}, uint64(10))
			if err != nil {
				t.Fatal(err)
			}
			if !value.Equal(got, value.NewUInt(16)) {
				t.Errorf("sum = %v", got)
			}
		})
	}
}

func TestRuntime_CallLiteral(t *testing.T) {
	_, inst := newDemo(t, nil, engine.Serialized)
	got, err := inst.CallLiteral(context.Background(), engine.Serialized, "mul", "-4", "5")
	if err != nil {
		t.Fatal(err)
	}
	if !value.Equal(got, value.NewInt(-20)) {
		t.Errorf("mul = %v", got)
	}

	_, err = inst.CallLiteral(context.Background(), engine.Serialized, "mul", "(", "5")
	if !errors.Is(err, &rterrors.Error{Phase: rterrors.PhaseParse, Kind: rterrors.KindInvalidInput}) {
		t.Errorf("bad literal: %v", err)
	}
}

func TestRuntime_DefaultStrategy(t *testing.T) {
	rt, inst := newDemo(t, nil, engine.Arena)
	if rt.Strategy() != engine.Arena {
		t.Errorf("default strategy = %s", rt.Strategy().Name())
	}
	if _, err := inst.Call(context.Background(), "add", 1, 1); err != nil {
		t.Fatal(err)
	}
	if inst.Arena().Tip() != 0 {
		t.Errorf("arena not reset after call:\n%s", inst.Arena())
	}

	_, err := NewWithConfig(context.Background(), &Config{Strategy: "packed"})
	if err == nil {
		t.Fatal("unknown strategy should fail")
	}
}

func TestRuntime_Logger(t *testing.T) {
	logger := zap.NewNop()
	_, inst := newDemo(t, &Config{Logger: logger}, engine.Arena)
	if engine.Logger() != logger {
		t.Error("engine logger not installed")
	}
	if _, err := inst.Call(context.Background(), "identity", "hello"); err != nil {
		t.Fatal(err)
	}
}

func TestRuntime_ErrorsSurface(t *testing.T) {
	_, inst := newDemo(t, nil, engine.Arena)
	ctx := context.Background()

	_, err := inst.Call(ctx, "div", 1, 0)
	if !errors.Is(err, &rterrors.Error{Phase: rterrors.PhaseRuntime, Kind: rterrors.KindDivisionByZero}) {
		t.Errorf("div by zero: %v", err)
	}
	_, err = inst.Call(ctx, "add", struct{}{}, 1)
	if rterrors.CodeOf(err) != rterrors.CodeInternal {
		t.Errorf("unconvertible argument: %v", err)
	}
}

func TestRuntime_Close(t *testing.T) {
	ctx := context.Background()
	rt, err := New(ctx)
	if err != nil {
		t.Fatal(err)
	}
	mod, err := rt.LoadDemo(ctx, engine.Reference)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := mod.Instantiate(ctx)
	b, _ := mod.Instantiate(ctx)

	if err := a.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(ctx); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if len(mod.instances) != 1 || mod.instances[0] != b {
		t.Errorf("module tracks %d instances", len(mod.instances))
	}
	if err := rt.Close(ctx); err != nil {
		t.Fatalf("runtime Close: %v", err)
	}
	if !mod.closed || len(rt.modules) != 0 {
		t.Error("runtime Close should close modules")
	}
}

func TestToValue(t *testing.T) {
	big1 := new(big.Int).Lsh(big.NewInt(1), 126)
	tests := []struct {
		in   any
		want value.Value
		kind rterrors.Kind
	}{
		{nil, value.None, ""},
		{true, value.Bool(true), ""},
		{-5, value.NewInt(-5), ""},
		{int8(-1), value.NewInt(-1), ""},
		{uint16(7), value.NewUInt(7), ""},
		{big.NewInt(-9), value.NewInt(-9), ""},
		{big1, value.Int{Hi: 1 << 62}, ""},
		{new(big.Int).Lsh(big1, 1), nil, rterrors.KindOverflow},
		{"abc", value.ASCIIString("abc"), ""},
		{"é", value.UTF8String("é"), ""},
		{string([]byte{0xff}), nil, rterrors.KindInvalidUTF8},
		{[]byte{1, 2}, value.Buffer{1, 2}, ""},
		{[]any{1, "x"}, value.List{value.NewInt(1), value.ASCIIString("x")}, ""},
		{map[string]any{"b": 2, "a": true}, value.MustTuple(
			value.TupleField{Name: "a", Value: value.Bool(true)},
			value.TupleField{Name: "b", Value: value.NewInt(2)},
		), ""},
		{map[string]any{"1bad": 1}, nil, rterrors.KindInvalidInput},
		{value.NewUInt(3), value.NewUInt(3), ""},
		{3.5, nil, rterrors.KindUnsupported},
	}

	for _, tt := range tests {
		got, err := ToValue(tt.in)
		if tt.kind != "" {
			var e *rterrors.Error
			if !errors.As(err, &e) || e.Kind != tt.kind {
				t.Errorf("ToValue(%v) error = %v, want %s", tt.in, err, tt.kind)
			}
			continue
		}
		if err != nil {
			t.Errorf("ToValue(%v): %v", tt.in, err)
			continue
		}
		if !value.Equal(got, tt.want) {
			t.Errorf("ToValue(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
