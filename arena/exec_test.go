package arena

import (
	"errors"
	"testing"

	"github.com/wippyai/contract-runtime/value"
)

func TestExecPromotesResults(t *testing.T) {
	a := New()
	outer, _ := a.NewFrame()
	arg := outer.Push(value.NewInt(20))

	ptrs, err := a.Exec(func(f *Frame) ([]value.Value, error) {
		if f.Index() != 1 {
			t.Errorf("exec frame index = %d", f.Index())
		}
		v, ok := f.Get(arg)
		if !ok {
			return nil, errors.New("argument not visible")
		}
		tmp := f.Push(value.NewInt(22))
		w, _ := f.Get(tmp)
		sum := v.(value.Int).Lo + w.(value.Int).Lo
		return []value.Value{value.NewInt(int64(sum))}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if a.Depth() != 1 {
		t.Fatalf("depth after exec = %d, want 1", a.Depth())
	}
	if len(ptrs) != 1 || !ptrs[0].Owned {
		t.Fatalf("ptrs = %v", ptrs)
	}
	if ptrs[0].Index != 1 {
		t.Errorf("result index = %d, want 1 (the exec frame's lower bound)", ptrs[0].Index)
	}
	v, ok := a.Get(ptrs[0])
	if !ok || !value.Equal(v, value.NewInt(42)) {
		t.Errorf("result = %v, %v", v, ok)
	}
	if rb := a.ResultBuffer(); len(rb) != 1 || !value.Equal(rb[0], value.NewInt(42)) {
		t.Errorf("result buffer = %v", rb)
	}
}

func TestExecError(t *testing.T) {
	a := New()
	boom := errors.New("boom")
	ptrs, err := a.Exec(func(f *Frame) ([]value.Value, error) {
		f.Push(value.NewInt(1))
		return nil, boom
	})
	if !errors.Is(err, boom) || ptrs != nil {
		t.Fatalf("Exec = %v, %v", ptrs, err)
	}
	if a.Depth() != 0 || a.Tip() != 0 {
		t.Errorf("error path left depth=%d tip=%d", a.Depth(), a.Tip())
	}
}

func TestExecPanicUnwinds(t *testing.T) {
	a := New()
	func() {
		defer func() {
			if r := recover(); r != "trap" {
				t.Fatalf("recovered %v, want trap", r)
			}
		}()
		a.Exec(func(f *Frame) ([]value.Value, error) {
			f.Push(value.NewInt(1))
			// a trap deep inside a nested call leaves its frame open
			inner, _ := a.NewFrame()
			inner.Push(value.NewInt(2))
			panic("trap")
		})
	}()
	if a.Depth() != 0 || a.Tip() != 0 {
		t.Errorf("panic left depth=%d tip=%d", a.Depth(), a.Tip())
	}
}

func TestExecLeakedFrame(t *testing.T) {
	a := New()
	expectInvariant(t, func() {
		a.Exec(func(f *Frame) ([]value.Value, error) {
			a.NewFrame()
			return nil, nil
		})
	})
	if a.Depth() != 0 {
		t.Errorf("leaked frame not unwound, depth=%d", a.Depth())
	}
}

func TestExecNested(t *testing.T) {
	a := New()
	ptrs, err := a.Exec(func(f *Frame) ([]value.Value, error) {
		f.Push(value.Bool(true))
		inner, err := a.Exec(func(g *Frame) ([]value.Value, error) {
			return []value.Value{value.ASCIIString("deep")}, nil
		})
		if err != nil {
			return nil, err
		}
		v, _ := f.Get(inner[0])
		return []value.Value{value.SomeOf(v)}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	v, ok := a.Get(ptrs[0])
	if !ok || !value.Equal(v, value.SomeOf(value.ASCIIString("deep"))) {
		t.Errorf("nested result = %v", v)
	}
	if a.Depth() != 0 || a.Tip() != 1 {
		t.Errorf("depth=%d tip=%d, want 0 and 1", a.Depth(), a.Tip())
	}
}

func BenchmarkExec(b *testing.B) {
	a := New()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ptrs, _ := a.Exec(func(f *Frame) ([]value.Value, error) {
			x := f.Push(value.NewInt(1))
			v, _ := f.Get(x)
			return []value.Value{v}, nil
		})
		a.Drop(ptrs[0])
	}
}
