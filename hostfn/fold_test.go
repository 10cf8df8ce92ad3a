package hostfn

import (
	"testing"

	rterrors "github.com/wippyai/contract-runtime/errors"
	"github.com/wippyai/contract-runtime/value"
)

func TestFoldSum(t *testing.T) {
	const n = 8192
	list := make(value.List, n)
	for i := range list {
		list[i] = value.NewInt(int64(i + 1))
	}

	got, err := Fold(list, value.NewInt(1), Add)
	if err != nil {
		t.Fatal(err)
	}
	if want := value.NewInt(1 + n*(n+1)/2); !value.Equal(got, want) {
		t.Errorf("fold = %v, want %v", got, want)
	}
}

func TestFoldOrder(t *testing.T) {
	var seen []string
	_, err := Fold(value.UTF8String("aé€"), value.Bool(true), func(el, acc value.Value) (value.Value, error) {
		seen = append(seen, string(el.(value.UTF8String)))
		return acc, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 3 || seen[0] != "a" || seen[1] != "é" || seen[2] != "€" {
		t.Errorf("visited %q", seen)
	}
}

func TestEachElements(t *testing.T) {
	var got []value.Value
	collect := func(_ int, el value.Value) error {
		got = append(got, el)
		return nil
	}

	if err := Each(value.Buffer{1, 2}, collect); err != nil {
		t.Fatal(err)
	}
	if err := Each(value.ASCIIString("z"), collect); err != nil {
		t.Fatal(err)
	}
	want := []value.Value{value.Buffer{1}, value.Buffer{2}, value.ASCIIString("z")}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if !value.Equal(got[i], want[i]) {
			t.Errorf("element %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFoldErrors(t *testing.T) {
	_, err := Fold(value.NewInt(1), value.NewInt(0), Add)
	if rterrors.CodeOf(err) != rterrors.CodeNotASequence {
		t.Errorf("non-sequence code = %v (%v)", rterrors.CodeOf(err), err)
	}
	_, err = Fold(value.List{value.NewInt(1)}, nil, Add)
	if rterrors.CodeOf(err) != rterrors.CodeFunctionArgumentRequired {
		t.Errorf("missing init code = %v", rterrors.CodeOf(err))
	}
	_, err = Fold(value.List{value.MaxInt, value.NewInt(1)}, value.NewInt(0), Add)
	if rterrors.CodeOf(err) != rterrors.CodeArithmeticOverflow {
		t.Errorf("overflow code = %v", rterrors.CodeOf(err))
	}
}
