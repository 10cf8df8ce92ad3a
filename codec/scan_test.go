package codec

import (
	"errors"
	"testing"

	rterrors "github.com/wippyai/contract-runtime/errors"
	"github.com/wippyai/contract-runtime/value"
)

func intList(from, to int64) value.List {
	list := make(value.List, 0, to-from+1)
	for i := from; i <= to; i++ {
		list = append(list, value.NewInt(i))
	}
	return list
}

func TestScanList(t *testing.T) {
	buf, err := Encode(intList(1, 5))
	if err != nil {
		t.Fatal(err)
	}
	if buf[0] != byte(value.TagList) || buf[3] != 5 || buf[4] != 0 {
		t.Fatalf("unexpected header %x", buf[:5])
	}

	spans, err := Scan(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(spans) != 5 {
		t.Fatalf("got %d spans, want 5", len(spans))
	}
	for i, s := range spans {
		if s.Len != 19 {
			t.Errorf("span %d len = %d, want 19", i, s.Len)
		}
		if want := uint32(HeaderLen + 2 + 19*i); s.Offset != want {
			t.Errorf("span %d offset = %d, want %d", i, s.Offset, want)
		}
		el, err := Element(buf, s)
		if err != nil {
			t.Fatal(err)
		}
		v, err := Decode(el)
		if err != nil {
			t.Fatalf("decode span %d: %v", i, err)
		}
		if !value.Equal(v, value.NewInt(int64(i+1))) {
			t.Errorf("span %d decodes to %v", i, v)
		}
	}
}

func TestScanIntegrity(t *testing.T) {
	tests := []struct {
		name     string
		v        value.Value
		elements int
		overhead int // payload bytes not covered by spans
	}{
		{"list", value.List{value.Bool(true), value.ASCIIString("abc"), value.None}, 3, 2},
		{"empty list", value.List{}, 0, 2},
		{"buffer", value.Buffer{1, 2, 3, 4}, 4, 0},
		{"ascii", value.ASCIIString("hello"), 5, 0},
		{"utf8", value.UTF8String("aé€𝄞"), 4, 0},
		{"empty utf8", value.UTF8String(""), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := Encode(tt.v)
			if err != nil {
				t.Fatal(err)
			}
			spans, err := Scan(buf)
			if err != nil {
				t.Fatal(err)
			}
			if len(spans) != tt.elements {
				t.Errorf("element count = %d, want %d", len(spans), tt.elements)
			}
			if n, _ := value.Len(tt.v); n != len(spans) {
				t.Errorf("value.Len = %d, spans = %d", n, len(spans))
			}
			sum := 0
			for _, s := range spans {
				sum += int(s.Len)
			}
			if payload := len(buf) - HeaderLen; sum+tt.overhead != payload {
				t.Errorf("span total %d + %d != payload %d", sum, tt.overhead, payload)
			}
		})
	}
}

func TestScanUTF8Spans(t *testing.T) {
	buf, _ := Encode(value.UTF8String("aé€𝄞"))
	spans, err := Scan(buf)
	if err != nil {
		t.Fatal(err)
	}
	wantLens := []uint32{1, 2, 3, 4}
	for i, s := range spans {
		if s.Len != wantLens[i] {
			t.Errorf("char %d len = %d, want %d", i, s.Len, wantLens[i])
		}
	}
}

func TestScanRejectsNonSequence(t *testing.T) {
	for _, v := range []value.Value{value.NewInt(1), value.None, value.Bool(true), value.MustTuple()} {
		buf, _ := Encode(v)
		_, err := Scan(buf)
		if !errors.Is(err, &rterrors.Error{Phase: rterrors.PhaseScan, Kind: rterrors.KindTypeNotAllowed}) {
			t.Errorf("Scan(%v) error = %v", v, err)
		}
	}
}

func TestScanMalformed(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		kind rterrors.Kind
	}{
		{"length mismatch", []byte{8, 3, 0, 1, 2}, rterrors.KindLengthMismatch},
		{"truncated element", []byte{9, 5, 0, 1, 0, 2, 16, 0}, rterrors.KindTruncated},
		{"bad utf8", []byte{7, 1, 0, 0xff}, rterrors.KindInvalidUTF8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scan(tt.buf)
			if !errors.Is(err, &rterrors.Error{Phase: rterrors.PhaseScan, Kind: tt.kind}) {
				t.Errorf("Scan error = %v, want %s", err, tt.kind)
			}
		})
	}
}

func TestFoldLargeList(t *testing.T) {
	const n = 8192
	buf, err := Encode(intList(1, n))
	if err != nil {
		t.Fatalf("encode %d ints: %v", n, err)
	}

	acc := value.NewInt(1).Word()
	next := int64(1)
	err = ScanFunc(buf, nil, func(i int, s Span) error {
		el, err := Element(buf, s)
		if err != nil {
			return err
		}
		v, err := Decode(el)
		if err != nil {
			return err
		}
		if !value.Equal(v, value.NewInt(next)) {
			t.Fatalf("element %d = %v, visited out of order", i, v)
		}
		next++
		acc.Add(acc, v.(value.Int).Word())
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	got, ok := value.IntFromWord(acc)
	if !ok || got != value.NewInt(1+n*(n+1)/2) {
		t.Errorf("fold = %v, want %d", got, 1+n*(n+1)/2)
	}
}

func TestScanFuncStops(t *testing.T) {
	buf, _ := Encode(intList(1, 10))
	stop := errors.New("stop")
	visited := 0
	err := ScanFunc(buf, nil, func(i int, s Span) error {
		visited++
		if i == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) || visited != 3 {
		t.Errorf("err=%v visited=%d", err, visited)
	}
}

func BenchmarkScan8192(b *testing.B) {
	buf, _ := Encode(intList(1, 8192))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := ScanFunc(buf, nil, func(int, Span) error { return nil }); err != nil {
			b.Fatal(err)
		}
	}
}
