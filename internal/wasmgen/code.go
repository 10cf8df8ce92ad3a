package wasmgen

const (
	opUnreachable byte = 0x00
	opEnd         byte = 0x0B
	opReturn      byte = 0x0F
	opCall        byte = 0x10
	opDrop        byte = 0x1A
	opLocalGet    byte = 0x20
	opLocalSet    byte = 0x21
	opLocalTee    byte = 0x22
	opI32Const    byte = 0x41
	opI64Const    byte = 0x42
	opI32Add      byte = 0x6A
	opI32Sub      byte = 0x6B
)

// Code is a function body under construction. Methods append one
// instruction each and return the receiver for chaining.
type Code struct {
	w writer
}

// NewCode starts an empty function body.
func NewCode() *Code {
	return &Code{}
}

func (c *Code) op(b byte) *Code {
	c.w.byte(b)
	return c
}

func (c *Code) Unreachable() *Code { return c.op(opUnreachable) }
func (c *Code) Return() *Code      { return c.op(opReturn) }
func (c *Code) Drop() *Code        { return c.op(opDrop) }
func (c *Code) I32Add() *Code      { return c.op(opI32Add) }
func (c *Code) I32Sub() *Code      { return c.op(opI32Sub) }

func (c *Code) Call(fn uint32) *Code {
	c.w.byte(opCall)
	c.w.u32(fn)
	return c
}

func (c *Code) LocalGet(i uint32) *Code {
	c.w.byte(opLocalGet)
	c.w.u32(i)
	return c
}

func (c *Code) LocalSet(i uint32) *Code {
	c.w.byte(opLocalSet)
	c.w.u32(i)
	return c
}

func (c *Code) LocalTee(i uint32) *Code {
	c.w.byte(opLocalTee)
	c.w.u32(i)
	return c
}

func (c *Code) I32Const(v int32) *Code {
	c.w.byte(opI32Const)
	c.w.s64(int64(v))
	return c
}

func (c *Code) I64Const(v int64) *Code {
	c.w.byte(opI64Const)
	c.w.s64(v)
	return c
}

// LocalsGet pushes locals from..from+n-1 in order.
func (c *Code) LocalsGet(from, n uint32) *Code {
	for i := from; i < from+n; i++ {
		c.LocalGet(i)
	}
	return c
}

// Bytes returns the instruction stream terminated by end.
func (c *Code) Bytes() []byte {
	out := make([]byte, 0, len(c.w.bytes())+1)
	out = append(out, c.w.bytes()...)
	return append(out, opEnd)
}
