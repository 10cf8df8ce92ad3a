package wasmgen

import "fmt"

// ValType is a WebAssembly value type encoding.
type ValType byte

const (
	I32       ValType = 0x7F
	I64       ValType = 0x7E
	ExternRef ValType = 0x6F
)

func (t ValType) String() string {
	switch t {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case ExternRef:
		return "externref"
	}
	return fmt.Sprintf("valtype(0x%02x)", byte(t))
}

const (
	magic   = "\x00asm"
	version = "\x01\x00\x00\x00"

	sectionType     byte = 1
	sectionImport   byte = 2
	sectionFunction byte = 3
	sectionMemory   byte = 5
	sectionExport   byte = 7
	sectionCode     byte = 10
	sectionData     byte = 11

	kindFunc   byte = 0
	kindMemory byte = 2

	funcTypeByte byte = 0x60
)

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (ft FuncType) equal(o FuncType) bool {
	if len(ft.Params) != len(o.Params) || len(ft.Results) != len(o.Results) {
		return false
	}
	for i := range ft.Params {
		if ft.Params[i] != o.Params[i] {
			return false
		}
	}
	for i := range ft.Results {
		if ft.Results[i] != o.Results[i] {
			return false
		}
	}
	return true
}

type funcImport struct {
	module, name string
	typeIdx      uint32
}

type funcDef struct {
	locals  []ValType
	body    []byte
	typeIdx uint32
}

type export struct {
	name string
	kind byte
	idx  uint32
}

type dataSegment struct {
	data   []byte
	offset uint32
}

// Module builds a core WebAssembly module with function imports, one
// memory and active data segments. It covers what guest modules for the
// host calling conventions need, nothing more.
type Module struct {
	memExport string
	types     []FuncType
	imports   []funcImport
	funcs     []funcDef
	exports   []export
	data      []dataSegment
	memPages  uint32
	hasMemory bool
}

// New creates an empty module.
func New() *Module {
	return &Module{}
}

// Type interns ft and returns its type index.
func (m *Module) Type(ft FuncType) uint32 {
	for i, t := range m.types {
		if t.equal(ft) {
			return uint32(i)
		}
	}
	m.types = append(m.types, ft)
	return uint32(len(m.types) - 1)
}

// ImportFunc declares a function import and returns its function index.
// Imports occupy the low function indices, so every import must be
// declared before the first Func.
func (m *Module) ImportFunc(module, name string, ft FuncType) uint32 {
	if len(m.funcs) > 0 {
		panic("wasmgen: import declared after a defined function")
	}
	m.imports = append(m.imports, funcImport{module: module, name: name, typeIdx: m.Type(ft)})
	return uint32(len(m.imports) - 1)
}

// Func defines a function and returns its function index.
func (m *Module) Func(ft FuncType, locals []ValType, body *Code) uint32 {
	m.funcs = append(m.funcs, funcDef{typeIdx: m.Type(ft), locals: locals, body: body.Bytes()})
	return uint32(len(m.imports) + len(m.funcs) - 1)
}

// Export exports the function at idx under name.
func (m *Module) Export(name string, idx uint32) {
	m.exports = append(m.exports, export{name: name, kind: kindFunc, idx: idx})
}

// Memory declares the module memory with an initial size in 64KiB pages,
// exported under name unless name is empty.
func (m *Module) Memory(pages uint32, name string) {
	m.hasMemory = true
	m.memPages = pages
	m.memExport = name
}

// Data places b at offset in memory when the module is instantiated.
func (m *Module) Data(offset uint32, b []byte) {
	m.data = append(m.data, dataSegment{offset: offset, data: b})
}

// Encode returns the module in binary format.
func (m *Module) Encode() []byte {
	w := &writer{}
	w.raw([]byte(magic))
	w.raw([]byte(version))

	if len(m.types) > 0 {
		sec := &writer{}
		sec.u32(uint32(len(m.types)))
		for _, ft := range m.types {
			sec.byte(funcTypeByte)
			sec.types(ft.Params)
			sec.types(ft.Results)
		}
		w.section(sectionType, sec)
	}

	if len(m.imports) > 0 {
		sec := &writer{}
		sec.u32(uint32(len(m.imports)))
		for _, imp := range m.imports {
			sec.name(imp.module)
			sec.name(imp.name)
			sec.byte(kindFunc)
			sec.u32(imp.typeIdx)
		}
		w.section(sectionImport, sec)
	}

	if len(m.funcs) > 0 {
		sec := &writer{}
		sec.u32(uint32(len(m.funcs)))
		for _, f := range m.funcs {
			sec.u32(f.typeIdx)
		}
		w.section(sectionFunction, sec)
	}

	if m.hasMemory {
		sec := &writer{}
		sec.u32(1)
		sec.byte(0x00) // limits: min only
		sec.u32(m.memPages)
		w.section(sectionMemory, sec)
	}

	exports := m.exports
	if m.hasMemory && m.memExport != "" {
		exports = append(exports[:len(exports):len(exports)], export{name: m.memExport, kind: kindMemory})
	}
	if len(exports) > 0 {
		sec := &writer{}
		sec.u32(uint32(len(exports)))
		for _, e := range exports {
			sec.name(e.name)
			sec.byte(e.kind)
			sec.u32(e.idx)
		}
		w.section(sectionExport, sec)
	}

	if len(m.funcs) > 0 {
		sec := &writer{}
		sec.u32(uint32(len(m.funcs)))
		for _, f := range m.funcs {
			body := &writer{}
			writeLocals(body, f.locals)
			body.raw(f.body)
			sec.vec(body.bytes())
		}
		w.section(sectionCode, sec)
	}

	if len(m.data) > 0 {
		sec := &writer{}
		sec.u32(uint32(len(m.data)))
		for _, d := range m.data {
			sec.byte(0x00) // active, memory 0
			sec.byte(opI32Const)
			sec.s64(int64(int32(d.offset)))
			sec.byte(opEnd)
			sec.vec(d.data)
		}
		w.section(sectionData, sec)
	}

	return w.bytes()
}

// writeLocals writes local declarations, grouping runs of the same type.
func writeLocals(w *writer, locals []ValType) {
	var groups int
	for i := range locals {
		if i == 0 || locals[i] != locals[i-1] {
			groups++
		}
	}
	w.u32(uint32(groups))
	for i := 0; i < len(locals); {
		j := i
		for j < len(locals) && locals[j] == locals[i] {
			j++
		}
		w.u32(uint32(j - i))
		w.byte(byte(locals[i]))
		i = j
	}
}
