// Package hostfn holds the host function logic shared by every guest calling
// convention. Functions take and return values only; package engine adapts
// them to arena pointers, serialized memory and external references.
//
// Integer arithmetic is exact: operands are widened to 256 bits and the
// result is narrowed back, reporting KindOverflow or KindUnderflow when it
// does not fit the operand type.
package hostfn
