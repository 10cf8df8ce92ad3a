// Package codec implements the self-describing binary encoding used to pass
// values through guest linear memory.
//
// Every value is written as
//
//	[tag u8][length u16 LE][payload]
//
// where tag is the value.Tag and composite payloads embed complete nested
// encodings:
//
//	uint, int            16 bytes, little-endian two's complement
//	bool                 1 byte, 0 or 1
//	optional             presence flag, then the inner encoding if present
//	response             committed flag (1 ok, 0 err), then the inner encoding
//	string-ascii, buff   raw bytes
//	string-utf8          UTF-8 bytes of each character in order
//	list                 u16 element count, then each element's encoding
//	principal            version byte, 20-byte hash
//	contract-principal   version, hash, u16 name length, name
//	callable-contract    contract fields, trait flag, and if set the trait's
//	                     contract fields followed by u16 trait name length, name
//	tuple                u16 field count, then per field in name order:
//	                     u16 name length, name, value encoding
//
// Decode materializes values. Scan walks a sequence and reports the byte span
// of each element, so a caller can fold over a large list in guest memory
// without decoding it first. Both are driven by the same tokenizer.
package codec
