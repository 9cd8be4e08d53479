// Package nbttest builds and encodes NBT tag trees for tests.
//
// The encoder here is a reference implementation of the wire format used to
// produce fixtures; production code only ever decodes.
package nbttest

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/okian/nbtscore/internal/domain/nbt"
)

// C builds a compound from alternating name/tag arguments. It panics on a
// malformed argument list.
func C(pairs ...any) *nbt.Compound {
	if len(pairs)%2 != 0 {
		panic("nbttest.C: odd number of arguments")
	}
	c := nbt.NewCompound()
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("nbttest.C: argument %d is %T, want string", i, pairs[i]))
		}
		t, ok := pairs[i+1].(nbt.Tag)
		if !ok {
			panic(fmt.Sprintf("nbttest.C: argument %d is %T, want nbt.Tag", i+1, pairs[i+1]))
		}
		c.Set(name, t)
	}
	return c
}

// L builds a list and panics if the items do not match elem.
func L(elem nbt.TagType, items ...nbt.Tag) *nbt.List {
	l, err := nbt.NewList(elem, items...)
	if err != nil {
		panic(err)
	}
	return l
}

// Encode writes root as a named root compound in uncompressed wire form.
func Encode(name string, root *nbt.Compound) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(nbt.TypeCompound))
	writeString(&buf, name)
	writePayload(&buf, root)
	return buf.Bytes()
}

// Gzip compresses b the way scoreboard.dat is stored on disk.
func Gzip(b []byte) []byte {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write(b)
	_ = zw.Close()
	return buf.Bytes()
}

// Zlib compresses b with a zlib header.
func Zlib(b []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(b)
	_ = zw.Close()
	return buf.Bytes()
}

func writeString(buf *bytes.Buffer, s string) {
	_ = binary.Write(buf, binary.BigEndian, uint16(len(s)))
	buf.WriteString(s)
}

func writePayload(buf *bytes.Buffer, t nbt.Tag) {
	switch v := t.(type) {
	case nbt.End:
	case nbt.Byte:
		buf.WriteByte(byte(v))
	case nbt.Short:
		_ = binary.Write(buf, binary.BigEndian, int16(v))
	case nbt.Int:
		_ = binary.Write(buf, binary.BigEndian, int32(v))
	case nbt.Long:
		_ = binary.Write(buf, binary.BigEndian, int64(v))
	case nbt.Float:
		_ = binary.Write(buf, binary.BigEndian, math.Float32bits(float32(v)))
	case nbt.Double:
		_ = binary.Write(buf, binary.BigEndian, math.Float64bits(float64(v)))
	case nbt.ByteArray:
		_ = binary.Write(buf, binary.BigEndian, int32(len(v)))
		for _, b := range v {
			buf.WriteByte(byte(b))
		}
	case nbt.String:
		writeString(buf, string(v))
	case *nbt.List:
		buf.WriteByte(byte(v.Elem()))
		_ = binary.Write(buf, binary.BigEndian, int32(v.Len()))
		for _, it := range v.Items() {
			writePayload(buf, it)
		}
	case *nbt.Compound:
		for _, name := range v.Names() {
			child, _ := v.Get(name)
			buf.WriteByte(byte(child.Type()))
			writeString(buf, name)
			writePayload(buf, child)
		}
		buf.WriteByte(byte(nbt.TypeEnd))
	case nbt.IntArray:
		_ = binary.Write(buf, binary.BigEndian, int32(len(v)))
		for _, n := range v {
			_ = binary.Write(buf, binary.BigEndian, n)
		}
	case nbt.LongArray:
		_ = binary.Write(buf, binary.BigEndian, int32(len(v)))
		for _, n := range v {
			_ = binary.Write(buf, binary.BigEndian, n)
		}
	default:
		panic(fmt.Sprintf("nbttest: unsupported tag %T", t))
	}
}
