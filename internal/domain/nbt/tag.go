// Package nbt decodes Minecraft's Named Binary Tag format into a typed,
// read-only tag tree.
//
// The tree is a closed sum type: every value is one of the named types in
// this file, and the unexported marker method on Tag keeps other packages
// from adding variants.
package nbt

import (
	"fmt"
	"strconv"
)

// TagType is the one-byte type id that prefixes every tag on the wire.
type TagType byte

// Tag type ids, in wire order.
const (
	TypeEnd TagType = iota
	TypeByte
	TypeShort
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeByteArray
	TypeString
	TypeList
	TypeCompound
	TypeIntArray
	TypeLongArray
)

var typeNames = [...]string{
	TypeEnd:       "End",
	TypeByte:      "Byte",
	TypeShort:     "Short",
	TypeInt:       "Int",
	TypeLong:      "Long",
	TypeFloat:     "Float",
	TypeDouble:    "Double",
	TypeByteArray: "ByteArray",
	TypeString:    "String",
	TypeList:      "List",
	TypeCompound:  "Compound",
	TypeIntArray:  "IntArray",
	TypeLongArray: "LongArray",
}

// Valid reports whether t is one of the thirteen defined type ids.
func (t TagType) Valid() bool { return t <= TypeLongArray }

func (t TagType) String() string {
	if t.Valid() {
		return typeNames[t]
	}
	return "TagType(" + strconv.Itoa(int(t)) + ")"
}

// Tag is any decoded NBT value.
type Tag interface {
	Type() TagType
	tag()
}

type (
	// End marks the end of a compound on the wire. It only appears in memory
	// as the element type of an empty list.
	End       struct{}
	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	ByteArray []int8
	String    string
	IntArray  []int32
	LongArray []int64
)

func (End) Type() TagType       { return TypeEnd }
func (Byte) Type() TagType      { return TypeByte }
func (Short) Type() TagType     { return TypeShort }
func (Int) Type() TagType       { return TypeInt }
func (Long) Type() TagType      { return TypeLong }
func (Float) Type() TagType     { return TypeFloat }
func (Double) Type() TagType    { return TypeDouble }
func (ByteArray) Type() TagType { return TypeByteArray }
func (String) Type() TagType    { return TypeString }
func (IntArray) Type() TagType  { return TypeIntArray }
func (LongArray) Type() TagType { return TypeLongArray }
func (*List) Type() TagType     { return TypeList }
func (*Compound) Type() TagType { return TypeCompound }

func (End) tag()       {}
func (Byte) tag()      {}
func (Short) tag()     {}
func (Int) tag()       {}
func (Long) tag()      {}
func (Float) tag()     {}
func (Double) tag()    {}
func (ByteArray) tag() {}
func (String) tag()    {}
func (IntArray) tag()  {}
func (LongArray) tag() {}
func (*List) tag()     {}
func (*Compound) tag() {}

// List is a homogeneous sequence whose element type is fixed at construction.
type List struct {
	elem  TagType
	items []Tag
}

// NewList builds a list of elem-typed tags. It fails if any item has a
// different type or if elem is End and items are given.
func NewList(elem TagType, items ...Tag) (*List, error) {
	if !elem.Valid() {
		return nil, fmt.Errorf("%w: list element type %s", ErrMalformedFormat, elem)
	}
	l := &List{elem: elem, items: make([]Tag, 0, len(items))}
	for _, it := range items {
		if err := l.Append(it); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Append adds t to the end of the list.
func (l *List) Append(t Tag) error {
	if t == nil || t.Type() != l.elem {
		return fmt.Errorf("%w: cannot append %s to list of %s", ErrMalformedFormat, typeOf(t), l.elem)
	}
	l.items = append(l.items, t)
	return nil
}

// Elem returns the declared element type.
func (l *List) Elem() TagType { return l.elem }

// Len returns the number of elements.
func (l *List) Len() int { return len(l.items) }

// At returns the i-th element.
func (l *List) At(i int) Tag { return l.items[i] }

// Items returns the elements in order. The slice must not be modified.
func (l *List) Items() []Tag { return l.items }

// Compound maps names to tags and remembers the order in which names were
// first set.
type Compound struct {
	names []string
	tags  map[string]Tag
}

// NewCompound returns an empty compound.
func NewCompound() *Compound {
	return &Compound{tags: make(map[string]Tag)}
}

// Set stores t under name. Setting an existing name replaces its value and
// keeps its original position (last write wins).
func (c *Compound) Set(name string, t Tag) {
	if c.tags == nil {
		c.tags = make(map[string]Tag)
	}
	if _, ok := c.tags[name]; !ok {
		c.names = append(c.names, name)
	}
	c.tags[name] = t
}

// Get returns the tag stored under name.
func (c *Compound) Get(name string) (Tag, bool) {
	if c == nil {
		return nil, false
	}
	t, ok := c.tags[name]
	return t, ok
}

// Names returns the keys in insertion order. The slice must not be modified.
func (c *Compound) Names() []string { return c.names }

// Len returns the number of entries.
func (c *Compound) Len() int { return len(c.names) }

// Lookup returns the tag stored under name when it has Go type T.
//
//	data, ok := nbt.Lookup[*nbt.Compound](root, "data")
func Lookup[T Tag](c *Compound, name string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	t, ok := c.tags[name]
	if !ok {
		return zero, false
	}
	v, ok := t.(T)
	return v, ok
}

func typeOf(t Tag) string {
	if t == nil {
		return "nil"
	}
	return t.Type().String()
}
