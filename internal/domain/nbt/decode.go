package nbt

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf16"
	"unicode/utf8"
)

// maxDepth bounds list/compound nesting, matching the game's own reader.
const maxDepth = 512

// Decode parses data into its root compound. Gzip and zlib wrapped input is
// decompressed first; anything else is read as raw NBT.
//
// Duplicate names inside one compound are accepted and the last value wins.
// Bytes after the root compound are ignored.
func Decode(data []byte) (*Compound, error) {
	_, root, err := DecodeNamed(data)
	return root, err
}

// DecodeNamed is Decode that also returns the root tag's name, usually "".
func DecodeNamed(data []byte) (string, *Compound, error) {
	raw, err := decompress(data)
	if err != nil {
		return "", nil, err
	}

	if len(raw) == 0 {
		return "", nil, fmt.Errorf("%w: empty input", ErrUnexpectedEnd)
	}

	d := &decoder{buf: raw}
	t, err := d.readType()
	if err != nil {
		return "", nil, err
	}
	if t != TypeCompound {
		return "", nil, fmt.Errorf("%w: root tag is %s, want Compound", ErrUnexpectedEnd, t)
	}
	name, err := d.readString()
	if err != nil {
		return "", nil, err
	}
	root, err := d.readCompound()
	if err != nil {
		return "", nil, err
	}
	return name, root, nil
}

// decompress unwraps gzip (magic 1f 8b) and zlib (CMF 0x78) streams. Neither
// prefix can start raw NBT since 0x1f and 0x78 are not type ids.
func decompress(data []byte) ([]byte, error) {
	switch {
	case len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, streamError("gzip", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, streamError("gzip", err)
		}
		return out, nil
	case len(data) >= 2 && data[0] == 0x78 && (uint16(data[0])<<8|uint16(data[1]))%31 == 0:
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, streamError("zlib", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, streamError("zlib", err)
		}
		return out, nil
	default:
		return data, nil
	}
}

func streamError(format string, err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s stream: %v", ErrTruncatedInput, format, err)
	}
	return fmt.Errorf("%w: %s stream: %v", ErrMalformedFormat, format, err)
}

// decoder is a forward-only cursor over an uncompressed buffer.
type decoder struct {
	buf   []byte
	off   int
	depth int
}

func (d *decoder) remaining() int { return len(d.buf) - d.off }

func (d *decoder) take(n int) ([]byte, error) {
	if d.remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedInput, n, d.off, d.remaining())
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

// need fails before allocating n elements of width bytes that cannot exist.
func (d *decoder) need(n, width int) error {
	if width > 0 && n > d.remaining()/width {
		return fmt.Errorf("%w: %d elements of %d bytes at offset %d, have %d bytes", ErrTruncatedInput, n, width, d.off, d.remaining())
	}
	return nil
}

func (d *decoder) readType() (TagType, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	t := TagType(b[0])
	if !t.Valid() {
		return 0, fmt.Errorf("%w: type id %d at offset %d", ErrMalformedFormat, b[0], d.off-1)
	}
	return t, nil
}

func (d *decoder) readString() (string, error) {
	b, err := d.take(2)
	if err != nil {
		return "", err
	}
	start := d.off
	s, err := d.take(int(binary.BigEndian.Uint16(b)))
	if err != nil {
		return "", err
	}
	if utf8.Valid(s) {
		return string(s), nil
	}
	out, ok := decodeModifiedUTF8(s)
	if !ok {
		return "", fmt.Errorf("%w: string at offset %d", ErrInvalidEncoding, start)
	}
	return out, nil
}

// decodeModifiedUTF8 reads Java's modified UTF-8: NUL is C0 80 and runes
// outside the BMP are a surrogate pair of three-byte sequences. Plain UTF-8
// sequences are accepted as well. A lone surrogate is invalid.
func decodeModifiedUTF8(s []byte) (string, bool) {
	out := make([]rune, 0, len(s))
	for i := 0; i < len(s); {
		switch {
		case s[i] < utf8.RuneSelf:
			out = append(out, rune(s[i]))
			i++
		case s[i] == 0xc0 && i+1 < len(s) && s[i+1] == 0x80:
			out = append(out, 0)
			i += 2
		case isSurrogate(s[i:], 0xa0):
			if !isSurrogate(s[i+3:], 0xb0) {
				return "", false
			}
			out = append(out, utf16.DecodeRune(surrogate(s[i:]), surrogate(s[i+3:])))
			i += 6
		default:
			r, size := utf8.DecodeRune(s[i:])
			if r == utf8.RuneError && size <= 1 {
				return "", false
			}
			out = append(out, r)
			i += size
		}
	}
	return string(out), true
}

// isSurrogate reports whether b starts with ED followed by a continuation
// byte in [lo, lo+0x0f] and one more continuation byte. lo is A0 for a high
// surrogate and B0 for a low one.
func isSurrogate(b []byte, lo byte) bool {
	return len(b) >= 3 && b[0] == 0xed &&
		b[1] >= lo && b[1] <= lo+0x0f &&
		b[2]&0xc0 == 0x80
}

func surrogate(b []byte) rune {
	return rune(b[0]&0x0f)<<12 | rune(b[1]&0x3f)<<6 | rune(b[2]&0x3f)
}

func (d *decoder) readLength() (int, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	n := int32(binary.BigEndian.Uint32(b))
	if n < 0 {
		return 0, fmt.Errorf("%w: negative length %d at offset %d", ErrMalformedFormat, n, d.off-4)
	}
	return int(n), nil
}

func (d *decoder) enter() error {
	if d.depth >= maxDepth {
		return fmt.Errorf("%w: nesting deeper than %d at offset %d", ErrMalformedFormat, maxDepth, d.off)
	}
	d.depth++
	return nil
}

func (d *decoder) readPayload(t TagType) (Tag, error) {
	switch t {
	case TypeEnd:
		return End{}, nil
	case TypeByte:
		b, err := d.take(1)
		if err != nil {
			return nil, err
		}
		return Byte(int8(b[0])), nil
	case TypeShort:
		b, err := d.take(2)
		if err != nil {
			return nil, err
		}
		return Short(int16(binary.BigEndian.Uint16(b))), nil
	case TypeInt:
		b, err := d.take(4)
		if err != nil {
			return nil, err
		}
		return Int(int32(binary.BigEndian.Uint32(b))), nil
	case TypeLong:
		b, err := d.take(8)
		if err != nil {
			return nil, err
		}
		return Long(int64(binary.BigEndian.Uint64(b))), nil
	case TypeFloat:
		b, err := d.take(4)
		if err != nil {
			return nil, err
		}
		return Float(math.Float32frombits(binary.BigEndian.Uint32(b))), nil
	case TypeDouble:
		b, err := d.take(8)
		if err != nil {
			return nil, err
		}
		return Double(math.Float64frombits(binary.BigEndian.Uint64(b))), nil
	case TypeByteArray:
		return d.readByteArray()
	case TypeString:
		s, err := d.readString()
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case TypeList:
		return d.readList()
	case TypeCompound:
		return d.readCompound()
	case TypeIntArray:
		return d.readIntArray()
	case TypeLongArray:
		return d.readLongArray()
	default:
		return nil, fmt.Errorf("%w: type id %d", ErrMalformedFormat, byte(t))
	}
}

func (d *decoder) readByteArray() (ByteArray, error) {
	n, err := d.readLength()
	if err != nil {
		return nil, err
	}
	b, err := d.take(n)
	if err != nil {
		return nil, err
	}
	out := make(ByteArray, n)
	for i, v := range b {
		out[i] = int8(v)
	}
	return out, nil
}

func (d *decoder) readIntArray() (IntArray, error) {
	n, err := d.readLength()
	if err != nil {
		return nil, err
	}
	if err := d.need(n, 4); err != nil {
		return nil, err
	}
	b, _ := d.take(n * 4)
	out := make(IntArray, n)
	for i := range out {
		out[i] = int32(binary.BigEndian.Uint32(b[i*4:]))
	}
	return out, nil
}

func (d *decoder) readLongArray() (LongArray, error) {
	n, err := d.readLength()
	if err != nil {
		return nil, err
	}
	if err := d.need(n, 8); err != nil {
		return nil, err
	}
	b, _ := d.take(n * 8)
	out := make(LongArray, n)
	for i := range out {
		out[i] = int64(binary.BigEndian.Uint64(b[i*8:]))
	}
	return out, nil
}

func (d *decoder) readList() (*List, error) {
	elem, err := d.readType()
	if err != nil {
		return nil, err
	}
	n, err := d.readLength()
	if err != nil {
		return nil, err
	}
	if elem == TypeEnd && n > 0 {
		return nil, fmt.Errorf("%w: list of End with %d elements at offset %d", ErrMalformedFormat, n, d.off-4)
	}
	// Every non-End payload is at least one byte wide.
	if err := d.need(n, 1); err != nil {
		return nil, err
	}
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()

	l := &List{elem: elem, items: make([]Tag, 0, n)}
	for i := 0; i < n; i++ {
		v, err := d.readPayload(elem)
		if err != nil {
			return nil, err
		}
		l.items = append(l.items, v)
	}
	return l, nil
}

func (d *decoder) readCompound() (*Compound, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()

	c := NewCompound()
	for {
		t, err := d.readType()
		if err != nil {
			return nil, err
		}
		if t == TypeEnd {
			return c, nil
		}
		name, err := d.readString()
		if err != nil {
			return nil, err
		}
		v, err := d.readPayload(t)
		if err != nil {
			return nil, err
		}
		c.Set(name, v)
	}
}
