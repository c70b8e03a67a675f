package dmseg

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Elem is one decoded DanmakuElem.
type Elem struct {
	ID       int64
	Progress int32 // milliseconds into the video
	Mode     int32
	FontSize int32
	Color    uint32
	MidHash  string
	Content  string
	CTime    int64 // unix seconds
	Weight   int32
	Action   string
	Pool     int32
	IDStr    string
	Attr     int32
}

// ErrMalformed is returned when the payload is not valid protobuf wire data.
var ErrMalformed = errors.New("malformed danmaku segment")

// Decode parses a DmSegMobileReply payload. Field 1 carries the repeated
// elements; every other top-level field is skipped.
func Decode(b []byte) ([]Elem, error) {
	var out []Elem
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]
		if num == 1 && typ == protowire.BytesType {
			raw, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: elems: %v", ErrMalformed, protowire.ParseError(m))
			}
			elem, err := decodeElem(raw)
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
			b = b[m:]
			continue
		}
		m := protowire.ConsumeFieldValue(num, typ, b)
		if m < 0 {
			return nil, fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(m))
		}
		b = b[m:]
	}
	return out, nil
}

func decodeElem(b []byte) (Elem, error) {
	var e Elem
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Elem{}, fmt.Errorf("%w: elem tag: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		switch typ {
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return Elem{}, fmt.Errorf("%w: elem field %d: %v", ErrMalformed, num, protowire.ParseError(m))
			}
			setVarint(&e, num, v)
			b = b[m:]
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return Elem{}, fmt.Errorf("%w: elem field %d: %v", ErrMalformed, num, protowire.ParseError(m))
			}
			setBytes(&e, num, v)
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return Elem{}, fmt.Errorf("%w: elem field %d: %v", ErrMalformed, num, protowire.ParseError(m))
			}
			b = b[m:]
		}
	}
	return e, nil
}

func setVarint(e *Elem, num protowire.Number, v uint64) {
	switch num {
	case 1:
		e.ID = int64(v)
	case 2:
		e.Progress = int32(v)
	case 3:
		e.Mode = int32(v)
	case 4:
		e.FontSize = int32(v)
	case 5:
		e.Color = uint32(v)
	case 8:
		e.CTime = int64(v)
	case 9:
		e.Weight = int32(v)
	case 11:
		e.Pool = int32(v)
	case 13:
		e.Attr = int32(v)
	}
}

func setBytes(e *Elem, num protowire.Number, v []byte) {
	switch num {
	case 6:
		e.MidHash = string(v)
	case 7:
		e.Content = string(v)
	case 10:
		e.Action = string(v)
	case 12:
		e.IDStr = string(v)
	}
}

// Encode renders elems as a DmSegMobileReply payload. Zero-valued fields are
// omitted, matching proto3 encoding.
func Encode(elems []Elem) []byte {
	var out []byte
	for _, e := range elems {
		out = protowire.AppendTag(out, 1, protowire.BytesType)
		out = protowire.AppendBytes(out, encodeElem(e))
	}
	return out
}

func encodeElem(e Elem) []byte {
	var b []byte
	appendVarint := func(num protowire.Number, v uint64) {
		if v == 0 {
			return
		}
		b = protowire.AppendTag(b, num, protowire.VarintType)
		b = protowire.AppendVarint(b, v)
	}
	appendString := func(num protowire.Number, s string) {
		if s == "" {
			return
		}
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendString(b, s)
	}

	appendVarint(1, uint64(e.ID))
	appendVarint(2, uint64(e.Progress))
	appendVarint(3, uint64(e.Mode))
	appendVarint(4, uint64(e.FontSize))
	appendVarint(5, uint64(e.Color))
	appendString(6, e.MidHash)
	appendString(7, e.Content)
	appendVarint(8, uint64(e.CTime))
	appendVarint(9, uint64(e.Weight))
	appendString(10, e.Action)
	appendVarint(11, uint64(e.Pool))
	appendString(12, e.IDStr)
	appendVarint(13, uint64(e.Attr))
	return b
}
