package traits

import (
	"fmt"

	"github.com/fragnova/protos/categories"
	"github.com/fragnova/protos/codec"
)

// MaxDecodeDepth bounds VariableType nesting on the decode path. The bound
// exists to keep adversarial inputs from exhausting the call stack; it does
// not constrain encoding, and trees within the bound encode identically
// with or without it.
const MaxDecodeDepth = 256

func encodeType(w *codec.Writer, t VariableType) error {
	switch v := t.(type) {
	case None:
		w.Compact(uint64(TagNone))
	case Any:
		w.Compact(uint64(TagAny))
	case Enum:
		w.Compact(uint64(TagEnum))
		w.Compact(uint64(v.VendorID))
		w.Compact(uint64(v.TypeID))
	case Bool:
		w.Compact(uint64(TagBool))
	case Int:
		w.Compact(uint64(TagInt))
		encodeOptLimits(w, v.Limits)
	case Int2:
		w.Compact(uint64(TagInt2))
		encodeLimitsArray(w, v.Limits[:])
	case Int3:
		w.Compact(uint64(TagInt3))
		encodeLimitsArray(w, v.Limits[:])
	case Int4:
		w.Compact(uint64(TagInt4))
		encodeLimitsArray(w, v.Limits[:])
	case Int8:
		w.Compact(uint64(TagInt8))
		encodeLimitsArray(w, v.Limits[:])
	case Int16:
		w.Compact(uint64(TagInt16))
		encodeLimitsArray(w, v.Limits[:])
	case Float:
		w.Compact(uint64(TagFloat))
		encodeOptLimits(w, v.Limits)
	case Float2:
		w.Compact(uint64(TagFloat2))
		encodeLimitsArray(w, v.Limits[:])
	case Float3:
		w.Compact(uint64(TagFloat3))
		encodeLimitsArray(w, v.Limits[:])
	case Float4:
		w.Compact(uint64(TagFloat4))
		encodeLimitsArray(w, v.Limits[:])
	case Color:
		w.Compact(uint64(TagColor))
	case Bytes:
		w.Compact(uint64(TagBytes))
	case String:
		w.Compact(uint64(TagString))
	case Image:
		w.Compact(uint64(TagImage))
	case Seq:
		w.Compact(uint64(TagSeq))
		if err := encodeTypeVec(w, v.Types); err != nil {
			return err
		}
		encodeOptLimits(w, v.LengthLimits)
	case Table:
		w.Compact(uint64(TagTable))
		w.Compact(uint64(len(v.Keys)))
		for _, k := range v.Keys {
			w.Str(k)
		}
		w.Compact(uint64(len(v.Types)))
		for _, types := range v.Types {
			if err := encodeTypeVec(w, types); err != nil {
				return err
			}
		}
	case Object:
		w.Compact(uint64(TagObject))
		w.Compact(uint64(v.VendorID))
		w.Compact(uint64(v.TypeID))
	case Audio:
		w.Compact(uint64(TagAudio))
	case Mesh:
		w.Compact(uint64(TagMesh))
	case Code:
		w.Compact(uint64(TagCode))
		if err := encodeCodeKind(w, v.Kind); err != nil {
			return err
		}
		if err := encodeNamedVec(w, v.Requires); err != nil {
			return err
		}
		if err := encodeNamedVec(w, v.Exposes); err != nil {
			return err
		}
		if err := encodeTypeVec(w, v.Inputs); err != nil {
			return err
		}
		if err := encodeType(w, v.Output); err != nil {
			return err
		}
	case Channel:
		w.Compact(uint64(TagChannel))
		if err := encodeType(w, v.Type); err != nil {
			return err
		}
	case Event:
		w.Compact(uint64(TagEvent))
		if err := encodeType(w, v.Type); err != nil {
			return err
		}
	case Proto:
		w.Compact(uint64(TagProto))
		if err := categories.Encode(w, v.Category); err != nil {
			return err
		}
	default:
		return codec.NewError(codec.KindUnknownVariant, w.Len(), fmt.Sprintf("not a variable type: %T", t))
	}
	return nil
}

func encodeLimitsArray(w *codec.Writer, limits []*Limits) {
	for _, l := range limits {
		encodeOptLimits(w, l)
	}
}

func encodeTypeVec(w *codec.Writer, types []VariableType) error {
	w.Compact(uint64(len(types)))
	for _, t := range types {
		if err := encodeType(w, t); err != nil {
			return err
		}
	}
	return nil
}

func encodeNamedVec(w *codec.Writer, entries []NamedType) error {
	w.Compact(uint64(len(entries)))
	for _, e := range entries {
		w.Str(e.Name)
		if err := encodeType(w, e.Type); err != nil {
			return err
		}
	}
	return nil
}

func encodeCodeKind(w *codec.Writer, k CodeKind) error {
	switch v := k.(type) {
	case Shards:
		w.Compact(codeKindShards)
	case Wire:
		w.Compact(codeKindWire)
		if v.Looped == nil {
			w.Option(false)
		} else {
			w.Option(true)
			w.Bool(*v.Looped)
		}
	default:
		return codec.NewError(codec.KindUnknownVariant, w.Len(), fmt.Sprintf("not a code kind: %T", k))
	}
	return nil
}

func decodeType(r *codec.Reader, depth int) (VariableType, error) {
	if depth >= MaxDecodeDepth {
		return nil, codec.NewError(codec.KindDepthExceeded, r.Pos(), fmt.Sprintf("type tree nested deeper than %d", MaxDecodeDepth))
	}
	start := r.Pos()
	tag, err := r.Compact()
	if err != nil {
		return nil, err
	}
	switch Tag(tag) {
	case TagNone:
		return None{}, nil
	case TagAny:
		return Any{}, nil
	case TagEnum:
		vendor, typeID, err := decodeIDPair(r)
		if err != nil {
			return nil, err
		}
		return Enum{VendorID: vendor, TypeID: typeID}, nil
	case TagBool:
		return Bool{}, nil
	case TagInt:
		l, err := decodeOptLimits(r)
		if err != nil {
			return nil, err
		}
		return Int{Limits: l}, nil
	case TagInt2:
		var v Int2
		err := decodeLimitsArray(r, v.Limits[:])
		return v, err
	case TagInt3:
		var v Int3
		err := decodeLimitsArray(r, v.Limits[:])
		return v, err
	case TagInt4:
		var v Int4
		err := decodeLimitsArray(r, v.Limits[:])
		return v, err
	case TagInt8:
		var v Int8
		err := decodeLimitsArray(r, v.Limits[:])
		return v, err
	case TagInt16:
		var v Int16
		err := decodeLimitsArray(r, v.Limits[:])
		return v, err
	case TagFloat:
		l, err := decodeOptLimits(r)
		if err != nil {
			return nil, err
		}
		return Float{Limits: l}, nil
	case TagFloat2:
		var v Float2
		err := decodeLimitsArray(r, v.Limits[:])
		return v, err
	case TagFloat3:
		var v Float3
		err := decodeLimitsArray(r, v.Limits[:])
		return v, err
	case TagFloat4:
		var v Float4
		err := decodeLimitsArray(r, v.Limits[:])
		return v, err
	case TagColor:
		return Color{}, nil
	case TagBytes:
		return Bytes{}, nil
	case TagString:
		return String{}, nil
	case TagImage:
		return Image{}, nil
	case TagSeq:
		types, err := decodeTypeVec(r, depth)
		if err != nil {
			return nil, err
		}
		l, err := decodeOptLimits(r)
		if err != nil {
			return nil, err
		}
		return Seq{Types: types, LengthLimits: l}, nil
	case TagTable:
		return decodeTable(r, depth)
	case TagObject:
		vendor, typeID, err := decodeIDPair(r)
		if err != nil {
			return nil, err
		}
		return Object{VendorID: vendor, TypeID: typeID}, nil
	case TagAudio:
		return Audio{}, nil
	case TagMesh:
		return Mesh{}, nil
	case TagCode:
		return decodeCode(r, depth)
	case TagChannel:
		inner, err := decodeType(r, depth+1)
		if err != nil {
			return nil, err
		}
		return Channel{Type: inner}, nil
	case TagEvent:
		inner, err := decodeType(r, depth+1)
		if err != nil {
			return nil, err
		}
		return Event{Type: inner}, nil
	case TagProto:
		cat, err := categories.Decode(r)
		if err != nil {
			return nil, err
		}
		return Proto{Category: cat}, nil
	default:
		return nil, codec.NewError(codec.KindUnknownVariant, start, fmt.Sprintf("unknown variable type tag %d", tag))
	}
}

func decodeIDPair(r *codec.Reader) (vendor, typeID uint32, err error) {
	vendor, err = r.Compact32()
	if err != nil {
		return 0, 0, err
	}
	typeID, err = r.Compact32()
	if err != nil {
		return 0, 0, err
	}
	return vendor, typeID, nil
}

func decodeLimitsArray(r *codec.Reader, out []*Limits) error {
	for i := range out {
		l, err := decodeOptLimits(r)
		if err != nil {
			return err
		}
		out[i] = l
	}
	return nil
}

// readCount reads a collection length and rejects counts that cannot fit in
// the remaining input, before any allocation sized by the count.
func readCount(r *codec.Reader) (int, error) {
	start := r.Pos()
	n, err := r.Compact()
	if err != nil {
		return 0, err
	}
	if n > uint64(r.Remaining()) {
		return 0, codec.NewError(codec.KindUnexpectedEOF, start, "collection length exceeds remaining input")
	}
	return int(n), nil
}

func decodeTypeVec(r *codec.Reader, depth int) ([]VariableType, error) {
	n, err := readCount(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	types := make([]VariableType, 0, n)
	for i := 0; i < n; i++ {
		t, err := decodeType(r, depth+1)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

func decodeTable(r *codec.Reader, depth int) (VariableType, error) {
	n, err := readCount(r)
	if err != nil {
		return nil, err
	}
	var keys []string
	if n > 0 {
		keys = make([]string, 0, n)
	}
	for i := 0; i < n; i++ {
		k, err := r.Str()
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	m, err := readCount(r)
	if err != nil {
		return nil, err
	}
	var types [][]VariableType
	if m > 0 {
		types = make([][]VariableType, 0, m)
	}
	for i := 0; i < m; i++ {
		ts, err := decodeTypeVec(r, depth)
		if err != nil {
			return nil, err
		}
		types = append(types, ts)
	}
	return Table{Keys: keys, Types: types}, nil
}

func decodeCode(r *codec.Reader, depth int) (VariableType, error) {
	kind, err := decodeCodeKind(r)
	if err != nil {
		return nil, err
	}
	requires, err := decodeNamedVec(r, depth)
	if err != nil {
		return nil, err
	}
	exposes, err := decodeNamedVec(r, depth)
	if err != nil {
		return nil, err
	}
	inputs, err := decodeTypeVec(r, depth)
	if err != nil {
		return nil, err
	}
	output, err := decodeType(r, depth+1)
	if err != nil {
		return nil, err
	}
	return Code{Kind: kind, Requires: requires, Exposes: exposes, Inputs: inputs, Output: output}, nil
}

func decodeNamedVec(r *codec.Reader, depth int) ([]NamedType, error) {
	n, err := readCount(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	entries := make([]NamedType, 0, n)
	for i := 0; i < n; i++ {
		name, err := r.Str()
		if err != nil {
			return nil, err
		}
		t, err := decodeType(r, depth+1)
		if err != nil {
			return nil, err
		}
		entries = append(entries, NamedType{Name: name, Type: t})
	}
	return entries, nil
}

func decodeCodeKind(r *codec.Reader) (CodeKind, error) {
	start := r.Pos()
	tag, err := r.Compact()
	if err != nil {
		return nil, err
	}
	switch tag {
	case codeKindShards:
		return Shards{}, nil
	case codeKindWire:
		present, err := r.Option()
		if err != nil {
			return nil, err
		}
		if !present {
			return Wire{}, nil
		}
		b, err := r.Bool()
		if err != nil {
			return nil, err
		}
		return Wire{Looped: &b}, nil
	default:
		return nil, codec.NewError(codec.KindUnknownVariant, start, fmt.Sprintf("unknown code kind tag %d", tag))
	}
}
