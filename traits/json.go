package traits

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/fragnova/protos/categories"
)

// JSON interchange mirrors the declaration files authors write: variable
// types are externally tagged, with unit cases as bare strings and payload
// cases as single-key objects. The type field of a VariableTypeInfo is
// written as "type_" and accepted as either "type_" or "type".

// MarshalJSON implements json.Marshaler.
func (i VariableTypeInfo) MarshalJSON() ([]byte, error) {
	t, err := marshalType(i.Type)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`{"type_":`)
	buf.Write(t)
	buf.WriteString(`,"default":`)
	if i.Default == nil {
		buf.WriteString("null")
	} else {
		nums := make([]uint16, len(i.Default))
		for j, b := range i.Default {
			nums[j] = uint16(b)
		}
		d, err := json.Marshal(nums)
		if err != nil {
			return nil, err
		}
		buf.Write(d)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *VariableTypeInfo) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type    json.RawMessage `json:"type_"`
		Alias   json.RawMessage `json:"type"`
		Default json.RawMessage `json:"default"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	tr := raw.Type
	if tr == nil {
		tr = raw.Alias
	}
	if tr == nil {
		return fmt.Errorf("variable type info: missing type field")
	}
	t, err := unmarshalType(tr)
	if err != nil {
		return err
	}
	def, err := defaultFromJSON(raw.Default)
	if err != nil {
		return err
	}
	i.Type = t
	i.Default = def
	return nil
}

func defaultFromJSON(raw json.RawMessage) ([]byte, error) {
	if raw == nil || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return base64.StdEncoding.DecodeString(s)
	}
	var nums []uint16
	if err := json.Unmarshal(raw, &nums); err != nil {
		return nil, err
	}
	def := make([]byte, len(nums))
	for i, n := range nums {
		if n > 0xFF {
			return nil, fmt.Errorf("default byte %d out of range", n)
		}
		def[i] = byte(n)
	}
	return def, nil
}

type limitsJSON = Limits

type seqJSON struct {
	Types        []json.RawMessage `json:"types"`
	LengthLimits *limitsJSON       `json:"length_limits"`
}

type tableJSON struct {
	Keys  []string            `json:"keys"`
	Types [][]json.RawMessage `json:"types"`
}

type idPairJSON struct {
	VendorID uint32 `json:"vendor_id"`
	TypeID   uint32 `json:"type_id"`
}

type codeJSON struct {
	Kind     json.RawMessage   `json:"kind"`
	Requires []json.RawMessage `json:"requires"`
	Exposes  []json.RawMessage `json:"exposes"`
	Inputs   []json.RawMessage `json:"inputs"`
	Output   json.RawMessage   `json:"output"`
}

type wireKindJSON struct {
	Looped *bool `json:"looped"`
}

func tagObject(name string, payload interface{}) ([]byte, error) {
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`{"`)
	buf.WriteString(name)
	buf.WriteString(`":`)
	buf.Write(p)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalTypeVec(types []VariableType) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(types))
	for i, t := range types {
		raw, err := marshalType(t)
		if err != nil {
			return nil, err
		}
		out[i] = raw
	}
	return out, nil
}

func marshalNamedVec(entries []NamedType) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(entries))
	for i, e := range entries {
		t, err := marshalType(e.Type)
		if err != nil {
			return nil, err
		}
		pair, err := json.Marshal([2]json.RawMessage{mustJSON(e.Name), t})
		if err != nil {
			return nil, err
		}
		out[i] = pair
	}
	return out, nil
}

func mustJSON(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func marshalType(t VariableType) ([]byte, error) {
	switch v := t.(type) {
	case None:
		return []byte(`"None"`), nil
	case Any:
		return []byte(`"Any"`), nil
	case Bool:
		return []byte(`"Bool"`), nil
	case Color:
		return []byte(`"Color"`), nil
	case Bytes:
		return []byte(`"Bytes"`), nil
	case String:
		return []byte(`"String"`), nil
	case Image:
		return []byte(`"Image"`), nil
	case Audio:
		return []byte(`"Audio"`), nil
	case Mesh:
		return []byte(`"Mesh"`), nil
	case Enum:
		return tagObject("Enum", idPairJSON{VendorID: v.VendorID, TypeID: v.TypeID})
	case Object:
		return tagObject("Object", idPairJSON{VendorID: v.VendorID, TypeID: v.TypeID})
	case Int:
		return tagObject("Int", v.Limits)
	case Int2:
		return tagObject("Int2", v.Limits)
	case Int3:
		return tagObject("Int3", v.Limits)
	case Int4:
		return tagObject("Int4", v.Limits)
	case Int8:
		return tagObject("Int8", v.Limits)
	case Int16:
		return tagObject("Int16", v.Limits)
	case Float:
		return tagObject("Float", v.Limits)
	case Float2:
		return tagObject("Float2", v.Limits)
	case Float3:
		return tagObject("Float3", v.Limits)
	case Float4:
		return tagObject("Float4", v.Limits)
	case Seq:
		types, err := marshalTypeVec(v.Types)
		if err != nil {
			return nil, err
		}
		return tagObject("Seq", seqJSON{Types: types, LengthLimits: v.LengthLimits})
	case Table:
		types := make([][]json.RawMessage, len(v.Types))
		for i, ts := range v.Types {
			raw, err := marshalTypeVec(ts)
			if err != nil {
				return nil, err
			}
			types[i] = raw
		}
		keys := v.Keys
		if keys == nil {
			keys = []string{}
		}
		return tagObject("Table", tableJSON{Keys: keys, Types: types})
	case Code:
		kind, err := marshalCodeKind(v.Kind)
		if err != nil {
			return nil, err
		}
		requires, err := marshalNamedVec(v.Requires)
		if err != nil {
			return nil, err
		}
		exposes, err := marshalNamedVec(v.Exposes)
		if err != nil {
			return nil, err
		}
		inputs, err := marshalTypeVec(v.Inputs)
		if err != nil {
			return nil, err
		}
		output, err := marshalType(v.Output)
		if err != nil {
			return nil, err
		}
		return tagObject("Code", codeJSON{
			Kind:     kind,
			Requires: requires,
			Exposes:  exposes,
			Inputs:   inputs,
			Output:   output,
		})
	case Channel:
		inner, err := marshalType(v.Type)
		if err != nil {
			return nil, err
		}
		return tagObject("Channel", json.RawMessage(inner))
	case Event:
		inner, err := marshalType(v.Type)
		if err != nil {
			return nil, err
		}
		return tagObject("Event", json.RawMessage(inner))
	case Proto:
		cat, err := categories.MarshalCategory(v.Category)
		if err != nil {
			return nil, err
		}
		return tagObject("Proto", json.RawMessage(cat))
	default:
		return nil, fmt.Errorf("not a variable type: %T", t)
	}
}

func marshalCodeKind(k CodeKind) (json.RawMessage, error) {
	switch v := k.(type) {
	case Shards:
		return json.RawMessage(`"Shards"`), nil
	case Wire:
		return tagObject("Wire", wireKindJSON{Looped: v.Looped})
	default:
		return nil, fmt.Errorf("not a code kind: %T", k)
	}
}

func unmarshalType(raw json.RawMessage) (VariableType, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty variable type")
	}
	if raw[0] == '"' {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, err
		}
		switch name {
		case "None":
			return None{}, nil
		case "Any":
			return Any{}, nil
		case "Bool":
			return Bool{}, nil
		case "Color":
			return Color{}, nil
		case "Bytes":
			return Bytes{}, nil
		case "String":
			return String{}, nil
		case "Image":
			return Image{}, nil
		case "Audio":
			return Audio{}, nil
		case "Mesh":
			return Mesh{}, nil
		default:
			return nil, fmt.Errorf("unknown variable type %q", name)
		}
	}
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return nil, err
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("variable type object must have exactly one key")
	}
	var name string
	var payload json.RawMessage
	for k, v := range tagged {
		name, payload = k, v
	}
	switch name {
	case "Enum":
		var p idPairJSON
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		return Enum{VendorID: p.VendorID, TypeID: p.TypeID}, nil
	case "Object":
		var p idPairJSON
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		return Object{VendorID: p.VendorID, TypeID: p.TypeID}, nil
	case "Int":
		var l *Limits
		if err := json.Unmarshal(payload, &l); err != nil {
			return nil, err
		}
		return Int{Limits: l}, nil
	case "Float":
		var l *Limits
		if err := json.Unmarshal(payload, &l); err != nil {
			return nil, err
		}
		return Float{Limits: l}, nil
	case "Int2":
		var v Int2
		err := json.Unmarshal(payload, &v.Limits)
		return v, err
	case "Int3":
		var v Int3
		err := json.Unmarshal(payload, &v.Limits)
		return v, err
	case "Int4":
		var v Int4
		err := json.Unmarshal(payload, &v.Limits)
		return v, err
	case "Int8":
		var v Int8
		err := json.Unmarshal(payload, &v.Limits)
		return v, err
	case "Int16":
		var v Int16
		err := json.Unmarshal(payload, &v.Limits)
		return v, err
	case "Float2":
		var v Float2
		err := json.Unmarshal(payload, &v.Limits)
		return v, err
	case "Float3":
		var v Float3
		err := json.Unmarshal(payload, &v.Limits)
		return v, err
	case "Float4":
		var v Float4
		err := json.Unmarshal(payload, &v.Limits)
		return v, err
	case "Seq":
		var p seqJSON
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		types, err := unmarshalTypeVec(p.Types)
		if err != nil {
			return nil, err
		}
		return Seq{Types: types, LengthLimits: p.LengthLimits}, nil
	case "Table":
		var p tableJSON
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		if len(p.Keys) != len(p.Types) {
			return nil, fmt.Errorf("table keys and types differ in length")
		}
		types := make([][]VariableType, len(p.Types))
		for i, ts := range p.Types {
			decoded, err := unmarshalTypeVec(ts)
			if err != nil {
				return nil, err
			}
			types[i] = decoded
		}
		return Table{Keys: p.Keys, Types: types}, nil
	case "Code":
		var p codeJSON
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		kind, err := unmarshalCodeKind(p.Kind)
		if err != nil {
			return nil, err
		}
		requires, err := unmarshalNamedVec(p.Requires)
		if err != nil {
			return nil, err
		}
		exposes, err := unmarshalNamedVec(p.Exposes)
		if err != nil {
			return nil, err
		}
		inputs, err := unmarshalTypeVec(p.Inputs)
		if err != nil {
			return nil, err
		}
		if p.Output == nil {
			return nil, fmt.Errorf("code: missing output type")
		}
		output, err := unmarshalType(p.Output)
		if err != nil {
			return nil, err
		}
		return Code{Kind: kind, Requires: requires, Exposes: exposes, Inputs: inputs, Output: output}, nil
	case "Channel":
		inner, err := unmarshalType(payload)
		if err != nil {
			return nil, err
		}
		return Channel{Type: inner}, nil
	case "Event":
		inner, err := unmarshalType(payload)
		if err != nil {
			return nil, err
		}
		return Event{Type: inner}, nil
	case "Proto":
		cat, err := categories.UnmarshalCategory(payload)
		if err != nil {
			return nil, err
		}
		return Proto{Category: cat}, nil
	default:
		return nil, fmt.Errorf("unknown variable type %q", name)
	}
}

func unmarshalTypeVec(raws []json.RawMessage) ([]VariableType, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	types := make([]VariableType, len(raws))
	for i, raw := range raws {
		t, err := unmarshalType(raw)
		if err != nil {
			return nil, err
		}
		types[i] = t
	}
	return types, nil
}

func unmarshalNamedVec(raws []json.RawMessage) ([]NamedType, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	entries := make([]NamedType, len(raws))
	for i, raw := range raws {
		var pair [2]json.RawMessage
		if err := json.Unmarshal(raw, &pair); err != nil {
			return nil, err
		}
		var name string
		if err := json.Unmarshal(pair[0], &name); err != nil {
			return nil, err
		}
		t, err := unmarshalType(pair[1])
		if err != nil {
			return nil, err
		}
		entries[i] = NamedType{Name: name, Type: t}
	}
	return entries, nil
}

func unmarshalCodeKind(raw json.RawMessage) (CodeKind, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("code: missing kind")
	}
	if raw[0] == '"' {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, err
		}
		if name != "Shards" {
			return nil, fmt.Errorf("unknown code kind %q", name)
		}
		return Shards{}, nil
	}
	var tagged map[string]wireKindJSON
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return nil, err
	}
	w, ok := tagged["Wire"]
	if !ok || len(tagged) != 1 {
		return nil, fmt.Errorf("unknown code kind object")
	}
	return Wire{Looped: w.Looped}, nil
}
