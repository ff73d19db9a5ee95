package traits

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fragnova/protos/categories"
)

func TestJSONSimpleTrait(t *testing.T) {
	in := `{
		"name": "Trait1",
		"revision": 1,
		"records": [
			{"name": "int1", "types": [{"type": "Int"}]}
		]
	}`
	var tr Trait
	if err := json.Unmarshal([]byte(in), &tr); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := Trait{
		Name:     "Trait1",
		Revision: 1,
		Records:  []Record{{Name: "int1", Types: []VariableTypeInfo{{Type: Int{}}}}},
	}
	if diff := cmp.Diff(want, tr); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONTypeFieldAlias(t *testing.T) {
	for _, key := range []string{"type", "type_"} {
		in := `{"` + key + `": "Bool", "default": null}`
		var info VariableTypeInfo
		if err := json.Unmarshal([]byte(in), &info); err != nil {
			t.Fatalf("key %q: %v", key, err)
		}
		if _, ok := info.Type.(Bool); !ok {
			t.Fatalf("key %q: decoded %T", key, info.Type)
		}
	}
}

func TestJSONDefaultForms(t *testing.T) {
	var info VariableTypeInfo
	if err := json.Unmarshal([]byte(`{"type": "Bytes", "default": [222, 173]}`), &info); err != nil {
		t.Fatalf("number array: %v", err)
	}
	if string(info.Default) != "\xde\xad" {
		t.Fatalf("number array default = %x", info.Default)
	}

	if err := json.Unmarshal([]byte(`{"type": "Bytes", "default": "3q0="}`), &info); err != nil {
		t.Fatalf("base64: %v", err)
	}
	if string(info.Default) != "\xde\xad" {
		t.Fatalf("base64 default = %x", info.Default)
	}

	if err := json.Unmarshal([]byte(`{"type": "Bytes"}`), &info); err != nil {
		t.Fatalf("absent: %v", err)
	}
	if info.Default != nil {
		t.Fatalf("absent default = %x", info.Default)
	}

	if err := json.Unmarshal([]byte(`{"type": "Bytes", "default": [300]}`), &info); err == nil {
		t.Fatalf("out-of-range byte accepted")
	}
}

func TestJSONRichTrait(t *testing.T) {
	in := `{
		"name": "Ambal",
		"revision": 1,
		"records": [
			{
				"name": "Banner",
				"types": [{"type": {"Proto": {"texture": "pngFile"}}}]
			},
			{
				"name": "content",
				"types": [
					{"type": {"Int": {"min": -100, "max": 100, "scale": 2}}},
					{"type": {"Seq": {"types": ["String"], "length_limits": null}}}
				]
			},
			{
				"name": "logic",
				"types": [{
					"type": {"Code": {
						"kind": {"Wire": {"looped": true}},
						"requires": [["content", {"Int": null}]],
						"exposes": [],
						"inputs": ["Bytes"],
						"output": "None"
					}}
				}]
			}
		]
	}`
	var tr Trait
	if err := json.Unmarshal([]byte(in), &tr); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := Trait{
		Name:     "Ambal",
		Revision: 1,
		Records: []Record{
			{Name: "Banner", Types: []VariableTypeInfo{{Type: Proto{Category: categories.Texture{Sub: categories.TexturePngFile}}}}},
			{Name: "content", Types: []VariableTypeInfo{
				{Type: Int{Limits: limitsPtr(-100, 100, 2)}},
				{Type: Seq{Types: []VariableType{String{}}}},
			}},
			{Name: "logic", Types: []VariableTypeInfo{{Type: Code{
				Kind:     Wire{Looped: boolPtr(true)},
				Requires: []NamedType{{Name: "content", Type: Int{}}},
				Inputs:   []VariableType{Bytes{}},
				Output:   None{},
			}}}},
		},
	}
	if diff := cmp.Diff(want, tr); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	// The parsed declaration canonicalizes and encodes without error.
	if _, err := tr.EncodeCanonical(); err != nil {
		t.Fatalf("encode canonical: %v", err)
	}
}

func TestJSONMarshalRoundTrip(t *testing.T) {
	tr := Trait{
		Name:     "round",
		Revision: 9,
		Records: []Record{
			{Name: "a", Types: []VariableTypeInfo{
				{Type: Enum{VendorID: 3, TypeID: 4}},
				{Type: Table{Keys: []string{"", "k"}, Types: [][]VariableType{{Any{}}, {Channel{Type: Event{Type: Mesh{}}}}}}},
				{Type: Float3{Limits: [3]*Limits{nil, limitsPtr(0, 1000, 3), nil}}, Default: []byte{0, 1, 2}},
			}},
			{Name: "b", Types: []VariableTypeInfo{
				{Type: Object{VendorID: 1, TypeID: 2}},
				{Type: Code{Kind: Shards{}, Output: Int16{}}, Default: []byte{}},
			}},
		},
	}
	b, err := json.Marshal(tr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Trait
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(tr, got); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestJSONUnknownTypeRejected(t *testing.T) {
	cases := []string{
		`{"type": "Quaternion"}`,
		`{"type": {"Maybe": null}}`,
		`{"type": {"Int": null, "Float": null}}`,
		`{"default": [1]}`,
	}
	for _, in := range cases {
		var info VariableTypeInfo
		if err := json.Unmarshal([]byte(in), &info); err == nil {
			t.Fatalf("accepted %s", in)
		}
	}
}
