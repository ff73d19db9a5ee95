package categories

import (
	"encoding/json"
	"fmt"

	"github.com/fragnova/protos/identity"
)

// The interchange form is an object with exactly one camelCase key naming
// the case, e.g. {"texture": "pngFile"} or {"wire": ["generic", []]}.
// Trait references are written as arrays of 8 byte values; the 16-hex-char
// string form is accepted on input.

// MarshalCategory renders c in the interchange form.
func MarshalCategory(c Category) ([]byte, error) {
	switch v := c.(type) {
	case Text:
		return tagged("text", v.Sub.String())
	case Trait:
		return tagged("trait", refBytes(v.Ref))
	case Wire:
		refs := make([][]int, len(v.Traits))
		for i, ref := range v.Traits {
			refs[i] = refBytes(ref)
		}
		return tagged("wire", []interface{}{v.Sub.String(), refs})
	case Audio:
		return tagged("audio", v.Sub.String())
	case Texture:
		return tagged("texture", v.Sub.String())
	case Vector:
		return tagged("vector", v.Sub.String())
	case Video:
		return tagged("video", v.Sub.String())
	case Model:
		return tagged("model", v.Sub.String())
	case Binary:
		return tagged("binary", v.Sub.String())
	default:
		return nil, fmt.Errorf("categories: not a category: %T", c)
	}
}

// UnmarshalCategory parses the interchange form.
func UnmarshalCategory(data []byte) (Category, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	if len(obj) != 1 {
		return nil, fmt.Errorf("categories: expected exactly one case key, got %d", len(obj))
	}
	for key, raw := range obj {
		switch key {
		case "text":
			sub, err := subFromJSON(raw, textNames)
			if err != nil {
				return nil, err
			}
			return Text{Sub: TextCategory(sub)}, nil
		case "trait":
			ref, err := refFromJSON(raw)
			if err != nil {
				return nil, err
			}
			return Trait{Ref: ref}, nil
		case "wire":
			var parts []json.RawMessage
			if err := json.Unmarshal(raw, &parts); err != nil {
				return nil, fmt.Errorf("categories: wire case: %w", err)
			}
			if len(parts) != 2 {
				return nil, fmt.Errorf("categories: wire case expects [subCategory, traits], got %d elements", len(parts))
			}
			sub, err := subFromJSON(parts[0], wireNames)
			if err != nil {
				return nil, err
			}
			var rawRefs []json.RawMessage
			if err := json.Unmarshal(parts[1], &rawRefs); err != nil {
				return nil, fmt.Errorf("categories: wire traits: %w", err)
			}
			refs := make([]identity.TraitRef, 0, len(rawRefs))
			for _, rr := range rawRefs {
				ref, err := refFromJSON(rr)
				if err != nil {
					return nil, err
				}
				refs = append(refs, ref)
			}
			return Wire{Sub: WireCategory(sub), Traits: refs}, nil
		case "audio":
			sub, err := subFromJSON(raw, audioNames)
			if err != nil {
				return nil, err
			}
			return Audio{Sub: AudioCategory(sub)}, nil
		case "texture":
			sub, err := subFromJSON(raw, textureNames)
			if err != nil {
				return nil, err
			}
			return Texture{Sub: TextureCategory(sub)}, nil
		case "vector":
			sub, err := subFromJSON(raw, vectorNames)
			if err != nil {
				return nil, err
			}
			return Vector{Sub: VectorCategory(sub)}, nil
		case "video":
			sub, err := subFromJSON(raw, videoNames)
			if err != nil {
				return nil, err
			}
			return Video{Sub: VideoCategory(sub)}, nil
		case "model":
			sub, err := subFromJSON(raw, modelNames)
			if err != nil {
				return nil, err
			}
			return Model{Sub: ModelCategory(sub)}, nil
		case "binary":
			sub, err := subFromJSON(raw, binaryNames)
			if err != nil {
				return nil, err
			}
			return Binary{Sub: BinaryCategory(sub)}, nil
		default:
			return nil, fmt.Errorf("categories: unknown case %q", key)
		}
	}
	return nil, fmt.Errorf("categories: empty object")
}

func tagged(key string, value interface{}) ([]byte, error) {
	return json.Marshal(map[string]interface{}{key: value})
}

func refBytes(ref identity.TraitRef) []int {
	out := make([]int, identity.RefSize)
	for i, b := range ref {
		out[i] = int(b)
	}
	return out
}

func subFromJSON(raw json.RawMessage, names []string) (uint32, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return 0, fmt.Errorf("categories: sub-category: %w", err)
	}
	for i, n := range names {
		if n == name {
			return uint32(i), nil
		}
	}
	return 0, fmt.Errorf("categories: unknown sub-category %q", name)
}

func refFromJSON(raw json.RawMessage) (identity.TraitRef, error) {
	var ref identity.TraitRef

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return identity.ParseRef(s)
	}

	var nums []uint16
	if err := json.Unmarshal(raw, &nums); err != nil {
		return ref, fmt.Errorf("categories: trait ref must be a byte array or hex string: %w", err)
	}
	if len(nums) != identity.RefSize {
		return ref, fmt.Errorf("categories: trait ref must be %d bytes, got %d", identity.RefSize, len(nums))
	}
	for i, n := range nums {
		if n > 0xFF {
			return ref, fmt.Errorf("categories: trait ref byte %d out of range: %d", i, n)
		}
		ref[i] = byte(n)
	}
	return ref, nil
}
