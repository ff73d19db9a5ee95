package categories

import (
	"fmt"

	"github.com/fragnova/protos/codec"
	"github.com/fragnova/protos/identity"
)

// Encode writes c to w as a compact tag followed by the case's fields.
// It fails only for a nil Category or an implementation outside this
// package's closed set.
func Encode(w *codec.Writer, c Category) error {
	switch v := c.(type) {
	case Text:
		w.Compact(uint64(TagText))
		w.Compact(uint64(v.Sub))
	case Trait:
		w.Compact(uint64(TagTrait))
		w.Raw(v.Ref[:])
	case Wire:
		w.Compact(uint64(TagWire))
		w.Compact(uint64(v.Sub))
		w.Compact(uint64(len(v.Traits)))
		for _, ref := range v.Traits {
			w.Raw(ref[:])
		}
	case Audio:
		w.Compact(uint64(TagAudio))
		w.Compact(uint64(v.Sub))
	case Texture:
		w.Compact(uint64(TagTexture))
		w.Compact(uint64(v.Sub))
	case Vector:
		w.Compact(uint64(TagVector))
		w.Compact(uint64(v.Sub))
	case Video:
		w.Compact(uint64(TagVideo))
		w.Compact(uint64(v.Sub))
	case Model:
		w.Compact(uint64(TagModel))
		w.Compact(uint64(v.Sub))
	case Binary:
		w.Compact(uint64(TagBinary))
		w.Compact(uint64(v.Sub))
	default:
		return codec.NewError(codec.KindUnknownVariant, w.Len(), fmt.Sprintf("not a category: %T", c))
	}
	return nil
}

// Decode reads one Category from r.
func Decode(r *codec.Reader) (Category, error) {
	start := r.Pos()
	tag, err := r.Compact()
	if err != nil {
		return nil, err
	}
	switch Tag(tag) {
	case TagText:
		sub, err := decodeSub(r, textNames)
		if err != nil {
			return nil, err
		}
		return Text{Sub: TextCategory(sub)}, nil
	case TagTrait:
		ref, err := decodeRef(r)
		if err != nil {
			return nil, err
		}
		return Trait{Ref: ref}, nil
	case TagWire:
		sub, err := decodeSub(r, wireNames)
		if err != nil {
			return nil, err
		}
		lenPos := r.Pos()
		n, err := r.Compact()
		if err != nil {
			return nil, err
		}
		if n > uint64(r.Remaining())/identity.RefSize {
			return nil, codec.NewError(codec.KindUnexpectedEOF, lenPos, "trait list length exceeds remaining input")
		}
		var refs []identity.TraitRef
		if n > 0 {
			refs = make([]identity.TraitRef, 0, n)
		}
		for i := uint64(0); i < n; i++ {
			ref, err := decodeRef(r)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		}
		return Wire{Sub: WireCategory(sub), Traits: refs}, nil
	case TagAudio:
		sub, err := decodeSub(r, audioNames)
		if err != nil {
			return nil, err
		}
		return Audio{Sub: AudioCategory(sub)}, nil
	case TagTexture:
		sub, err := decodeSub(r, textureNames)
		if err != nil {
			return nil, err
		}
		return Texture{Sub: TextureCategory(sub)}, nil
	case TagVector:
		sub, err := decodeSub(r, vectorNames)
		if err != nil {
			return nil, err
		}
		return Vector{Sub: VectorCategory(sub)}, nil
	case TagVideo:
		sub, err := decodeSub(r, videoNames)
		if err != nil {
			return nil, err
		}
		return Video{Sub: VideoCategory(sub)}, nil
	case TagModel:
		sub, err := decodeSub(r, modelNames)
		if err != nil {
			return nil, err
		}
		return Model{Sub: ModelCategory(sub)}, nil
	case TagBinary:
		sub, err := decodeSub(r, binaryNames)
		if err != nil {
			return nil, err
		}
		return Binary{Sub: BinaryCategory(sub)}, nil
	default:
		return nil, codec.NewError(codec.KindUnknownVariant, start, fmt.Sprintf("unknown category tag %d", tag))
	}
}

func decodeSub(r *codec.Reader, names []string) (uint32, error) {
	start := r.Pos()
	v, err := r.Compact32()
	if err != nil {
		return 0, err
	}
	if int(v) >= len(names) {
		return 0, codec.NewError(codec.KindUnknownVariant, start, fmt.Sprintf("unknown sub-category %d", v))
	}
	return v, nil
}

func decodeRef(r *codec.Reader) (identity.TraitRef, error) {
	var ref identity.TraitRef
	b, err := r.Raw(identity.RefSize)
	if err != nil {
		return ref, err
	}
	copy(ref[:], b)
	return ref, nil
}
