package categories

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fragnova/protos/codec"
	"github.com/fragnova/protos/identity"
)

func roundTrip(t *testing.T, c Category) Category {
	t.Helper()
	var w codec.Writer
	if err := Encode(&w, c); err != nil {
		t.Fatalf("Encode(%#v): %v", c, err)
	}
	r := codec.NewReader(w.Bytes())
	got, err := Decode(r)
	if err != nil {
		t.Fatalf("Decode(%#v): %v", c, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("Decode(%#v): %d trailing bytes", c, r.Remaining())
	}
	return got
}

func TestEncodeDecode_AllCases(t *testing.T) {
	ref := identity.RefOf([]byte("referenced trait"))
	cases := []Category{
		Text{Sub: TextPlain},
		Text{Sub: TextJSON},
		Trait{Ref: ref},
		Wire{Sub: WireGeneric},
		Wire{Sub: WireComputeShader, Traits: []identity.TraitRef{ref, identity.RefOf([]byte("another"))}},
		Audio{Sub: AudioInstrument},
		Texture{Sub: TexturePngFile},
		Vector{Sub: VectorTtfFile},
		Video{Sub: VideoMp4File},
		Model{Sub: ModelPhysicsCollider},
		Binary{Sub: BinaryBlendFile},
	}
	for _, c := range cases {
		got := roundTrip(t, c)
		if diff := cmp.Diff(c, got); diff != "" {
			t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestDecode_UnknownTag(t *testing.T) {
	var w codec.Writer
	w.Compact(99)
	_, err := Decode(codec.NewReader(w.Bytes()))
	if !codec.IsKind(err, codec.KindUnknownVariant) {
		t.Fatalf("got err=%v want UnknownVariant", err)
	}
}

func TestDecode_UnknownSubCategory(t *testing.T) {
	var w codec.Writer
	w.Compact(uint64(TagTexture))
	w.Compact(7)
	_, err := Decode(codec.NewReader(w.Bytes()))
	if !codec.IsKind(err, codec.KindUnknownVariant) {
		t.Fatalf("got err=%v want UnknownVariant", err)
	}
}

func TestDecode_TruncatedTraitRef(t *testing.T) {
	var w codec.Writer
	w.Compact(uint64(TagTrait))
	w.Raw([]byte{1, 2, 3})
	_, err := Decode(codec.NewReader(w.Bytes()))
	if !codec.IsKind(err, codec.KindUnexpectedEOF) {
		t.Fatalf("got err=%v want UnexpectedEof", err)
	}
}

func TestDecode_WireTraitCountBeyondInput(t *testing.T) {
	var w codec.Writer
	w.Compact(uint64(TagWire))
	w.Compact(uint64(WireGeneric))
	w.Compact(1000)
	_, err := Decode(codec.NewReader(w.Bytes()))
	if !codec.IsKind(err, codec.KindUnexpectedEOF) {
		t.Fatalf("got err=%v want UnexpectedEof", err)
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	ref := identity.RefOf([]byte("referenced trait"))
	cases := []Category{
		Text{Sub: TextPlain},
		Trait{Ref: ref},
		Wire{Sub: WireAnimation, Traits: []identity.TraitRef{ref}},
		Texture{Sub: TextureJpgFile},
		Binary{Sub: BinaryWasmReactor},
	}
	for _, c := range cases {
		b, err := MarshalCategory(c)
		if err != nil {
			t.Fatalf("MarshalCategory(%#v): %v", c, err)
		}
		got, err := UnmarshalCategory(b)
		if err != nil {
			t.Fatalf("UnmarshalCategory(%s): %v", b, err)
		}
		if diff := cmp.Diff(c, got); diff != "" {
			t.Fatalf("JSON round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestJSON_TextualForms(t *testing.T) {
	got, err := UnmarshalCategory([]byte(`{"texture": "pngFile"}`))
	if err != nil {
		t.Fatalf("UnmarshalCategory: %v", err)
	}
	if diff := cmp.Diff(Texture{Sub: TexturePngFile}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	got, err = UnmarshalCategory([]byte(`{"text": "plain"}`))
	if err != nil {
		t.Fatalf("UnmarshalCategory: %v", err)
	}
	if diff := cmp.Diff(Text{Sub: TextPlain}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON_TraitRefHexForm(t *testing.T) {
	ref := identity.RefOf([]byte("referenced trait"))
	in := []byte(`{"trait": "` + ref.String() + `"}`)
	got, err := UnmarshalCategory(in)
	if err != nil {
		t.Fatalf("UnmarshalCategory: %v", err)
	}
	if diff := cmp.Diff(Trait{Ref: ref}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON_Rejects(t *testing.T) {
	bad := []string{
		`{"texture": "webpFile"}`,
		`{"holo": "gram"}`,
		`{"texture": "pngFile", "text": "plain"}`,
		`{"trait": [1, 2, 3]}`,
		`{"trait": [256, 0, 0, 0, 0, 0, 0, 0]}`,
		`{"wire": ["generic"]}`,
	}
	for _, in := range bad {
		if _, err := UnmarshalCategory([]byte(in)); err == nil {
			t.Fatalf("expected error for %s", in)
		}
	}
}
