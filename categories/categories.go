// Package categories defines the closed taxonomy of media sub-categories
// that a proto-fragment can be described with, plus the trait-reference
// identity case that lets one trait's type tree point at another trait by
// content hash.
//
// The taxonomy is wire-stable: every tag and sub-category value is pinned
// by explicit numeric assignment, never by declaration order. Adding a new
// case appends a new number; renumbering an existing one breaks every hash
// previously computed over an encoding that mentions it.
package categories

import "github.com/fragnova/protos/identity"

// Tag identifies a Category case on the wire.
type Tag uint64

const (
	TagText    Tag = 0
	TagTrait   Tag = 1
	TagWire    Tag = 2
	TagAudio   Tag = 3
	TagTexture Tag = 4
	TagVector  Tag = 5
	TagVideo   Tag = 6
	TagModel   Tag = 7
	TagBinary  Tag = 8
)

// Category is the closed sum of taxonomy cases. The only implementations
// are the variant types in this package.
type Category interface {
	category()
}

// Text is textual content of a supported sub-category.
type Text struct {
	Sub TextCategory
}

// Trait references another trait's schema by its 8-byte content hash,
// giving a content-addressed namespace of schema fragments.
type Trait struct {
	Ref identity.TraitRef
}

// Wire is a script of a supported sub-category, optionally declaring the
// traits it interoperates with.
type Wire struct {
	Sub    WireCategory
	Traits []identity.TraitRef
}

// Audio is an audio file or effect.
type Audio struct {
	Sub AudioCategory
}

// Texture is a texture of a supported sub-category.
type Texture struct {
	Sub TextureCategory
}

// Vector is vector content such as SVG or a font.
type Vector struct {
	Sub VectorCategory
}

// Video is a video file of a supported format.
type Video struct {
	Sub VideoCategory
}

// Model is a 2d/3d model of a supported format.
type Model struct {
	Sub ModelCategory
}

// Binary is a binary of a supported sub-category.
type Binary struct {
	Sub BinaryCategory
}

func (Text) category()    {}
func (Trait) category()   {}
func (Wire) category()    {}
func (Audio) category()   {}
func (Texture) category() {}
func (Vector) category()  {}
func (Video) category()   {}
func (Model) category()   {}
func (Binary) category()  {}

// TextCategory enumerates textual sub-categories.
type TextCategory uint32

const (
	TextPlain TextCategory = 0
	TextJSON  TextCategory = 1
)

// AudioCategory enumerates audio sub-categories.
type AudioCategory uint32

const (
	// AudioOggFile is a compressed audio file in the ogg container format.
	AudioOggFile AudioCategory = 0
	// AudioMp3File is a compressed audio file in the mp3 format.
	AudioMp3File AudioCategory = 1
	// AudioEffect is a script returning an effect wire that requires an input.
	AudioEffect AudioCategory = 2
	// AudioInstrument is a script returning an instrument wire (no audio input).
	AudioInstrument AudioCategory = 3
)

// TextureCategory enumerates texture sub-categories.
type TextureCategory uint32

const (
	TexturePngFile TextureCategory = 0
	TextureJpgFile TextureCategory = 1
)

// VectorCategory enumerates vector sub-categories.
type VectorCategory uint32

const (
	VectorSvgFile VectorCategory = 0
	// VectorTtfFile is a TrueType font file.
	VectorTtfFile VectorCategory = 1
)

// VideoCategory enumerates video sub-categories.
type VideoCategory uint32

const (
	VideoMkvFile VideoCategory = 0
	VideoMp4File VideoCategory = 1
)

// ModelCategory enumerates model sub-categories.
type ModelCategory uint32

const (
	// ModelGltfFile is a GLTF binary model.
	ModelGltfFile ModelCategory = 0
	ModelSdf      ModelCategory = 1
	// ModelPhysicsCollider is a physics collision model.
	ModelPhysicsCollider ModelCategory = 2
)

// BinaryCategory enumerates binary sub-categories.
type BinaryCategory uint32

const (
	// BinaryWasmProgram is a generic wasm program for a WASI runtime.
	BinaryWasmProgram BinaryCategory = 0
	// BinaryWasmReactor is a generic wasm reactor for a WASI runtime.
	BinaryWasmReactor BinaryCategory = 1
	// BinaryBlendFile is a blender file.
	BinaryBlendFile BinaryCategory = 2
)

// WireCategory enumerates script sub-categories.
type WireCategory uint32

const (
	WireGeneric        WireCategory = 0
	WireAnimation      WireCategory = 1
	WireVertexShader   WireCategory = 2
	WireFragmentShader WireCategory = 3
	WireComputeShader  WireCategory = 4
)

// Interchange names, indexed by sub-category value. These tables are
// construct-once and read-only for the process lifetime.
var (
	textNames    = []string{"plain", "json"}
	audioNames   = []string{"oggFile", "mp3File", "effect", "instrument"}
	textureNames = []string{"pngFile", "jpgFile"}
	vectorNames  = []string{"svgFile", "ttfFile"}
	videoNames   = []string{"mkvFile", "mp4File"}
	modelNames   = []string{"gltfFile", "sdf", "physicsCollider"}
	binaryNames  = []string{"wasmProgram", "wasmReactor", "blendFile"}
	wireNames    = []string{"generic", "animation", "vertexShader", "fragmentShader", "computeShader"}
)

func subName(names []string, v uint32) string {
	if int(v) < len(names) {
		return names[v]
	}
	return "unknown"
}

func (c TextCategory) String() string    { return subName(textNames, uint32(c)) }
func (c AudioCategory) String() string   { return subName(audioNames, uint32(c)) }
func (c TextureCategory) String() string { return subName(textureNames, uint32(c)) }
func (c VectorCategory) String() string  { return subName(vectorNames, uint32(c)) }
func (c VideoCategory) String() string   { return subName(videoNames, uint32(c)) }
func (c ModelCategory) String() string   { return subName(modelNames, uint32(c)) }
func (c BinaryCategory) String() string  { return subName(binaryNames, uint32(c)) }
func (c WireCategory) String() string    { return subName(wireNames, uint32(c)) }
