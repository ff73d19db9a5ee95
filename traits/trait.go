// Package traits models trait schemas: named collections of typed records
// with a deterministic canonical form and a compact binary encoding. The
// canonical encoding of a trait is the sole input to its on-ledger
// identity, so encoding here is byte-stable by construction.
package traits

import (
	"github.com/fragnova/protos/codec"
)

// Trait is a schema: a display name, a revision counter and the records it
// declares. Name and Revision do not participate in canonicalization; only
// Records are normalized (see Canonicalize).
type Trait struct {
	Name     string   `json:"name"`
	Revision uint32   `json:"revision"`
	Records  []Record `json:"records"`
}

// Record declares one named slot and the set of types its value may take.
type Record struct {
	Name  string             `json:"name"`
	Types []VariableTypeInfo `json:"types"`
}

// VariableTypeInfo pairs a type with an optional default value, already in
// the value's own encoded form. A nil Default means no default; a non-nil
// empty slice is a present, empty default and encodes differently.
type VariableTypeInfo struct {
	Type    VariableType
	Default []byte
}

// Encode renders the trait in its compact binary form. Records are encoded
// exactly as given; callers that need the canonical form pass the trait
// through Canonicalize first.
func (t Trait) Encode() ([]byte, error) {
	var w codec.Writer
	w.Str(t.Name)
	w.Compact(uint64(t.Revision))
	w.Compact(uint64(len(t.Records)))
	for _, rec := range t.Records {
		w.Str(rec.Name)
		w.Compact(uint64(len(rec.Types)))
		for _, info := range rec.Types {
			if err := encodeType(&w, info.Type); err != nil {
				return nil, err
			}
			if info.Default == nil {
				w.Option(false)
			} else {
				w.Option(true)
				w.Blob(info.Default)
			}
		}
	}
	return w.Bytes(), nil
}

// EncodeCanonical canonicalizes the trait's records and encodes the result.
// The receiver is not modified.
func (t Trait) EncodeCanonical() ([]byte, error) {
	t.Records = Canonicalize(t.Records)
	return t.Encode()
}

// Decode parses a trait from its compact binary form. Input past the end of
// the trait is ignored; strict canonical-bytes enforcement belongs to the
// layer that resolves traits by identity.
func Decode(data []byte) (Trait, error) {
	r := codec.NewReader(data)
	name, err := r.Str()
	if err != nil {
		return Trait{}, err
	}
	revision, err := r.Compact32()
	if err != nil {
		return Trait{}, err
	}
	recCount, err := readCount(r)
	if err != nil {
		return Trait{}, err
	}
	var records []Record
	if recCount > 0 {
		records = make([]Record, 0, recCount)
	}
	for i := 0; i < recCount; i++ {
		rec, err := decodeRecord(r)
		if err != nil {
			return Trait{}, err
		}
		records = append(records, rec)
	}
	return Trait{Name: name, Revision: revision, Records: records}, nil
}

func decodeRecord(r *codec.Reader) (Record, error) {
	name, err := r.Str()
	if err != nil {
		return Record{}, err
	}
	n, err := readCount(r)
	if err != nil {
		return Record{}, err
	}
	var infos []VariableTypeInfo
	if n > 0 {
		infos = make([]VariableTypeInfo, 0, n)
	}
	for i := 0; i < n; i++ {
		t, err := decodeType(r, 0)
		if err != nil {
			return Record{}, err
		}
		present, err := r.Option()
		if err != nil {
			return Record{}, err
		}
		var def []byte
		if present {
			def, err = r.Blob()
			if err != nil {
				return Record{}, err
			}
			if def == nil {
				def = []byte{}
			}
		}
		infos = append(infos, VariableTypeInfo{Type: t, Default: def})
	}
	return Record{Name: name, Types: infos}, nil
}
