package registry

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fragnova/protos/categories"
	"github.com/fragnova/protos/identity"
	"github.com/fragnova/protos/storage"
	"github.com/fragnova/protos/traits"
)

func newRegistry(t *testing.T, mode Mode) (*Registry, *storage.Memory) {
	t.Helper()
	mem := storage.NewMemory()
	r, err := NewFromStore(mem, Options{Mode: mode})
	if err != nil {
		t.Fatalf("NewFromStore: %v", err)
	}
	return r, mem
}

func simpleTrait(name string) traits.Trait {
	return traits.Trait{
		Name:     name,
		Revision: 1,
		Records: []traits.Record{{
			Name:  "value",
			Types: []traits.VariableTypeInfo{{Type: traits.Int{}}},
		}},
	}
}

func TestPublishResolveRoundTrip(t *testing.T) {
	r, _ := newRegistry(t, Permissive)

	ref, id, err := r.Publish(simpleTrait("Sample"))
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	byCID, err := r.Resolve(id)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	byRef, err := r.ResolveRef(ref)
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if diff := cmp.Diff(byCID, byRef); diff != "" {
		t.Fatalf("resolve paths disagree (-cid +ref):\n%s", diff)
	}
	if byCID.Name != "Sample" {
		t.Fatalf("resolved name %q", byCID.Name)
	}
}

func TestPublishCanonicalizesRecords(t *testing.T) {
	r, _ := newRegistry(t, Permissive)

	unsorted := traits.Trait{
		Name:     "T",
		Revision: 1,
		Records: []traits.Record{
			{Name: "Zeta", Types: []traits.VariableTypeInfo{{Type: traits.Bool{}}}},
			{Name: "alpha", Types: []traits.VariableTypeInfo{{Type: traits.Int{}}}},
		},
	}
	ref, _, err := r.Publish(unsorted)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	got, err := r.ResolveRef(ref)
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if got.Records[0].Name != "alpha" || got.Records[1].Name != "zeta" {
		t.Fatalf("resolved records not canonical: %+v", got.Records)
	}

	// Publishing the pre-canonicalized form lands on the same identity.
	canonical := unsorted
	canonical.Records = traits.Canonicalize(unsorted.Records)
	ref2, _, err := r.Publish(canonical)
	if err != nil {
		t.Fatalf("Publish canonical: %v", err)
	}
	if ref2 != ref {
		t.Fatalf("canonical and raw declarations got different refs: %s vs %s", ref2, ref)
	}
}

func TestStrictModeRejectsNonCanonical(t *testing.T) {
	r, _ := newRegistry(t, Strict)

	unsorted := traits.Trait{
		Name:     "T",
		Revision: 1,
		Records: []traits.Record{
			{Name: "Zeta", Types: []traits.VariableTypeInfo{{Type: traits.Bool{}}}},
			{Name: "alpha", Types: []traits.VariableTypeInfo{{Type: traits.Int{}}}},
		},
	}
	if _, _, err := r.Publish(unsorted); !errors.Is(err, ErrNotCanonical) {
		t.Fatalf("strict Publish of unsorted records: got %v, want ErrNotCanonical", err)
	}

	unsorted.Records = traits.Canonicalize(unsorted.Records)
	if _, _, err := r.Publish(unsorted); err != nil {
		t.Fatalf("strict Publish of canonical records: %v", err)
	}
}

func TestResolveRejectsNonCanonicalBytes(t *testing.T) {
	r, mem := newRegistry(t, Permissive)

	// Store an encoding whose records are deliberately out of canonical
	// order, bypassing Publish.
	rogue := traits.Trait{
		Name:     "Rogue",
		Revision: 1,
		Records: []traits.Record{
			{Name: "b", Types: []traits.VariableTypeInfo{{Type: traits.Bool{}}}},
			{Name: "a", Types: []traits.VariableTypeInfo{{Type: traits.Int{}}}},
		},
	}
	raw, err := rogue.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	id, err := mem.Put(raw)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, err := r.Resolve(id); !errors.Is(err, ErrNotCanonical) {
		t.Fatalf("Resolve of non-canonical bytes: got %v, want ErrNotCanonical", err)
	}
}

func TestResolveRejectsTrailingBytes(t *testing.T) {
	r, mem := newRegistry(t, Permissive)

	canonical, err := simpleTrait("Padded").EncodeCanonical()
	if err != nil {
		t.Fatalf("EncodeCanonical: %v", err)
	}
	id, err := mem.Put(append(canonical, 0x00))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, err := r.Resolve(id); !errors.Is(err, ErrNotCanonical) {
		t.Fatalf("Resolve of padded bytes: got %v, want ErrNotCanonical", err)
	}
}

func TestResolveRefRejectsForeignBinding(t *testing.T) {
	r, mem := newRegistry(t, Permissive)

	canonical, err := simpleTrait("Honest").EncodeCanonical()
	if err != nil {
		t.Fatalf("EncodeCanonical: %v", err)
	}
	id, err := mem.Put(canonical)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	// Bind a ref that was not derived from these bytes.
	foreign := identity.RefOf([]byte("something else"))
	if err := mem.Bind(foreign, id); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	if _, err := r.ResolveRef(foreign); !errors.Is(err, ErrNotCanonical) {
		t.Fatalf("ResolveRef with foreign binding: got %v, want ErrNotCanonical", err)
	}
}

func TestReferencesWalksWholeTree(t *testing.T) {
	refA := identity.RefOf([]byte("a"))
	refB := identity.RefOf([]byte("b"))
	refC := identity.RefOf([]byte("c"))

	tr := traits.Trait{
		Name: "refs",
		Records: []traits.Record{{
			Name: "r",
			Types: []traits.VariableTypeInfo{
				{Type: traits.Proto{Category: categories.Trait{Ref: refA}}},
				{Type: traits.Seq{Types: []traits.VariableType{
					traits.Channel{Type: traits.Proto{Category: categories.Wire{
						Sub:    categories.WireGeneric,
						Traits: []identity.TraitRef{refB, refA},
					}}},
				}}},
				{Type: traits.Code{
					Kind:   traits.Shards{},
					Output: traits.Event{Type: traits.Proto{Category: categories.Trait{Ref: refC}}},
				}},
			},
		}},
	}

	got := References(tr)
	want := []identity.TraitRef{refA, refB, refC}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("references (-want +got):\n%s", diff)
	}
}

func TestHydrateClosure(t *testing.T) {
	r, _ := newRegistry(t, Permissive)

	leafRef, _, err := r.Publish(simpleTrait("Leaf"))
	if err != nil {
		t.Fatalf("Publish leaf: %v", err)
	}
	midRef, _, err := r.Publish(traits.Trait{
		Name:     "Mid",
		Revision: 1,
		Records: []traits.Record{{
			Name:  "leaf",
			Types: []traits.VariableTypeInfo{{Type: traits.Proto{Category: categories.Trait{Ref: leafRef}}}},
		}},
	})
	if err != nil {
		t.Fatalf("Publish mid: %v", err)
	}
	rootRef, _, err := r.Publish(traits.Trait{
		Name:     "Root",
		Revision: 1,
		Records: []traits.Record{{
			Name:  "mid",
			Types: []traits.VariableTypeInfo{{Type: traits.Proto{Category: categories.Trait{Ref: midRef}}}},
		}},
	})
	if err != nil {
		t.Fatalf("Publish root: %v", err)
	}

	closure, err := r.Hydrate(rootRef)
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if len(closure) != 3 {
		t.Fatalf("closure size %d, want 3", len(closure))
	}
	for _, ref := range []identity.TraitRef{rootRef, midRef, leafRef} {
		if _, ok := closure[ref]; !ok {
			t.Fatalf("closure missing %s", ref)
		}
	}
}

func TestHydrateMissingLink(t *testing.T) {
	r, _ := newRegistry(t, Permissive)

	dangling := identity.RefOf([]byte("never published"))
	ref, _, err := r.Publish(traits.Trait{
		Name:     "Broken",
		Revision: 1,
		Records: []traits.Record{{
			Name:  "gone",
			Types: []traits.VariableTypeInfo{{Type: traits.Proto{Category: categories.Trait{Ref: dangling}}}},
		}},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if _, err := r.Hydrate(ref); !storage.IsNotFound(err) {
		t.Fatalf("Hydrate with dangling ref: got %v, want ErrNotFound", err)
	}
}

func TestPublishIdempotent(t *testing.T) {
	r, _ := newRegistry(t, Permissive)

	ref1, id1, err := r.Publish(simpleTrait("Twice"))
	if err != nil {
		t.Fatalf("Publish(1): %v", err)
	}
	ref2, id2, err := r.Publish(simpleTrait("Twice"))
	if err != nil {
		t.Fatalf("Publish(2): %v", err)
	}
	if ref1 != ref2 || id1 != id2 {
		t.Fatalf("republish changed identity: %s/%s vs %s/%s", ref1, id1, ref2, id2)
	}
}
