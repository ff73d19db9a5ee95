package registry

import (
	"fmt"

	"github.com/fragnova/protos/categories"
	"github.com/fragnova/protos/identity"
	"github.com/fragnova/protos/traits"
)

// References returns the refs of every trait t mentions through Proto
// cases, in first-appearance order with duplicates removed. Traversal
// order is the declared field order, so the result is deterministic for a
// given trait.
func References(t traits.Trait) []identity.TraitRef {
	var out []identity.TraitRef
	seen := map[identity.TraitRef]struct{}{}
	add := func(ref identity.TraitRef) {
		if _, ok := seen[ref]; ok {
			return
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	for _, rec := range t.Records {
		for _, info := range rec.Types {
			walkRefs(info.Type, add)
		}
	}
	return out
}

func walkRefs(t traits.VariableType, add func(identity.TraitRef)) {
	switch v := t.(type) {
	case traits.Seq:
		for _, inner := range v.Types {
			walkRefs(inner, add)
		}
	case traits.Table:
		for _, list := range v.Types {
			for _, inner := range list {
				walkRefs(inner, add)
			}
		}
	case traits.Code:
		for _, e := range v.Requires {
			walkRefs(e.Type, add)
		}
		for _, e := range v.Exposes {
			walkRefs(e.Type, add)
		}
		for _, inner := range v.Inputs {
			walkRefs(inner, add)
		}
		walkRefs(v.Output, add)
	case traits.Channel:
		walkRefs(v.Type, add)
	case traits.Event:
		walkRefs(v.Type, add)
	case traits.Proto:
		switch c := v.Category.(type) {
		case categories.Trait:
			add(c.Ref)
		case categories.Wire:
			for _, ref := range c.Traits {
				add(ref)
			}
		}
	}
}

// Hydrate resolves ref and, transitively, every trait it references,
// returning the closure keyed by ref. Hydration order is breadth-first
// over first-appearance order, so the set of store reads is deterministic.
//
// A missing link anywhere in the closure fails the whole hydration;
// storage.ErrNotFound is wrapped with the ref that was missing.
func (r *Registry) Hydrate(ref identity.TraitRef) (map[identity.TraitRef]traits.Trait, error) {
	out := make(map[identity.TraitRef]traits.Trait)
	queue := []identity.TraitRef{ref}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if _, ok := out[next]; ok {
			continue
		}
		t, err := r.ResolveRef(next)
		if err != nil {
			return nil, fmt.Errorf("registry: hydrate %s: %w", next, err)
		}
		out[next] = t
		queue = append(queue, References(t)...)
	}
	return out, nil
}
