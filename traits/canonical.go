package traits

import "sort"

// Canonicalize normalizes record names for hashing: names are folded to
// ASCII lowercase, adjacent records with equal folded names are collapsed
// to the first occurrence, and the result is sorted by byte order. Sorting
// is stable so records whose folded names collide keep their input order.
//
// Deduplication runs before the sort and only collapses neighbours, so
// equal-named records that arrive non-adjacent both survive and end up next
// to each other in the output. That is the established hashing behaviour;
// changing it would shift every published trait reference.
func Canonicalize(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		rec.Name = foldASCII(rec.Name)
		if n := len(out); n > 0 && out[n-1].Name == rec.Name {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// foldASCII lowercases the ASCII letters of s and leaves every other byte,
// including multi-byte UTF-8 sequences, untouched.
func foldASCII(s string) string {
	lowered := false
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			lowered = true
			break
		}
	}
	if !lowered {
		return s
	}
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
