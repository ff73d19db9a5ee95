// Package permissions defines the permission bit-set carried by fragments
// and fragment bundles.
package permissions

import "strings"

// Perms is a bit-set of fragment permissions.
type Perms uint32

const (
	// None grants nothing.
	None Perms = 0
	// Edit allows modifying the fragment.
	Edit Perms = 1
	// Copy allows duplicating the fragment.
	Copy Perms = 2
	// Transfer allows moving the fragment to another owner.
	Transfer Perms = 4
	// All grants every defined permission.
	All = Edit | Copy | Transfer
)

// Has reports whether p grants every bit of q.
func (p Perms) Has(q Perms) bool {
	return p&q == q
}

func (p Perms) String() string {
	if p == None {
		return "none"
	}
	var parts []string
	if p.Has(Edit) {
		parts = append(parts, "edit")
	}
	if p.Has(Copy) {
		parts = append(parts, "copy")
	}
	if p.Has(Transfer) {
		parts = append(parts, "transfer")
	}
	if unknown := p &^ All; unknown != 0 {
		parts = append(parts, "unknown")
	}
	return strings.Join(parts, "|")
}
