package attest

import (
	"crypto/ed25519"
	"testing"
)

func TestDeriveRoleSeedDeterministic(t *testing.T) {
	root := testSeed(t)

	a, err := DeriveRoleSeed(root, "author")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	b, err := DeriveRoleSeed(root, "author")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("expected deterministic derivation")
	}

	c, err := DeriveRoleSeed(root, "publisher")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	if string(a) == string(c) {
		t.Fatalf("expected different roles to derive different seeds")
	}
	if len(a) != ed25519.SeedSize {
		t.Fatalf("derived seed length %d", len(a))
	}
}

func TestDeriveRoleSeedRejects(t *testing.T) {
	if _, err := DeriveRoleSeed([]byte("short"), "author"); err == nil {
		t.Fatalf("expected error for short root seed")
	}
	if _, err := DeriveRoleSeed(testSeed(t), ""); err == nil {
		t.Fatalf("expected error for empty role")
	}
	if _, err := DeriveRoleSeed(testSeed(t), "bad role"); err == nil {
		t.Fatalf("expected error for role with space")
	}
}

func TestParseSeedHex(t *testing.T) {
	const hexSeed = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

	for _, in := range []string{hexSeed, "0x" + hexSeed, "  " + hexSeed + "\n"} {
		seed, err := ParseSeedHex(in)
		if err != nil {
			t.Fatalf("ParseSeedHex(%q): %v", in, err)
		}
		if string(seed) != string(testSeed(t)) {
			t.Fatalf("ParseSeedHex(%q) returned wrong bytes", in)
		}
	}

	for _, in := range []string{"", "zz", hexSeed[:10], hexSeed + "ff"} {
		if _, err := ParseSeedHex(in); err == nil {
			t.Fatalf("ParseSeedHex(%q): expected error", in)
		}
	}
}

func TestKeyFromSeedSignsVerifiably(t *testing.T) {
	seed, err := DeriveRoleSeed(testSeed(t), "author")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	priv, err := KeyFromSeed(seed)
	if err != nil {
		t.Fatalf("KeyFromSeed: %v", err)
	}
	sig, err := SignEd25519([]byte("msg"), HashSHA256, priv)
	if err != nil {
		t.Fatalf("SignEd25519: %v", err)
	}
	if err := sig.Verify([]byte("msg")); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}
