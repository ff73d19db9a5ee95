package attest

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// String renders the envelope as "alg:hash:base64(pub):base64(sig)", the
// form the CLI prints and accepts.
func (s Signature) String() string {
	return strings.Join([]string{
		string(s.Alg),
		s.Hash,
		base64.StdEncoding.EncodeToString(s.PublicKey),
		base64.StdEncoding.EncodeToString(s.Sig),
	}, ":")
}

// ParseSignature parses the envelope form produced by String.
func ParseSignature(s string) (Signature, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 4 {
		return Signature{}, fmt.Errorf("attest: envelope must have 4 colon-separated fields, got %d", len(parts))
	}
	alg := Algorithm(parts[0])
	switch alg {
	case AlgEd25519, AlgDilithium3:
	default:
		return Signature{}, fmt.Errorf("attest: unsupported algorithm: %q", parts[0])
	}
	if _, err := digestFor(parts[1], nil); err != nil {
		return Signature{}, err
	}
	pub, err := decodeBase64(parts[2])
	if err != nil {
		return Signature{}, fmt.Errorf("attest: invalid public key base64: %w", err)
	}
	sig, err := decodeBase64(parts[3])
	if err != nil {
		return Signature{}, fmt.Errorf("attest: invalid signature base64: %w", err)
	}
	return Signature{Alg: alg, Hash: parts[1], PublicKey: pub, Sig: sig}, nil
}

func decodeBase64(s string) ([]byte, error) {
	// Prefer standard padded encoding, but accept raw encoding too.
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
