// Package attest produces and checks detached signatures over canonical
// trait bytes. A signature is authorship evidence carried next to a trait,
// outside the trait's own encoding: it never participates in the trait's
// ref or CID.
package attest

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"

	"github.com/fragnova/protos/traits"
)

// Algorithm names a supported signature scheme.
type Algorithm string

const (
	AlgEd25519    Algorithm = "ed25519"
	AlgDilithium3 Algorithm = "dilithium3"
)

// Hash algorithms accepted for pre-signature digests.
const (
	HashSHA256   = "sha256"
	HashSHA512   = "sha512"
	HashSHA3_256 = "sha3-256"
)

// ErrBadSignature is returned by Verify when the signature does not check
// out against the message and public key.
var ErrBadSignature = errors.New("attest: signature invalid")

// Signature is a detached signature envelope. The public key travels with
// the signature so a verifier needs nothing but the signed bytes.
type Signature struct {
	Alg       Algorithm
	Hash      string
	PublicKey []byte
	Sig       []byte
}

func digestFor(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case HashSHA256:
		s := sha256.Sum256(message)
		return s[:], nil
	case HashSHA512:
		s := sha512.Sum512(message)
		return s[:], nil
	case HashSHA3_256:
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, fmt.Errorf("attest: unsupported hash algorithm: %q", hashAlg)
	}
}

// SignEd25519 signs hashAlg(message) with an Ed25519 private key.
func SignEd25519(message []byte, hashAlg string, priv ed25519.PrivateKey) (Signature, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return Signature{}, fmt.Errorf("attest: ed25519 private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(priv))
	}
	digest, err := digestFor(hashAlg, message)
	if err != nil {
		return Signature{}, err
	}
	return Signature{
		Alg:       AlgEd25519,
		Hash:      hashAlg,
		PublicKey: append([]byte(nil), priv.Public().(ed25519.PublicKey)...),
		Sig:       ed25519.Sign(priv, digest),
	}, nil
}

// SignDilithium3 signs hashAlg(message) with a Dilithium3 private key.
func SignDilithium3(message []byte, hashAlg string, priv *mode3.PrivateKey) (Signature, error) {
	if priv == nil {
		return Signature{}, errors.New("attest: missing private key")
	}
	digest, err := digestFor(hashAlg, message)
	if err != nil {
		return Signature{}, err
	}
	pub, err := priv.Public().(*mode3.PublicKey).MarshalBinary()
	if err != nil {
		return Signature{}, err
	}
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(priv, digest, sig)
	return Signature{
		Alg:       AlgDilithium3,
		Hash:      hashAlg,
		PublicKey: pub,
		Sig:       sig,
	}, nil
}

// SignTraitEd25519 canonicalizes and encodes t, then signs the canonical bytes.
// Signatures made this way stay valid for any spelling of the same trait.
func SignTraitEd25519(t traits.Trait, hashAlg string, priv ed25519.PrivateKey) (Signature, error) {
	b, err := t.EncodeCanonical()
	if err != nil {
		return Signature{}, err
	}
	return SignEd25519(b, hashAlg, priv)
}

// SignTraitDilithium3 is SignTraitEd25519 for Dilithium3 keys.
func SignTraitDilithium3(t traits.Trait, hashAlg string, priv *mode3.PrivateKey) (Signature, error) {
	b, err := t.EncodeCanonical()
	if err != nil {
		return Signature{}, err
	}
	return SignDilithium3(b, hashAlg, priv)
}

// Verify checks s against message. A nil error means the signature is
// valid for the public key carried in the envelope.
func (s Signature) Verify(message []byte) error {
	digest, err := digestFor(s.Hash, message)
	if err != nil {
		return err
	}
	switch s.Alg {
	case AlgEd25519:
		if len(s.PublicKey) != ed25519.PublicKeySize {
			return fmt.Errorf("attest: invalid ed25519 public key length %d", len(s.PublicKey))
		}
		if len(s.Sig) != ed25519.SignatureSize {
			return fmt.Errorf("attest: invalid ed25519 signature length %d", len(s.Sig))
		}
		if !ed25519.Verify(ed25519.PublicKey(s.PublicKey), digest, s.Sig) {
			return ErrBadSignature
		}
		return nil
	case AlgDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(s.PublicKey); err != nil {
			return fmt.Errorf("attest: invalid dilithium3 public key: %w", err)
		}
		if len(s.Sig) != mode3.SignatureSize {
			return fmt.Errorf("attest: invalid dilithium3 signature length %d", len(s.Sig))
		}
		if !mode3.Verify(&pk, digest, s.Sig) {
			return ErrBadSignature
		}
		return nil
	default:
		return fmt.Errorf("attest: unsupported algorithm: %q", s.Alg)
	}
}

// VerifyTrait verifies s against the canonical encoding of t.
func (s Signature) VerifyTrait(t traits.Trait) error {
	b, err := t.EncodeCanonical()
	if err != nil {
		return err
	}
	return s.Verify(b)
}

// GenerateDilithium3Keypair returns a new Dilithium3 keypair.
func GenerateDilithium3Keypair(rand io.Reader) (*mode3.PublicKey, *mode3.PrivateKey, error) {
	return mode3.GenerateKey(rand)
}
