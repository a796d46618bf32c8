package trust

import (
	"bytes"
	"crypto"
	"crypto/rand"

	"github.com/sigstore/sigstore/pkg/signature"
	"golang.org/x/crypto/ed25519"
)

// Raw Ed25519 sizes. Secret keys are the 32-byte seed form.
const (
	Ed25519KeySize    = 32
	Ed25519SigSize    = 64
	Ed25519KeySizeHex = 2 * Ed25519KeySize
	Ed25519SigSizeHex = 2 * Ed25519SigSize
	sha256Size        = 32
)

type PublicKey [Ed25519KeySize]byte

type SecretKey [Ed25519KeySize]byte

type SigBytes [Ed25519SigSize]byte

// GenerateKeypair creates a fresh raw Ed25519 keypair.
func GenerateKeypair() (PublicKey, SecretKey, error) {
	var pk PublicKey
	var sk SecretKey
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return pk, sk, ErrCrypto{Msg: "failed to generate ed25519 key pair"}
	}
	copy(pk[:], pub)
	copy(sk[:], priv.Seed())
	return pk, sk, nil
}

// Sign signs data with the raw secret key and returns the 64-byte
// signature. Ed25519 signing is deterministic.
func Sign(data []byte, sk SecretKey) (SigBytes, error) {
	var sig SigBytes
	priv := ed25519.NewKeyFromSeed(sk[:])
	signer, err := signature.LoadSigner(priv, crypto.Hash(0))
	if err != nil {
		return sig, ErrCrypto{Msg: "failed to load ed25519 signer"}
	}
	sb, err := signer.SignMessage(bytes.NewReader(data))
	if err != nil {
		return sig, ErrCrypto{Msg: "failed to sign the data"}
	}
	if len(sb) != Ed25519SigSize {
		return sig, ErrCrypto{Msg: "unexpected ed25519 signature length"}
	}
	copy(sig[:], sb)
	return sig, nil
}

// SignHex signs data and returns the signature hex-encoded.
func SignHex(data []byte, sk SecretKey) (string, error) {
	sig, err := Sign(data, sk)
	if err != nil {
		return "", err
	}
	return EncodeHex(sig[:]), nil
}

// Verify reports whether sig is a valid signature of data under pk. An
// invalid signature returns false, never an error; underlying library
// failures are logged and also count as not verified.
func Verify(data []byte, pk PublicKey, sig SigBytes) bool {
	verifier, err := signature.LoadVerifier(ed25519.PublicKey(pk[:]), crypto.Hash(0))
	if err != nil {
		log.Error(err, "failed to load ed25519 verifier")
		return false
	}
	if err := verifier.VerifySignature(bytes.NewReader(sig[:]), bytes.NewReader(data)); err != nil {
		return false
	}
	return true
}

// VerifyGPGHashed verifies a signature produced by a GPG-style detached
// workflow that signs the pre-hashed message: digestHex is the SHA-256
// digest of the data, hex-encoded, and the Ed25519 signature is over
// those 32 digest bytes.
func VerifyGPGHashed(digestHex string, pk PublicKey, sig SigBytes) (bool, error) {
	var digest [sha256Size]byte
	if len(digestHex) != 2*sha256Size {
		return false, ErrCrypto{Msg: "wrong length for hex-encoded hashed message"}
	}
	if _, err := DecodeHexBuf(digest[:], digestHex, ""); err != nil {
		return false, ErrCrypto{Msg: "failed to decode hashed message from hex"}
	}
	return Verify(digest[:], pk, sig), nil
}

// VerifyHex is the hex-string-accepting form of Verify.
func VerifyHex(data []byte, pkHex, sigHex string) (bool, error) {
	pk, sig, err := decodeKeySigHex(pkHex, sigHex)
	if err != nil {
		return false, err
	}
	return Verify(data, pk, sig), nil
}

// VerifyGPGHashedHex is the hex-string-accepting form of VerifyGPGHashed.
func VerifyGPGHashedHex(digestHex, pkHex, sigHex string) (bool, error) {
	pk, sig, err := decodeKeySigHex(pkHex, sigHex)
	if err != nil {
		return false, err
	}
	return VerifyGPGHashed(digestHex, pk, sig)
}

func decodeKeySigHex(pkHex, sigHex string) (PublicKey, SigBytes, error) {
	var pk PublicKey
	var sig SigBytes
	if len(pkHex) != Ed25519KeySizeHex {
		return pk, sig, ErrCrypto{Msg: "wrong length for hex-encoded public key"}
	}
	if len(sigHex) != Ed25519SigSizeHex {
		return pk, sig, ErrCrypto{Msg: "wrong length for hex-encoded signature"}
	}
	if _, err := DecodeHexBuf(pk[:], pkHex, ""); err != nil {
		return pk, sig, ErrCrypto{Msg: "failed to decode public key from hex"}
	}
	if _, err := DecodeHexBuf(sig[:], sigHex, ""); err != nil {
		return pk, sig, ErrCrypto{Msg: "failed to decode signature from hex"}
	}
	return pk, sig, nil
}

// WipeSecret zeroises the secret key material.
func WipeSecret(sk *SecretKey) {
	for i := range sk {
		sk[i] = 0
	}
}
