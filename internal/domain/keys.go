package domain

import (
	"encoding/hex"
	"fmt"
)

// ------------- secp256k1 key material -------------

// PublicKey is a 32-byte x-only secp256k1 public key, the form schnorr
// signatures verify against and the form events carry on the wire.
type PublicKey [32]byte

// PrivateKey is a 32-byte secp256k1 scalar.
type PrivateKey [32]byte

func (k PublicKey) Slice() []byte  { return k[:] }
func (k PrivateKey) Slice() []byte { return k[:] }

// Hex returns the lowercase hex form used in event fields and filters.
func (k PublicKey) Hex() string { return hex.EncodeToString(k[:]) }

func (k PrivateKey) Hex() string { return hex.EncodeToString(k[:]) }

func MustPublicKey(b []byte) PublicKey {
	if len(b) != 32 {
		panic(fmt.Errorf("public key: want 32 bytes, got %d", len(b)))
	}
	var out PublicKey
	copy(out[:], b)
	return out
}

func MustPrivateKey(b []byte) PrivateKey {
	if len(b) != 32 {
		panic(fmt.Errorf("private key: want 32 bytes, got %d", len(b)))
	}
	var out PrivateKey
	copy(out[:], b)
	return out
}

// ------------- Identity -------------

// Identity is a keypair, or a public key alone when only verification or
// addressing is needed.
type Identity struct {
	Pub  PublicKey
	Priv *PrivateKey
}

// HasPrivate reports whether the identity can sign and decrypt.
func (id Identity) HasPrivate() bool { return id.Priv != nil }

// PublicHex is the hex form of the public key.
func (id Identity) PublicHex() string { return id.Pub.Hex() }

// KeyKind distinguishes the two halves of a keypair in text form.
type KeyKind int

const (
	KeyKindPublic KeyKind = iota
	KeyKindPrivate
)

func (k KeyKind) String() string {
	if k == KeyKindPrivate {
		return "private"
	}
	return "public"
}

// KeyEncoding selects a textual key encoding.
type KeyEncoding int

const (
	EncodingHex KeyEncoding = iota
	EncodingBech32
)
