package crypto

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/pkg/errors"

	"nostrdm/internal/domain"
)

// GenerateKeypair returns a fresh secp256k1 identity.
func GenerateKeypair() (domain.Identity, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return domain.Identity{}, errors.Wrap(err, "generating secp256k1 key")
	}
	sk := domain.MustPrivateKey(priv.Serialize())
	return domain.Identity{
		Pub:  domain.MustPublicKey(schnorr.SerializePubKey(priv.PubKey())),
		Priv: &sk,
	}, nil
}

// DerivePublicKey computes the x-only public key of a private scalar.
func DerivePublicKey(priv domain.PrivateKey) domain.PublicKey {
	sk, _ := btcec.PrivKeyFromBytes(priv[:])
	return domain.MustPublicKey(schnorr.SerializePubKey(sk.PubKey()))
}

// Sign produces a 64-byte schnorr signature over digest.
func Sign(priv domain.PrivateKey, digest [sha256.Size]byte) ([]byte, error) {
	sk, _ := btcec.PrivKeyFromBytes(priv[:])
	sig, err := schnorr.Sign(sk, digest[:])
	if err != nil {
		return nil, errors.Wrap(err, "schnorr sign")
	}
	return sig.Serialize(), nil
}

// Verify checks a schnorr signature over digest against an x-only pubkey.
func Verify(pub domain.PublicKey, digest [sha256.Size]byte, sig []byte) bool {
	pk, err := schnorr.ParsePubKey(pub[:])
	if err != nil {
		return false
	}
	s, err := schnorr.ParseSignature(sig)
	if err != nil {
		return false
	}
	return s.Verify(digest[:], pk)
}
