package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"nostrdm/internal/domain"
	"nostrdm/internal/util/memzero"
)

// conversationSalt keys the HKDF extraction so conversation keys are bound
// to this payload scheme (NIP-44 key derivation).
var conversationSalt = []byte("nip44-v2")

// ConversationKey derives the symmetric key shared between the holder of
// priv and the holder of pub. It is symmetric in its inputs:
// ConversationKey(a, B) == ConversationKey(b, A).
func ConversationKey(priv domain.PrivateKey, pub domain.PublicKey) ([32]byte, error) {
	var key [32]byte
	sk, _ := btcec.PrivKeyFromBytes(priv[:])
	pk, err := schnorr.ParsePubKey(pub[:])
	if err != nil {
		return key, errors.Wrap(domain.ErrInvalidKeyFormat, "peer key is not on the curve")
	}
	shared := btcec.GenerateSharedSecret(sk, pk)
	defer memzero.Zero(shared)

	if _, err := io.ReadFull(hkdf.New(sha256.New, shared, conversationSalt, nil), key[:]); err != nil {
		return key, errors.Wrap(err, "hkdf expand")
	}
	return key, nil
}

// Encrypt seals plaintext with the conversation key and returns
// base64(nonce || ciphertext). A fresh random nonce is drawn per call.
func Encrypt(key [32]byte, plaintext []byte) (string, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return "", errors.Wrap(err, "building aead")
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", errors.Wrap(err, "reading nonce")
	}
	ct := aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(ct), nil
}

// Decrypt reverses Encrypt. Any malformed or tampered input yields
// domain.ErrDecryptionFailed; there is no partial output.
func Decrypt(key [32]byte, payload string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrap(domain.ErrDecryptionFailed, "payload is not base64")
	}
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, errors.Wrap(err, "building aead")
	}
	if len(raw) < aead.NonceSize() {
		return nil, errors.Wrap(domain.ErrDecryptionFailed, "payload shorter than nonce")
	}
	plain, err := aead.Open(nil, raw[:aead.NonceSize()], raw[aead.NonceSize():], nil)
	if err != nil {
		return nil, errors.Wrap(domain.ErrDecryptionFailed, "aead open")
	}
	return plain, nil
}
