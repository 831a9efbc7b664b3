package crypto_test

import (
	"encoding/base64"
	"errors"
	"testing"

	"nostrdm/internal/crypto"
	"nostrdm/internal/domain"
)

func mustKeypair(t *testing.T) domain.Identity {
	t.Helper()
	id, err := crypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	return id
}

func TestConversationKeyIsSymmetric(t *testing.T) {
	alice := mustKeypair(t)
	bob := mustKeypair(t)

	ab, err := crypto.ConversationKey(*alice.Priv, bob.Pub)
	if err != nil {
		t.Fatalf("ConversationKey(a, B): %v", err)
	}
	ba, err := crypto.ConversationKey(*bob.Priv, alice.Pub)
	if err != nil {
		t.Fatalf("ConversationKey(b, A): %v", err)
	}
	if ab != ba {
		t.Fatal("conversation keys differ between the two sides")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	alice := mustKeypair(t)
	bob := mustKeypair(t)
	key, err := crypto.ConversationKey(*alice.Priv, bob.Pub)
	if err != nil {
		t.Fatalf("ConversationKey: %v", err)
	}

	payload, err := crypto.Encrypt(key, []byte("hola bob"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	plain, err := crypto.Decrypt(key, payload)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(plain) != "hola bob" {
		t.Fatalf("round trip gave %q", plain)
	}
}

func TestDecryptRejectsTamperedPayload(t *testing.T) {
	alice := mustKeypair(t)
	bob := mustKeypair(t)
	key, err := crypto.ConversationKey(*alice.Priv, bob.Pub)
	if err != nil {
		t.Fatalf("ConversationKey: %v", err)
	}
	payload, err := crypto.Encrypt(key, []byte("attack at dawn"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	for i := range raw {
		flipped := append([]byte(nil), raw...)
		flipped[i] ^= 0x01
		if _, err := crypto.Decrypt(key, base64.StdEncoding.EncodeToString(flipped)); !errors.Is(err, domain.ErrDecryptionFailed) {
			t.Fatalf("byte %d flipped: want ErrDecryptionFailed, got %v", i, err)
		}
	}
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	alice := mustKeypair(t)
	bob := mustKeypair(t)
	eve := mustKeypair(t)

	good, err := crypto.ConversationKey(*alice.Priv, bob.Pub)
	if err != nil {
		t.Fatalf("ConversationKey: %v", err)
	}
	bad, err := crypto.ConversationKey(*eve.Priv, bob.Pub)
	if err != nil {
		t.Fatalf("ConversationKey: %v", err)
	}
	payload, err := crypto.Encrypt(good, []byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := crypto.Decrypt(bad, payload); !errors.Is(err, domain.ErrDecryptionFailed) {
		t.Fatalf("want ErrDecryptionFailed, got %v", err)
	}
	if _, err := crypto.Decrypt(good, "@@not base64@@"); !errors.Is(err, domain.ErrDecryptionFailed) {
		t.Fatalf("garbage payload: want ErrDecryptionFailed, got %v", err)
	}
}
