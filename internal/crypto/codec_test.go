package crypto_test

import (
	"errors"
	"strings"
	"testing"

	"nostrdm/internal/crypto"
	"nostrdm/internal/domain"
)

func TestKeyCodecBijection(t *testing.T) {
	id, err := crypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}

	for _, enc := range []domain.KeyEncoding{domain.EncodingHex, domain.EncodingBech32} {
		text, err := crypto.EncodeKey(id.Pub, domain.KeyKindPublic, enc)
		if err != nil {
			t.Fatalf("EncodeKey(%v): %v", enc, err)
		}
		_, raw, err := crypto.ParseKey(text)
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", text, err)
		}
		if raw != [32]byte(id.Pub) {
			t.Fatalf("round trip through %v changed the key", enc)
		}
	}
}

func TestParseKeyDetectsKindFromBech32(t *testing.T) {
	id, err := crypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}

	nsec, err := crypto.EncodeKey(*id.Priv, domain.KeyKindPrivate, domain.EncodingBech32)
	if err != nil {
		t.Fatalf("EncodeKey: %v", err)
	}
	if !strings.HasPrefix(nsec, "nsec1") {
		t.Fatalf("want nsec1 prefix, got %q", nsec)
	}
	kind, raw, err := crypto.ParseKey(nsec)
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	if kind != domain.KeyKindPrivate {
		t.Fatalf("want private kind, got %v", kind)
	}
	if raw != [32]byte(*id.Priv) {
		t.Fatal("nsec round trip changed the key")
	}
}

func TestParseKeyRejectsMalformedInput(t *testing.T) {
	for _, text := range []string{
		"",
		"not a key",
		"npub1qqqqqqqq",                 // truncated bech32
		strings.Repeat("zz", 32),        // right length, not hex
		strings.Repeat("ab", 31),        // too short
		strings.Repeat("ab", 33),        // too long
		"npub" + strings.Repeat("a", 60), // missing separator digit
	} {
		if _, _, err := crypto.ParseKey(text); !errors.Is(err, domain.ErrInvalidKeyFormat) {
			t.Errorf("ParseKey(%q): want ErrInvalidKeyFormat, got %v", text, err)
		}
	}
}

func TestParseKeyKindMismatch(t *testing.T) {
	id, err := crypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	npub, err := crypto.EncodeKey(id.Pub, domain.KeyKindPublic, domain.EncodingBech32)
	if err != nil {
		t.Fatalf("EncodeKey: %v", err)
	}
	nsec, err := crypto.EncodeKey(*id.Priv, domain.KeyKindPrivate, domain.EncodingBech32)
	if err != nil {
		t.Fatalf("EncodeKey: %v", err)
	}

	if _, err := crypto.ParsePrivateKey(npub); !errors.Is(err, domain.ErrKeyKindMismatch) {
		t.Fatalf("ParsePrivateKey(npub): want ErrKeyKindMismatch, got %v", err)
	}
	if _, err := crypto.ParsePublicKey(nsec); !errors.Is(err, domain.ErrKeyKindMismatch) {
		t.Fatalf("ParsePublicKey(nsec): want ErrKeyKindMismatch, got %v", err)
	}
}

func TestParsePrivateKeyDerivesPublic(t *testing.T) {
	id, err := crypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	parsed, err := crypto.ParsePrivateKey(id.Priv.Hex())
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	if parsed.Pub != id.Pub {
		t.Fatal("derived public key differs from generated one")
	}
	if !parsed.HasPrivate() {
		t.Fatal("parsed identity lost its private key")
	}
}
