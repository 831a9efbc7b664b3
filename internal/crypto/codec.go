package crypto

import (
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/pkg/errors"

	"nostrdm/internal/domain"
)

// Bech32 human-readable prefixes for the two key kinds (NIP-19).
const (
	hrpPublic  = "npub"
	hrpPrivate = "nsec"
)

// ParseKey decodes a key in either textual encoding, detected automatically.
// Bech32 carries the key kind in its prefix; bare hex does not and is
// reported as public. Use ParsePublicKey/ParsePrivateKey when the call site
// knows which kind it needs.
func ParseKey(text string) (domain.KeyKind, [32]byte, error) {
	var raw [32]byte
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, hrpPublic+"1") || strings.HasPrefix(text, hrpPrivate+"1") {
		hrp, data, err := bech32.Decode(text)
		if err != nil {
			return 0, raw, errors.Wrapf(domain.ErrInvalidKeyFormat, "bech32: %v", err)
		}
		decoded, err := bech32.ConvertBits(data, 5, 8, false)
		if err != nil || len(decoded) != 32 {
			return 0, raw, errors.Wrap(domain.ErrInvalidKeyFormat, "bech32 payload is not 32 bytes")
		}
		copy(raw[:], decoded)
		if hrp == hrpPrivate {
			return domain.KeyKindPrivate, raw, nil
		}
		return domain.KeyKindPublic, raw, nil
	}

	if len(text) == 64 {
		decoded, err := hex.DecodeString(text)
		if err == nil {
			copy(raw[:], decoded)
			return domain.KeyKindPublic, raw, nil
		}
	}
	return 0, raw, errors.Wrapf(domain.ErrInvalidKeyFormat, "%q is neither 64-char hex nor npub/nsec bech32", abbreviate(text))
}

// ParsePublicKey decodes a public key from hex or npub text.
func ParsePublicKey(text string) (domain.PublicKey, error) {
	if strings.HasPrefix(strings.TrimSpace(text), hrpPrivate+"1") {
		return domain.PublicKey{}, errors.Wrap(domain.ErrKeyKindMismatch, "got a private key where a public key is required")
	}
	_, raw, err := ParseKey(text)
	if err != nil {
		return domain.PublicKey{}, err
	}
	return domain.PublicKey(raw), nil
}

// ParsePrivateKey decodes a private key from hex or nsec text and returns
// the full identity.
func ParsePrivateKey(text string) (domain.Identity, error) {
	if strings.HasPrefix(strings.TrimSpace(text), hrpPublic+"1") {
		return domain.Identity{}, errors.Wrap(domain.ErrKeyKindMismatch, "got a public key where a private key is required")
	}
	_, raw, err := ParseKey(text)
	if err != nil {
		return domain.Identity{}, err
	}
	sk := domain.PrivateKey(raw)
	return domain.Identity{Pub: DerivePublicKey(sk), Priv: &sk}, nil
}

// EncodeKey renders a raw key in the requested encoding. The kind selects
// the bech32 prefix; hex output is kind-less.
func EncodeKey(raw [32]byte, kind domain.KeyKind, enc domain.KeyEncoding) (string, error) {
	switch enc {
	case domain.EncodingHex:
		return hex.EncodeToString(raw[:]), nil
	case domain.EncodingBech32:
		data, err := bech32.ConvertBits(raw[:], 8, 5, true)
		if err != nil {
			return "", errors.Wrap(err, "bech32 convert bits")
		}
		hrp := hrpPublic
		if kind == domain.KeyKindPrivate {
			hrp = hrpPrivate
		}
		out, err := bech32.Encode(hrp, data)
		if err != nil {
			return "", errors.Wrap(err, "bech32 encode")
		}
		return out, nil
	}
	return "", errors.Errorf("unknown key encoding %d", enc)
}

func abbreviate(s string) string {
	if len(s) > 16 {
		return s[:16] + "..."
	}
	return s
}
