// Package event constructs and verifies signed event envelopes, and offers
// builders for the fixed-format metadata and relay-list events.
package event

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/pkg/errors"

	"nostrdm/internal/crypto"
	"nostrdm/internal/domain"
)

// ComputeID returns the hex sha256 digest of the canonical serialization
// [0, pubkey, created_at, kind, tags, content] (NIP-01).
func ComputeID(ev domain.Event) string {
	digest := digest(ev)
	return hex.EncodeToString(digest[:])
}

func digest(ev domain.Event) [sha256.Size]byte {
	tags := ev.Tags
	if tags == nil {
		tags = domain.Tags{}
	}
	// The canonical form keeps <, > and & literal; json.Marshal would
	// escape them and produce ids other implementations do not recognize.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]interface{}{0, ev.PubKey, ev.CreatedAt, ev.Kind, tags, ev.Content}); err != nil {
		// Only strings and numbers go in; encoding cannot fail on them.
		panic(err)
	}
	return sha256.Sum256(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

// Build computes the id and signs the envelope with the author's key.
func Build(author domain.Identity, createdAt int64, kind int, tags domain.Tags, content string) (domain.Event, error) {
	if !author.HasPrivate() {
		return domain.Event{}, errors.Wrap(domain.ErrSigningError, "identity has no private key")
	}
	ev := BuildUnsigned(author.Pub, createdAt, kind, tags, content)
	d := digest(ev)
	sig, err := crypto.Sign(*author.Priv, d)
	if err != nil {
		return domain.Event{}, errors.Wrap(domain.ErrSigningError, err.Error())
	}
	ev.Sig = hex.EncodeToString(sig)
	return ev, nil
}

// BuildUnsigned assembles an envelope with a valid id and an empty
// signature. Rumors are built this way; they are payload only and must
// never be published directly.
func BuildUnsigned(author domain.PublicKey, createdAt int64, kind int, tags domain.Tags, content string) domain.Event {
	if tags == nil {
		tags = domain.Tags{}
	}
	ev := domain.Event{
		PubKey:    author.Hex(),
		CreatedAt: createdAt,
		Kind:      kind,
		Tags:      tags,
		Content:   content,
	}
	ev.ID = ComputeID(ev)
	return ev
}

// Verify recomputes the id and checks the schnorr signature against the
// author key. It never mutates ev.
func Verify(ev domain.Event) bool {
	if ComputeID(ev) != ev.ID {
		return false
	}
	pubRaw, err := hex.DecodeString(ev.PubKey)
	if err != nil || len(pubRaw) != 32 {
		return false
	}
	sig, err := hex.DecodeString(ev.Sig)
	if err != nil || len(sig) != 64 {
		return false
	}
	return crypto.Verify(domain.MustPublicKey(pubRaw), digest(ev), sig)
}

// Parse decodes a single event from JSON.
func Parse(raw []byte) (domain.Event, error) {
	var ev domain.Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return domain.Event{}, errors.Wrapf(domain.ErrMalformedInput, "parsing event: %v", err)
	}
	return ev, nil
}
