package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"nostrdm/internal/crypto"
	"nostrdm/internal/domain"
)

// ConversationStore persists decrypted messages per peer under a root
// directory.
type ConversationStore struct {
	root string
}

// NewConversationStore returns a store rooted at dir.
func NewConversationStore(dir string) *ConversationStore {
	return &ConversationStore{root: dir}
}

// Save writes each message under its peer's directory and reports how many
// records were actually created. Messages whose peer cannot be resolved are
// skipped with a warning; existing identical records are skipped silently
// (idempotent re-save). An existing record with different content under the
// same key is a conflict: the rest of the batch is still processed and the
// first conflict is returned afterwards.
func (s *ConversationStore) Save(viewerPub string, msgs []domain.Message) (int, error) {
	written := 0
	var conflict error
	for _, msg := range msgs {
		peer, ok := msg.Peer(viewerPub)
		if !ok {
			logrus.WithField("sender", msg.Sender).Warn("skipping message with unresolvable peer")
			continue
		}
		created, err := s.writeRecord(peer, msg)
		switch {
		case errors.Is(err, domain.ErrStorageConflict):
			logrus.WithField("sender", msg.Sender).Warnf("skipping conflicting record: %v", err)
			if conflict == nil {
				conflict = err
			}
		case err != nil:
			return written, err
		case created:
			written++
		}
	}
	return written, conflict
}

func (s *ConversationStore) writeRecord(peerHex string, msg domain.Message) (bool, error) {
	dir, err := s.peerDir(peerHex)
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return false, errors.Wrap(err, "creating peer directory")
	}

	record, err := json.MarshalIndent(msg, "", "  ")
	if err != nil {
		return false, errors.Wrap(err, "encoding message")
	}
	path := filepath.Join(dir, recordName(msg))

	// O_EXCL gives create-if-absent semantics: safe under concurrent
	// writers because the name is derived from immutable content.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, os.ErrExist) {
		existing, readErr := os.ReadFile(path)
		if readErr != nil {
			return false, errors.Wrap(readErr, "reading existing record")
		}
		if !bytes.Equal(existing, record) {
			return false, errors.Wrapf(domain.ErrStorageConflict, "record %s exists with different content", path)
		}
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "creating record")
	}
	defer f.Close()
	if _, err := f.Write(record); err != nil {
		return false, errors.Wrap(err, "writing record")
	}
	return true, nil
}

// List returns one peer's stored history in key (chronological) order.
func (s *ConversationStore) List(peerHex string) ([]domain.Message, error) {
	dir, err := s.peerDir(peerHex)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading peer directory")
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	out := make([]domain.Message, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "reading record %s", entry.Name())
		}
		var msg domain.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			logrus.WithField("record", entry.Name()).Warn("skipping undecodable record")
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

// peerDir encodes the peer key as npub for a self-describing directory name.
func (s *ConversationStore) peerDir(peerHex string) (string, error) {
	pub, err := crypto.ParsePublicKey(peerHex)
	if err != nil {
		return "", errors.Wrapf(err, "peer %q", peerHex)
	}
	npub, err := crypto.EncodeKey(pub, domain.KeyKindPublic, domain.EncodingBech32)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, npub), nil
}

// recordName keys a record by timestamp (zero-padded, so lexicographic
// order is chronological) plus a short content digest: one record per
// distinct content+timestamp combination.
func recordName(msg domain.Message) string {
	sum := sha256.Sum256([]byte(msg.Content))
	return fmt.Sprintf("%019d-%s.json", msg.CreatedAt, hex.EncodeToString(sum[:4]))
}

// Compile-time assertion that ConversationStore implements the domain
// interface.
var _ domain.ConversationStore = (*ConversationStore)(nil)
