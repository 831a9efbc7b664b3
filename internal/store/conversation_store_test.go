package store_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nostrdm/internal/crypto"
	"nostrdm/internal/domain"
	"nostrdm/internal/store"
)

func mustKeypair(t *testing.T) domain.Identity {
	t.Helper()
	id, err := crypto.GenerateKeypair()
	require.NoError(t, err)
	return id
}

func countRecords(t *testing.T, root string) int {
	t.Helper()
	n := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

func TestSaveIsIdempotent(t *testing.T) {
	viewer := mustKeypair(t)
	peer := mustKeypair(t)
	root := t.TempDir()
	s := store.NewConversationStore(root)

	msgs := []domain.Message{
		{Sender: peer.PublicHex(), CreatedAt: 1700000000, Kind: domain.KindChatMessage, Content: "first"},
		{Sender: peer.PublicHex(), CreatedAt: 1700000001, Kind: domain.KindChatMessage, Content: "second"},
	}

	written, err := s.Save(viewer.PublicHex(), msgs)
	require.NoError(t, err)
	assert.Equal(t, 2, written)
	assert.Equal(t, 2, countRecords(t, root))

	// Saving the same batch again must not create duplicates.
	written, err = s.Save(viewer.PublicHex(), msgs)
	require.NoError(t, err)
	assert.Equal(t, 0, written)
	assert.Equal(t, 2, countRecords(t, root))
}

func TestSaveSeparatesSameTimestampDifferentContent(t *testing.T) {
	viewer := mustKeypair(t)
	peer := mustKeypair(t)
	s := store.NewConversationStore(t.TempDir())

	written, err := s.Save(viewer.PublicHex(), []domain.Message{
		{Sender: peer.PublicHex(), CreatedAt: 1700000000, Kind: domain.KindChatMessage, Content: "a"},
		{Sender: peer.PublicHex(), CreatedAt: 1700000000, Kind: domain.KindChatMessage, Content: "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, written, "same timestamp, different content are distinct records")
}

func TestSaveResolvesSelfSentPeer(t *testing.T) {
	viewer := mustKeypair(t)
	peer := mustKeypair(t)
	root := t.TempDir()
	s := store.NewConversationStore(root)

	// A self-sent copy: sender is the viewer, rumor tags name the receiver.
	selfCopy := domain.Message{
		Sender:    viewer.PublicHex(),
		CreatedAt: 1700000002,
		Kind:      domain.KindChatMessage,
		Content:   "sent by me",
		Tags:      domain.Tags{{"p", peer.PublicHex()}},
	}
	written, err := s.Save(viewer.PublicHex(), []domain.Message{selfCopy})
	require.NoError(t, err)
	require.Equal(t, 1, written)

	// The record must land in the peer's directory, not the viewer's own.
	peerNpub, err := crypto.EncodeKey(peer.Pub, domain.KeyKindPublic, domain.EncodingBech32)
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Join(root, peerNpub))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveSkipsUnresolvablePeer(t *testing.T) {
	viewer := mustKeypair(t)
	s := store.NewConversationStore(t.TempDir())

	// Self-sent with no receiver tag: no peer can be determined.
	written, err := s.Save(viewer.PublicHex(), []domain.Message{
		{Sender: viewer.PublicHex(), CreatedAt: 1700000000, Content: "orphan"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, written)
}

func TestSaveDetectsConflict(t *testing.T) {
	viewer := mustKeypair(t)
	peer := mustKeypair(t)
	root := t.TempDir()
	s := store.NewConversationStore(root)

	msg := domain.Message{Sender: peer.PublicHex(), CreatedAt: 1700000000, Kind: domain.KindChatMessage, Content: "original"}
	_, err := s.Save(viewer.PublicHex(), []domain.Message{msg})
	require.NoError(t, err)

	// Corrupt the record on disk, then re-save the same message.
	peerNpub, err := crypto.EncodeKey(peer.Pub, domain.KeyKindPublic, domain.EncodingBech32)
	require.NoError(t, err)
	dir := filepath.Join(root, peerNpub)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, entries[0].Name()), []byte("garbage"), 0o600))

	// Re-save the conflicting message alongside a fresh one: the conflict
	// is reported, but the rest of the batch still lands.
	fresh := domain.Message{Sender: peer.PublicHex(), CreatedAt: 1700000001, Kind: domain.KindChatMessage, Content: "after the corruption"}
	written, err := s.Save(viewer.PublicHex(), []domain.Message{msg, fresh})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStorageConflict))
	assert.Equal(t, 1, written, "the non-conflicting record must still be written")

	got, err := s.List(peer.PublicHex())
	require.NoError(t, err)
	contents := make([]string, 0, len(got))
	for _, m := range got {
		contents = append(contents, m.Content)
	}
	assert.Contains(t, contents, "after the corruption")
}

func TestListReturnsChronologicalHistory(t *testing.T) {
	viewer := mustKeypair(t)
	peer := mustKeypair(t)
	s := store.NewConversationStore(t.TempDir())

	_, err := s.Save(viewer.PublicHex(), []domain.Message{
		{Sender: peer.PublicHex(), CreatedAt: 1700000002, Kind: domain.KindChatMessage, Content: "third"},
		{Sender: peer.PublicHex(), CreatedAt: 1700000000, Kind: domain.KindChatMessage, Content: "first"},
		{Sender: peer.PublicHex(), CreatedAt: 1700000001, Kind: domain.KindChatMessage, Content: "second"},
	})
	require.NoError(t, err)

	got, err := s.List(peer.PublicHex())
	require.NoError(t, err)
	require.Len(t, got, 3)
	contents := []string{got[0].Content, got[1].Content, got[2].Content}
	assert.Equal(t, []string{"first", "second", "third"}, contents)

	// A peer with no history lists empty, not an error.
	empty, err := s.List(viewer.PublicHex())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPeerDirectoriesAreNpubEncoded(t *testing.T) {
	viewer := mustKeypair(t)
	peer := mustKeypair(t)
	root := t.TempDir()
	s := store.NewConversationStore(root)

	_, err := s.Save(viewer.PublicHex(), []domain.Message{
		{Sender: peer.PublicHex(), CreatedAt: 1700000000, Kind: domain.KindChatMessage, Content: "hi"},
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "npub1"))
}
