package event_test

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"nostrdm/internal/crypto"
	"nostrdm/internal/domain"
	"nostrdm/internal/event"
)

func mustKeypair(t *testing.T) domain.Identity {
	t.Helper()
	id, err := crypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	return id
}

func TestBuildAndVerify(t *testing.T) {
	author := mustKeypair(t)
	ev, err := event.Build(author, time.Now().Unix(), domain.KindChatMessage,
		domain.Tags{{"p", "deadbeef"}}, "hello")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if ev.ID != event.ComputeID(ev) {
		t.Fatal("carried id does not match recomputed id")
	}
	if !event.Verify(ev) {
		t.Fatal("freshly built event does not verify")
	}
}

func TestComputeIDIsDeterministic(t *testing.T) {
	author := mustKeypair(t)
	ev := event.BuildUnsigned(author.Pub, 1700000000, domain.KindChatMessage, nil, "same")
	again := event.BuildUnsigned(author.Pub, 1700000000, domain.KindChatMessage, nil, "same")
	if ev.ID != again.ID {
		t.Fatal("same fields produced different ids")
	}
	other := event.BuildUnsigned(author.Pub, 1700000000, domain.KindChatMessage, nil, "different")
	if ev.ID == other.ID {
		t.Fatal("different content produced the same id")
	}
}

func TestComputeIDKeepsHTMLCharactersLiteral(t *testing.T) {
	author := mustKeypair(t)
	content := `<b> & "quoted"`
	ev := event.BuildUnsigned(author.Pub, 1700000000, domain.KindChatMessage, nil, content)

	// The id must be the digest of the canonical form with <, > and &
	// literal, matching what other relay implementations compute.
	canonical := fmt.Sprintf(`[0,"%s",1700000000,%d,[],"<b> & \"quoted\""]`,
		ev.PubKey, domain.KindChatMessage)
	sum := sha256.Sum256([]byte(canonical))
	if ev.ID != hex.EncodeToString(sum[:]) {
		t.Fatalf("id %s does not match the canonical digest", ev.ID)
	}
}

func TestVerifyRejectsMutation(t *testing.T) {
	author := mustKeypair(t)
	ev, err := event.Build(author, time.Now().Unix(), domain.KindChatMessage, nil, "original")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	mutated := ev
	mutated.Content = "forged"
	if event.Verify(mutated) {
		t.Fatal("content mutation passed verification")
	}

	mutated = ev
	mutated.Content = "forged"
	mutated.ID = event.ComputeID(mutated) // fix the id, signature still stale
	if event.Verify(mutated) {
		t.Fatal("re-digested mutation passed verification")
	}

	mutated = ev
	mutated.CreatedAt++
	if event.Verify(mutated) {
		t.Fatal("timestamp mutation passed verification")
	}
}

func TestBuildUnsignedDoesNotVerify(t *testing.T) {
	author := mustKeypair(t)
	rumor := event.BuildUnsigned(author.Pub, time.Now().Unix(), domain.KindChatMessage, nil, "plaintext only")
	if rumor.Sig != "" {
		t.Fatal("rumor has a signature")
	}
	if event.Verify(rumor) {
		t.Fatal("unsigned rumor passed verification")
	}
}

func TestBuildRequiresPrivateKey(t *testing.T) {
	author := mustKeypair(t)
	public := domain.Identity{Pub: author.Pub}
	if _, err := event.Build(public, time.Now().Unix(), domain.KindChatMessage, nil, "x"); !errors.Is(err, domain.ErrSigningError) {
		t.Fatalf("want ErrSigningError, got %v", err)
	}
}

func TestBuildRelayList(t *testing.T) {
	author := mustKeypair(t)

	ev, err := event.BuildRelayList(author, domain.KindInboxRelays, []string{"wss://a.example", "wss://b.example"})
	if err != nil {
		t.Fatalf("BuildRelayList: %v", err)
	}
	if len(ev.Tags) != 2 || ev.Tags[0][0] != "relay" {
		t.Fatalf("unexpected tags %v", ev.Tags)
	}
	if !event.Verify(ev) {
		t.Fatal("relay list event does not verify")
	}

	ev, err = event.BuildRelayList(author, domain.KindRelayList, []string{"wss://a.example"})
	if err != nil {
		t.Fatalf("BuildRelayList: %v", err)
	}
	if ev.Tags[0][0] != "r" {
		t.Fatalf("unexpected tag name %q", ev.Tags[0][0])
	}

	if _, err := event.BuildRelayList(author, domain.KindChatMessage, nil); err == nil {
		t.Fatal("non relay-list kind accepted")
	}
}

func TestBuildMetadataRejectsNonObject(t *testing.T) {
	author := mustKeypair(t)
	if _, err := event.BuildMetadata(author, `["not", "an", "object"]`); !errors.Is(err, domain.ErrMalformedInput) {
		t.Fatalf("want ErrMalformedInput, got %v", err)
	}
	ev, err := event.BuildMetadata(author, `{"name":"jo","about":"dm tester"}`)
	if err != nil {
		t.Fatalf("BuildMetadata: %v", err)
	}
	if ev.Kind != domain.KindMetadata || !event.Verify(ev) {
		t.Fatal("metadata event malformed")
	}
}
