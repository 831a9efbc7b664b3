package giftwrap

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"time"

	"github.com/pkg/errors"

	"nostrdm/internal/crypto"
	"nostrdm/internal/domain"
	"nostrdm/internal/event"
	"nostrdm/internal/util/memzero"
)

// Wrap and seal timestamps are drawn uniformly from the two days before the
// true time so relays cannot order conversations by them (NIP-59).
const timestampWindow = 2 * 24 * time.Hour

// Compose builds the two gift wraps for one outgoing message: the first
// addressed to the receiver, the second to the sender so the message can be
// recovered from the sender's own inbox.
//
// Both wraps carry the identical rumor. The seal conversation key is
// derived from (sender private, receiver public) for BOTH copies, never
// from the sender's own key, so either copy decrypts and verifies as
// coming from the true sender.
func Compose(sender domain.Identity, receiver domain.PublicKey, kind int, content string) (toReceiver, toSelf domain.Event, err error) {
	if !sender.HasPrivate() {
		err = errors.Wrap(domain.ErrSigningError, "sender identity has no private key")
		return
	}
	if kind != domain.KindChatMessage && kind != domain.KindFileMessage {
		err = errors.Errorf("kind %d is not a direct-message kind", kind)
		return
	}

	// The rumor records the true time and the addressed receiver; the "p"
	// tag also lets the self-copy resolve its conversation peer later.
	rumor := event.BuildUnsigned(sender.Pub, time.Now().Unix(), kind,
		domain.Tags{{"p", receiver.Hex()}}, content)
	rumorJSON, err := json.Marshal(rumor)
	if err != nil {
		return
	}

	sealKey, err := crypto.ConversationKey(*sender.Priv, receiver)
	if err != nil {
		return
	}
	defer memzero.Zero(sealKey[:])

	toReceiver, err = wrapOnce(sender, sealKey, rumorJSON, receiver)
	if err != nil {
		return
	}
	toSelf, err = wrapOnce(sender, sealKey, rumorJSON, sender.Pub)
	return
}

// wrapOnce seals the rumor and wraps the seal for one recipient. Each call
// builds its own seal and its own ephemeral wrap identity, so the two
// copies of a message share no ids, signatures or ciphertexts.
func wrapOnce(sender domain.Identity, sealKey [32]byte, rumorJSON []byte, wrapTo domain.PublicKey) (domain.Event, error) {
	sealedRumor, err := crypto.Encrypt(sealKey, rumorJSON)
	if err != nil {
		return domain.Event{}, err
	}
	seal, err := event.Build(sender, obfuscatedNow(), domain.KindSeal, nil, sealedRumor)
	if err != nil {
		return domain.Event{}, err
	}
	sealJSON, err := json.Marshal(seal)
	if err != nil {
		return domain.Event{}, err
	}

	// Ephemeral identity: generated, used for one signature, wiped. It is
	// never stored and never reused.
	ephemeral, err := crypto.GenerateKeypair()
	if err != nil {
		return domain.Event{}, err
	}
	defer memzero.Zero(ephemeral.Priv[:])

	wrapKey, err := crypto.ConversationKey(*ephemeral.Priv, wrapTo)
	if err != nil {
		return domain.Event{}, err
	}
	defer memzero.Zero(wrapKey[:])

	sealedSeal, err := crypto.Encrypt(wrapKey, sealJSON)
	if err != nil {
		return domain.Event{}, err
	}
	return event.Build(ephemeral, obfuscatedNow(), domain.KindGiftWrap,
		domain.Tags{{"p", wrapTo.Hex()}}, sealedSeal)
}

// Open unwinds a gift wrap addressed to the recipient and returns the
// application view of the inner rumor.
//
// Failure modes: a wrap tagged for someone else is ErrNotAddressedToMe
// (normal when scanning public relays, callers skip it silently); any
// decryption, parse or signature mismatch is ErrDecryptionFailed and never
// yields a partial message.
func Open(recipient domain.Identity, wrap domain.Event) (domain.Message, error) {
	var none domain.Message
	if !recipient.HasPrivate() {
		return none, errors.Wrap(domain.ErrKeyKindMismatch, "opening requires a private key")
	}
	if wrap.Kind != domain.KindGiftWrap {
		return none, errors.Wrapf(domain.ErrDecryptionFailed, "kind %d is not a gift wrap", wrap.Kind)
	}
	to, ok := wrap.Recipient()
	if !ok || to != recipient.PublicHex() {
		return none, domain.ErrNotAddressedToMe
	}

	wrapAuthor, err := parsePub(wrap.PubKey)
	if err != nil {
		return none, errors.Wrap(domain.ErrDecryptionFailed, "wrap author is not a valid key")
	}
	wrapKey, err := crypto.ConversationKey(*recipient.Priv, wrapAuthor)
	if err != nil {
		return none, errors.Wrap(domain.ErrDecryptionFailed, err.Error())
	}
	defer memzero.Zero(wrapKey[:])

	sealJSON, err := crypto.Decrypt(wrapKey, wrap.Content)
	if err != nil {
		return none, err
	}
	var seal domain.Event
	if err := json.Unmarshal(sealJSON, &seal); err != nil {
		return none, errors.Wrap(domain.ErrDecryptionFailed, "wrap payload is not a seal")
	}
	if seal.Kind != domain.KindSeal || !event.Verify(seal) {
		return none, errors.Wrap(domain.ErrDecryptionFailed, "seal does not verify")
	}

	sealAuthor, err := parsePub(seal.PubKey)
	if err != nil {
		return none, errors.Wrap(domain.ErrDecryptionFailed, "seal author is not a valid key")
	}
	sealKey, err := crypto.ConversationKey(*recipient.Priv, sealAuthor)
	if err != nil {
		return none, errors.Wrap(domain.ErrDecryptionFailed, err.Error())
	}
	defer memzero.Zero(sealKey[:])

	rumorJSON, err := crypto.Decrypt(sealKey, seal.Content)
	if err != nil {
		return none, err
	}
	var rumor domain.Event
	if err := json.Unmarshal(rumorJSON, &rumor); err != nil {
		return none, errors.Wrap(domain.ErrDecryptionFailed, "seal payload is not a rumor")
	}
	// The rumor must claim the same author the seal proved, or a holder of
	// a valid seal could attribute arbitrary text to someone else.
	if rumor.PubKey != seal.PubKey {
		return none, errors.Wrap(domain.ErrDecryptionFailed, "rumor author differs from seal author")
	}
	if rumor.Kind != domain.KindChatMessage && rumor.Kind != domain.KindFileMessage {
		return none, errors.Wrapf(domain.ErrDecryptionFailed, "rumor kind %d is not a direct message", rumor.Kind)
	}

	// Wrap and seal timestamps are obfuscated noise; only the rumor's
	// created_at is the message time.
	return domain.Message{
		Sender:    rumor.PubKey,
		CreatedAt: rumor.CreatedAt,
		Kind:      rumor.Kind,
		Content:   rumor.Content,
		Tags:      rumor.Tags,
	}, nil
}

func obfuscatedNow() int64 {
	max := big.NewInt(int64(timestampWindow / time.Second))
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return time.Now().Unix()
	}
	return time.Now().Unix() - n.Int64()
}

func parsePub(hexKey string) (domain.PublicKey, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil || len(raw) != 32 {
		return domain.PublicKey{}, domain.ErrInvalidKeyFormat
	}
	return domain.MustPublicKey(raw), nil
}
