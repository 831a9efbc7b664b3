package message

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"nostrdm/internal/domain"
	"nostrdm/internal/protocol/giftwrap"
)

// Service runs the private-message pipelines over injected relay and store
// implementations.
type Service struct {
	fetcher domain.Fetcher
	sender  domain.Sender
}

// New constructs a message Service.
func New(fetcher domain.Fetcher, sender domain.Sender) *Service {
	return &Service{fetcher: fetcher, sender: sender}
}

// SendDirect composes the two wraps for one message and delivers them:
// the receiver copy to the receiver's inbox relays, the self copy to the
// sender's own. When the sender has no distinct inbox relays, the self copy
// rides along to the receiver's set so it is never silently dropped.
func (s *Service) SendDirect(
	ctx context.Context,
	sender domain.Identity,
	receiver domain.PublicKey,
	kind int,
	content string,
	receiverRelays []string,
	selfRelays []string,
) (domain.SendReport, error) {
	toReceiver, toSelf, err := giftwrap.Compose(sender, receiver, kind, content)
	if err != nil {
		return domain.SendReport{}, errors.Wrap(err, "composing message")
	}
	if len(selfRelays) == 0 {
		selfRelays = receiverRelays
	}
	return s.sender.Send(ctx,
		[]domain.Event{toReceiver, toSelf},
		[][]string{receiverRelays, selfRelays},
		domain.SendOneToOne)
}

// FetchDirect retrieves and opens the gift wraps addressed to the viewer.
// Wraps for other recipients are expected on public relays and skipped
// silently. Wraps that fail to decrypt are skipped too but reported: the
// surviving messages come back alongside ErrPartialFetch, just as they do
// when part of the relay set was unreachable. Results are ordered by the
// inner message time, which the relay-visible wrap timestamps deliberately
// do not reflect.
func (s *Service) FetchDirect(
	ctx context.Context,
	viewer domain.Identity,
	relays []string,
	since, until *int64,
) ([]domain.Message, error) {
	if !viewer.HasPrivate() {
		return nil, errors.Wrap(domain.ErrKeyKindMismatch, "fetching messages requires a private key")
	}
	filter := domain.Filter{
		Kinds: []int{domain.KindGiftWrap},
		PTags: []string{viewer.PublicHex()},
		Since: since,
		Until: until,
	}
	wraps, err := s.fetcher.Fetch(ctx, filter, relays)
	if err != nil && !errors.Is(err, domain.ErrPartialFetch) {
		return nil, err
	}
	partial := err

	msgs := make([]domain.Message, 0, len(wraps))
	for _, wrap := range wraps {
		msg, err := giftwrap.Open(viewer, wrap)
		switch {
		case err == nil:
			msgs = append(msgs, msg)
		case errors.Is(err, domain.ErrNotAddressedToMe):
			// Normal on shared relays; not even worth a warning.
			logrus.WithField("event", wrap.ID).Debug("wrap addressed elsewhere")
		case errors.Is(err, domain.ErrDecryptionFailed):
			logrus.WithField("event", wrap.ID).Warnf("dropping undecryptable wrap: %v", err)
			if partial == nil {
				partial = errors.Wrap(domain.ErrPartialFetch, "undecryptable wraps were skipped")
			}
		default:
			return nil, err
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].CreatedAt < msgs[j].CreatedAt })
	return msgs, partial
}

// SaveHistory persists fetched messages into a conversation store.
func (s *Service) SaveHistory(store domain.ConversationStore, viewerPub string, msgs []domain.Message) (int, error) {
	return store.Save(viewerPub, msgs)
}
