package relay

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"nostrdm/internal/domain"
	"nostrdm/internal/event"
)

// Pool runs multi-relay operations with a shared Dialer.
type Pool struct {
	dialer Dialer
}

func NewPool(d Dialer) *Pool { return &Pool{dialer: d} }

// Fetch queries every relay with the same filter, merges the streams and
// deduplicates by event id; a relay set commonly returns the same event
// from several endpoints. Events whose signatures do not verify are
// dropped. The call completes when every relay has signaled EOSE or failed;
// the result is then sorted by created_at (id as tiebreaker). A failing
// endpoint is logged and skipped, and the merged result then returns
// alongside ErrPartialFetch so callers can report the degraded set. Only a
// set with no reachable endpoint is ErrAllRelaysFailed.
func (p *Pool) Fetch(ctx context.Context, filter domain.Filter, relays []string) ([]domain.Event, error) {
	if len(relays) == 0 {
		return nil, errors.Wrap(domain.ErrAllRelaysFailed, "empty relay set")
	}

	ch := make(chan domain.Event)
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for _, url := range relays {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			conn, err := p.dialer.Dial(ctx, url)
			if err != nil {
				logrus.WithField("relay", url).Warnf("unreachable: %v", err)
				return
			}
			defer conn.Close()
			evs, err := conn.Fetch(ctx, filter)
			if err != nil {
				logrus.WithField("relay", url).Warnf("fetch failed: %v", err)
				return
			}
			mu.Lock()
			succeeded++
			mu.Unlock()
			for _, ev := range evs {
				ch <- ev
			}
		}(url)
	}
	go func() {
		wg.Wait()
		close(ch)
	}()

	seen := make(map[string]struct{})
	var out []domain.Event
	for ev := range ch {
		if _, dup := seen[ev.ID]; dup {
			continue
		}
		if !event.Verify(ev) {
			logrus.WithField("event", ev.ID).Debug("dropping event with bad signature")
			continue
		}
		seen[ev.ID] = struct{}{}
		out = append(out, ev)
	}

	if succeeded == 0 {
		return nil, errors.Wrapf(domain.ErrAllRelaysFailed, "%d relays, none reachable", len(relays))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	if failed := len(relays) - succeeded; failed > 0 {
		return out, errors.Wrapf(domain.ErrPartialFetch, "%d of %d relays failed", failed, len(relays))
	}
	return out, nil
}

// Compile-time assertion that Pool implements domain.Fetcher.
var _ domain.Fetcher = (*Pool)(nil)
