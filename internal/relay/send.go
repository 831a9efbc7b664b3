package relay

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"nostrdm/internal/domain"
)

// Send fans events out to relay groups under an explicit policy.
//
// SendOneToOne matches events[i] with groups[i]: the dual-wrap case, where
// the receiver copy goes to the receiver's inbox relays and the self copy
// to the sender's own. SendBroadcast delivers all events to the single
// group. Every (event, relay) pair is attempted regardless of other pairs'
// outcomes, with no retry; the report records each verdict.
//
// The returned error covers policy violations only. Delivery failures live
// in the report: callers distinguish full, partial and zero delivery with
// AllOK and AllFailed.
func (p *Pool) Send(ctx context.Context, events []domain.Event, groups [][]string, policy domain.SendPolicy) (domain.SendReport, error) {
	var report domain.SendReport

	switch policy {
	case domain.SendOneToOne:
		if len(groups) != len(events) {
			return report, errors.Wrapf(domain.ErrGroupMismatch, "%d events, %d groups", len(events), len(groups))
		}
	case domain.SendBroadcast:
		if len(groups) != 1 {
			return report, errors.Wrapf(domain.ErrGroupMismatch, "broadcast takes exactly one group, got %d", len(groups))
		}
	default:
		return report, errors.Errorf("unknown send policy %d", policy)
	}

	// Regroup by relay so each endpoint is dialed once per call.
	perRelay := make(map[string][]domain.Event)
	for i, ev := range events {
		group := groups[0]
		if policy == domain.SendOneToOne {
			group = groups[i]
		}
		for _, url := range group {
			perRelay[url] = append(perRelay[url], ev)
		}
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for url, evs := range perRelay {
		wg.Add(1)
		go func(url string, evs []domain.Event) {
			defer wg.Done()
			results := p.sendToRelay(ctx, url, evs)
			mu.Lock()
			report.Results = append(report.Results, results...)
			mu.Unlock()
		}(url, evs)
	}
	wg.Wait()

	sort.Slice(report.Results, func(i, j int) bool {
		if report.Results[i].Relay != report.Results[j].Relay {
			return report.Results[i].Relay < report.Results[j].Relay
		}
		return report.Results[i].EventID < report.Results[j].EventID
	})
	return report, nil
}

func (p *Pool) sendToRelay(ctx context.Context, url string, evs []domain.Event) []domain.SendResult {
	results := make([]domain.SendResult, 0, len(evs))
	conn, err := p.dialer.Dial(ctx, url)
	if err != nil {
		logrus.WithField("relay", url).Warnf("unreachable: %v", err)
		for _, ev := range evs {
			results = append(results, domain.SendResult{EventID: ev.ID, Relay: url, Error: err.Error()})
		}
		return results
	}
	defer conn.Close()

	for _, ev := range evs {
		res := domain.SendResult{EventID: ev.ID, Relay: url, OK: true}
		if err := conn.Publish(ctx, ev); err != nil {
			logrus.WithFields(logrus.Fields{"relay": url, "event": ev.ID}).Warnf("publish failed: %v", err)
			res.OK = false
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

// Compile-time assertion that Pool implements domain.Sender.
var _ domain.Sender = (*Pool)(nil)
