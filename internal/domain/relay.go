package domain

import "context"

// SendPolicy states explicitly how events map to relay groups. Arity is
// never inferred: a mismatch under OneToOne is an error, not a broadcast.
type SendPolicy int

const (
	// SendOneToOne matches events[i] to groups[i]. This is the dual-wrap
	// case: wrap-to-receiver goes to the receiver's inbox relays, the
	// wrap-to-self copy to the sender's own.
	SendOneToOne SendPolicy = iota
	// SendBroadcast delivers every event to the single given group.
	SendBroadcast
)

// SendResult is the outcome for one (event, relay) pair.
type SendResult struct {
	EventID string `json:"event_id"`
	Relay   string `json:"relay"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// SendReport collects every (event, relay) outcome of one fan-out call.
type SendReport struct {
	Results []SendResult `json:"results"`
}

func (r SendReport) AllOK() bool {
	for _, res := range r.Results {
		if !res.OK {
			return false
		}
	}
	return true
}

func (r SendReport) AllFailed() bool {
	if len(r.Results) == 0 {
		return false
	}
	for _, res := range r.Results {
		if res.OK {
			return false
		}
	}
	return true
}

// Fetcher queries a set of relays and returns the merged, deduplicated,
// time-ordered events. An unreachable relay is skipped but reported: the
// surviving events come back alongside ErrPartialFetch. ErrAllRelaysFailed
// means every relay failed and nothing was fetched.
type Fetcher interface {
	Fetch(ctx context.Context, filter Filter, relays []string) ([]Event, error)
}

// Sender fans events out to relay groups under an explicit policy. Pair
// failures are recorded in the report and never block other pairs.
type Sender interface {
	Send(ctx context.Context, events []Event, groups [][]string, policy SendPolicy) (SendReport, error)
}

// ConversationStore persists decrypted messages per conversation peer.
// Writes are idempotent and append-only.
type ConversationStore interface {
	Save(viewerPub string, msgs []Message) (written int, err error)
	List(peerPub string) ([]Message, error)
}
