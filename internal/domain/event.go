package domain

// Event kinds used by the direct-message flow (NIP-01, NIP-17, NIP-59,
// NIP-65).
const (
	KindMetadata    = 0
	KindSeal        = 13
	KindChatMessage = 14
	KindFileMessage = 15
	KindGiftWrap    = 1059
	KindRelayList   = 10002
	KindInboxRelays = 10050
)

// Tags is the ordered list of string-list tags an event carries.
type Tags [][]string

// First returns the second element of the first tag whose name matches,
// e.g. First("p") is the first tagged pubkey.
func (t Tags) First(name string) (string, bool) {
	for _, tag := range t {
		if len(tag) >= 2 && tag[0] == name {
			return tag[1], true
		}
	}
	return "", false
}

// Event is the signed wire record relays store and forward. Instances are
// immutable once signed; nothing in this codebase mutates a built event.
type Event struct {
	ID        string `json:"id"`
	PubKey    string `json:"pubkey"`
	CreatedAt int64  `json:"created_at"`
	Kind      int    `json:"kind"`
	Tags      Tags   `json:"tags"`
	Content   string `json:"content"`
	Sig       string `json:"sig"`
}

// Recipient returns the pubkey named by the event's first "p" tag.
func (ev Event) Recipient() (string, bool) {
	return ev.Tags.First("p")
}

// Message is the application view of a decrypted direct message: the inner
// rumor's author, timestamp, kind and content. It is derived locally and
// never transmitted.
type Message struct {
	Sender    string `json:"sender"`
	CreatedAt int64  `json:"created_at"`
	Kind      int    `json:"kind"`
	Content   string `json:"content"`
	Tags      Tags   `json:"tags,omitempty"`
}

// Peer resolves the conversation peer from the viewer's perspective: the
// sender for received messages, the rumor's addressed recipient for
// self-sent copies recovered from the viewer's own inbox.
func (m Message) Peer(viewerPub string) (string, bool) {
	if m.Sender != viewerPub {
		return m.Sender, true
	}
	return m.Tags.First("p")
}
