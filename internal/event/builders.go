package event

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"nostrdm/internal/domain"
)

// BuildMetadata signs a kind-0 profile event. metadataJSON must be a JSON
// object (NIP-01/NIP-24 fields); it is carried verbatim, not interpreted.
func BuildMetadata(author domain.Identity, metadataJSON string) (domain.Event, error) {
	var probe map[string]interface{}
	if err := json.Unmarshal([]byte(metadataJSON), &probe); err != nil {
		return domain.Event{}, errors.Wrapf(domain.ErrMalformedInput, "metadata is not a JSON object: %v", err)
	}
	return Build(author, time.Now().Unix(), domain.KindMetadata, nil, metadataJSON)
}

// BuildRelayList signs a relay-list event: kind 10002 with "r" tags
// (NIP-65) or kind 10050 with "relay" tags (NIP-17 DM inbox).
// Read/write markers per relay are not supported.
func BuildRelayList(author domain.Identity, kind int, relays []string) (domain.Event, error) {
	var tagName string
	switch kind {
	case domain.KindRelayList:
		tagName = "r"
	case domain.KindInboxRelays:
		tagName = "relay"
	default:
		return domain.Event{}, errors.Errorf("kind %d is not a relay-list kind", kind)
	}
	tags := make(domain.Tags, 0, len(relays))
	for _, r := range relays {
		tags = append(tags, []string{tagName, r})
	}
	return Build(author, time.Now().Unix(), kind, tags, "")
}
