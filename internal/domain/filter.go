package domain

import "encoding/json"

// Filter is a relay subscription filter (NIP-01). Zero fields are omitted
// from the wire form.
type Filter struct {
	Authors []string
	Kinds   []int
	PTags   []string // "#p": events addressed to these pubkeys
	Since   *int64
	Until   *int64
	Limit   int
}

type filterJSON struct {
	Authors []string `json:"authors,omitempty"`
	Kinds   []int    `json:"kinds,omitempty"`
	PTags   []string `json:"#p,omitempty"`
	Since   *int64   `json:"since,omitempty"`
	Until   *int64   `json:"until,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

func (f Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal(filterJSON(f))
}

func (f *Filter) UnmarshalJSON(b []byte) error {
	var fj filterJSON
	if err := json.Unmarshal(b, &fj); err != nil {
		return err
	}
	*f = Filter(fj)
	return nil
}

// Matches reports whether ev satisfies the filter. Relays apply filters
// server-side; this is used by the in-memory relay and as a belt-and-braces
// check on fetched results.
func (f Filter) Matches(ev Event) bool {
	if len(f.Authors) > 0 && !containsString(f.Authors, ev.PubKey) {
		return false
	}
	if len(f.Kinds) > 0 && !containsInt(f.Kinds, ev.Kind) {
		return false
	}
	if len(f.PTags) > 0 {
		p, ok := ev.Recipient()
		if !ok || !containsString(f.PTags, p) {
			return false
		}
	}
	if f.Since != nil && ev.CreatedAt < *f.Since {
		return false
	}
	if f.Until != nil && ev.CreatedAt > *f.Until {
		return false
	}
	return true
}

func containsString(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
