package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"nostrdm/internal/domain"
	"nostrdm/internal/event"
)

type memoryStore struct {
	mu     sync.RWMutex
	events []domain.Event
	byID   map[string]struct{}
}

func newMemoryStore() *memoryStore {
	return &memoryStore{byID: make(map[string]struct{})}
}

func (ms *memoryStore) add(ev domain.Event) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, dup := ms.byID[ev.ID]; dup {
		return false
	}
	ms.byID[ev.ID] = struct{}{}
	ms.events = append(ms.events, ev)
	return true
}

func (ms *memoryStore) matching(f domain.Filter) []domain.Event {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	var out []domain.Event
	for _, ev := range ms.events {
		if f.Matches(ev) {
			out = append(out, ev)
		}
	}
	return out
}

func main() {
	addr := flag.String("addr", ":7447", "listen address")
	flag.Parse()

	ms := newMemoryStore()
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			var frame []json.RawMessage
			if err := ws.ReadJSON(&frame); err != nil {
				return
			}
			if len(frame) == 0 {
				continue
			}
			var label string
			if json.Unmarshal(frame[0], &label) != nil {
				continue
			}
			switch label {
			case "EVENT":
				if len(frame) < 2 {
					continue
				}
				var ev domain.Event
				if err := json.Unmarshal(frame[1], &ev); err != nil {
					_ = ws.WriteJSON([]interface{}{"NOTICE", "invalid: undecodable event"})
					continue
				}
				if !event.Verify(ev) {
					_ = ws.WriteJSON([]interface{}{"OK", ev.ID, false, "invalid: bad signature"})
					continue
				}
				if ms.add(ev) {
					logrus.WithFields(logrus.Fields{"event": ev.ID, "kind": ev.Kind}).Info("stored")
				}
				_ = ws.WriteJSON([]interface{}{"OK", ev.ID, true, ""})
			case "REQ":
				if len(frame) < 3 {
					continue
				}
				var subID string
				var filter domain.Filter
				if json.Unmarshal(frame[1], &subID) != nil || json.Unmarshal(frame[2], &filter) != nil {
					continue
				}
				for _, ev := range ms.matching(filter) {
					_ = ws.WriteJSON([]interface{}{"EVENT", subID, ev})
				}
				_ = ws.WriteJSON([]interface{}{"EOSE", subID})
			case "CLOSE":
				// Fetch-and-done subscriptions; nothing to tear down.
			}
		}
	})

	logrus.Infof("relayd listening on %s", *addr)
	logrus.Fatal(http.ListenAndServe(*addr, nil))
}
