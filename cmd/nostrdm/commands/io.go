package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"nostrdm/internal/domain"
)

// readStdinPipe reads everything piped into stdin. An interactive stdin is
// an error: keys and events arrive through pipes, never typed.
func readStdinPipe() (string, error) {
	info, err := os.Stdin.Stat()
	if err != nil {
		return "", err
	}
	if info.Mode()&os.ModeCharDevice != 0 {
		return "", errors.Wrap(domain.ErrMalformedInput, "stdin is empty; pipe the input in")
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// parseRelayArray decodes a JSON array of relay URL strings.
func parseRelayArray(arg string) ([]string, error) {
	var relays []string
	if err := json.Unmarshal([]byte(arg), &relays); err != nil {
		return nil, errors.Wrapf(domain.ErrMalformedInput, "parsing relays array: %v", err)
	}
	if len(relays) == 0 {
		return nil, errors.Wrap(domain.ErrMalformedInput, "relays array is empty")
	}
	return relays, nil
}

// printJSON pretty-prints v on stdout.
func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// printEvent renders a fetched event for human eyes: local time instead of
// unix seconds, content re-parsed as JSON when it is JSON.
func printEvent(ev domain.Event) error {
	var content interface{} = ev.Content
	var parsed json.RawMessage
	if json.Unmarshal([]byte(ev.Content), &parsed) == nil && strings.TrimSpace(ev.Content) != "" {
		content = parsed
	}
	return printJSON(struct {
		Kind      int         `json:"kind"`
		CreatedAt string      `json:"created_at"`
		Content   interface{} `json:"content"`
		Tags      domain.Tags `json:"tags"`
	}{
		Kind:      ev.Kind,
		CreatedAt: time.Unix(ev.CreatedAt, 0).Local().Format("2006/01/02 15:04"),
		Content:   content,
		Tags:      ev.Tags,
	})
}

// Delivery outcome sentinels; main maps them onto exit codes.
var (
	errPartialDelivery   = errors.New("some destinations failed")
	errAllDeliveryFailed = errors.New("all destinations failed")
)

// deliveryError folds a send report into the three-way scripting contract:
// nil (all pairs succeeded), partial, or total failure.
func deliveryError(report domain.SendReport) error {
	switch {
	case report.AllOK():
		return nil
	case report.AllFailed():
		return errAllDeliveryFailed
	default:
		return errPartialDelivery
	}
}
