package commands

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"nostrdm/internal/crypto"
	"nostrdm/internal/domain"
	"nostrdm/internal/event"
)

func relayListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay-list",
		Short: "Relay-list events: general (kind 10002) and DM inbox (kind 10050)",
	}
	cmd.AddCommand(relayListEventCmd(), relayListFetchCmd())
	return cmd
}

func relayListKinds(arg string) ([]int, error) {
	switch arg {
	case "all":
		return []int{domain.KindRelayList, domain.KindInboxRelays}, nil
	case "standard":
		return []int{domain.KindRelayList}, nil
	case "inbox":
		return []int{domain.KindInboxRelays}, nil
	}
	return nil, errors.Wrapf(domain.ErrMalformedInput, "%q is not a relay list type", arg)
}

// relay-list event <standard|inbox> <relays-json>: sign a relay-list event
// with the private key piped on stdin and print it.
func relayListEventCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "event <standard|inbox> <relays-json>",
		Short: "Sign a relay-list event (private key on stdin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind int
			switch args[0] {
			case "standard":
				kind = domain.KindRelayList
			case "inbox":
				kind = domain.KindInboxRelays
			default:
				return errors.Wrapf(domain.ErrMalformedInput, "%q is not a relay list type", args[0])
			}
			relays, err := parseRelayArray(args[1])
			if err != nil {
				return err
			}
			keyText, err := readStdinPipe()
			if err != nil {
				return errors.Wrap(err, "reading private key from stdin")
			}
			author, err := crypto.ParsePrivateKey(strings.TrimSpace(keyText))
			if err != nil {
				return err
			}
			ev, err := event.BuildRelayList(author, kind, relays)
			if err != nil {
				return err
			}
			return printJSON(ev)
		},
	}
}

// relay-list fetch <all|standard|inbox> <pubkey> <relays-json>.
func relayListFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <all|standard|inbox> <pubkey> <relays-json>",
		Short: "Fetch relay lists published by a public key",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := relayListKinds(args[0])
			if err != nil {
				return err
			}
			pub, err := crypto.ParsePublicKey(args[1])
			if err != nil {
				return err
			}
			relays, err := parseRelayArray(args[2])
			if err != nil {
				return err
			}

			ctx, cancel := appCtx.Context()
			defer cancel()
			evs, fetchErr := appCtx.Pool.Fetch(ctx, domain.Filter{
				Authors: []string{pub.Hex()},
				Kinds:   kinds,
			}, relays)
			if fetchErr != nil && !errors.Is(fetchErr, domain.ErrPartialFetch) {
				return fetchErr
			}
			for _, ev := range evs {
				if err := printEvent(ev); err != nil {
					return err
				}
			}
			return fetchErr
		},
	}
}
