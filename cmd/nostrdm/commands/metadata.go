package commands

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"nostrdm/internal/crypto"
	"nostrdm/internal/domain"
	"nostrdm/internal/event"
)

func metadataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Kind-0 profile metadata events",
	}
	cmd.AddCommand(metadataEventCmd(), metadataFetchCmd())
	return cmd
}

// metadata event <metadata-json>: sign a kind-0 event with the private key
// piped on stdin and print it; publishing is a separate `event send`.
func metadataEventCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "event <metadata-json>",
		Short: "Sign a profile metadata event (private key on stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyText, err := readStdinPipe()
			if err != nil {
				return errors.Wrap(err, "reading private key from stdin")
			}
			author, err := crypto.ParsePrivateKey(strings.TrimSpace(keyText))
			if err != nil {
				return err
			}
			ev, err := event.BuildMetadata(author, args[0])
			if err != nil {
				return err
			}
			return printJSON(ev)
		},
	}
}

// metadata fetch <pubkey> <relays-json>: print the author's kind-0 events.
func metadataFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <pubkey> <relays-json>",
		Short: "Fetch profile metadata for a public key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := crypto.ParsePublicKey(args[0])
			if err != nil {
				return err
			}
			relays, err := parseRelayArray(args[1])
			if err != nil {
				return err
			}

			ctx, cancel := appCtx.Context()
			defer cancel()
			evs, fetchErr := appCtx.Pool.Fetch(ctx, domain.Filter{
				Authors: []string{pub.Hex()},
				Kinds:   []int{domain.KindMetadata},
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
