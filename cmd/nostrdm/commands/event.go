package commands

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"nostrdm/internal/domain"
	"nostrdm/internal/event"
)

func eventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Work with raw signed events",
	}
	cmd.AddCommand(eventSendCmd())
	return cmd
}

// event send <relays-json>: publish a signed event from stdin to every
// relay in the set.
func eventSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <relays-json>",
		Short: "Publish a signed event (stdin) to a relay set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			relays, err := parseRelayArray(args[0])
			if err != nil {
				return err
			}
			raw, err := readStdinPipe()
			if err != nil {
				return errors.Wrap(err, "reading event from stdin")
			}
			ev, err := event.Parse([]byte(raw))
			if err != nil {
				return err
			}
			// Unsigned or tampered events never leave this process.
			if !event.Verify(ev) {
				return errors.Wrap(domain.ErrVerificationFailed, "refusing to publish")
			}

			ctx, cancel := appCtx.Context()
			defer cancel()
			report, err := appCtx.Pool.Send(ctx, []domain.Event{ev}, [][]string{relays}, domain.SendBroadcast)
			if err != nil {
				return err
			}
			for _, res := range report.Results {
				if !res.OK {
					logrus.WithField("relay", res.Relay).Errorf("delivery failed: %s", res.Error)
				}
			}
			if err := printJSON(report); err != nil {
				return err
			}
			return deliveryError(report)
		},
	}
}
