package commands

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"nostrdm/internal/crypto"
	"nostrdm/internal/domain"
	"nostrdm/internal/store"
)

func dmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dm",
		Short: "Private direct messages (gift-wrapped)",
	}
	cmd.AddCommand(dmSendCmd(), dmFetchCmd(), dmSaveCmd(), dmHistoryCmd())
	return cmd
}

// dm send <receiver-pubkey> <message> <relays-json>: compose the dual
// wraps and deliver them, receiver copy to the given relays, self copy to
// --self-relays (or the same set).
func dmSendCmd() *cobra.Command {
	var selfRelaysJSON string
	var fileMessage bool
	cmd := &cobra.Command{
		Use:   "send <receiver-pubkey> <message> <relays-json>",
		Short: "Send a private message (private key on stdin)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			receiver, err := crypto.ParsePublicKey(args[0])
			if err != nil {
				return err
			}
			receiverRelays, err := parseRelayArray(args[2])
			if err != nil {
				return err
			}
			var selfRelays []string
			if selfRelaysJSON != "" {
				if selfRelays, err = parseRelayArray(selfRelaysJSON); err != nil {
					return err
				}
			}
			keyText, err := readStdinPipe()
			if err != nil {
				return errors.Wrap(err, "reading private key from stdin")
			}
			sender, err := crypto.ParsePrivateKey(strings.TrimSpace(keyText))
			if err != nil {
				return err
			}

			kind := domain.KindChatMessage
			if fileMessage {
				kind = domain.KindFileMessage
			}

			ctx, cancel := appCtx.Context()
			defer cancel()
			report, err := appCtx.Messages.SendDirect(ctx, sender, receiver, kind, args[1], receiverRelays, selfRelays)
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
	cmd.Flags().StringVar(&selfRelaysJSON, "self-relays", "", "JSON relay array for the self copy (defaults to the receiver set)")
	cmd.Flags().BoolVar(&fileMessage, "file", false, "send a file message (kind 15); the message is an opaque file reference")
	return cmd
}

// dm fetch <relays-json>: pull gift wraps addressed to the key on stdin,
// decrypt them and print the messages, optionally persisting with --save.
func dmFetchCmd() *cobra.Command {
	var since, until int64
	var saveDir string
	cmd := &cobra.Command{
		Use:   "fetch <relays-json>",
		Short: "Fetch and decrypt private messages (private key on stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			relays, err := parseRelayArray(args[0])
			if err != nil {
				return err
			}
			keyText, err := readStdinPipe()
			if err != nil {
				return errors.Wrap(err, "reading private key from stdin")
			}
			viewer, err := crypto.ParsePrivateKey(strings.TrimSpace(keyText))
			if err != nil {
				return err
			}

			var sincePtr, untilPtr *int64
			if cmd.Flags().Changed("since") {
				sincePtr = &since
			}
			if cmd.Flags().Changed("until") {
				untilPtr = &until
			}

			ctx, cancel := appCtx.Context()
			defer cancel()
			msgs, fetchErr := appCtx.Messages.FetchDirect(ctx, viewer, relays, sincePtr, untilPtr)
			if fetchErr != nil && !errors.Is(fetchErr, domain.ErrPartialFetch) {
				return fetchErr
			}
			if saveDir != "" {
				cs := store.NewConversationStore(saveDir)
				written, err := appCtx.Messages.SaveHistory(cs, viewer.PublicHex(), msgs)
				if err != nil {
					return err
				}
				logrus.Infof("saved %d new of %d fetched messages", written, len(msgs))
			}
			if err := printJSON(msgs); err != nil {
				return err
			}
			// A partial fetch still printed its results; exit code 2 tells
			// scripts the set was degraded.
			return fetchErr
		},
	}
	cmd.Flags().Int64Var(&since, "since", 0, "only wraps created at or after this unix time")
	cmd.Flags().Int64Var(&until, "until", 0, "only wraps created at or before this unix time")
	cmd.Flags().StringVar(&saveDir, "save", "", "also persist messages under this conversation store root")
	return cmd
}

// dm save <viewer-pubkey> <root-dir>: persist a message batch from stdin.
func dmSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <viewer-pubkey> <root-dir>",
		Short: "Persist a JSON message batch (stdin) into a conversation store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer, err := crypto.ParsePublicKey(args[0])
			if err != nil {
				return err
			}
			raw, err := readStdinPipe()
			if err != nil {
				return errors.Wrap(err, "reading messages from stdin")
			}
			var msgs []domain.Message
			if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
				return errors.Wrapf(domain.ErrMalformedInput, "parsing message batch: %v", err)
			}

			cs := store.NewConversationStore(args[1])
			written, saveErr := cs.Save(viewer.Hex(), msgs)
			if saveErr != nil && !errors.Is(saveErr, domain.ErrStorageConflict) {
				return saveErr
			}
			if err := printJSON(struct {
				Written int `json:"written"`
				Total   int `json:"total"`
			}{written, len(msgs)}); err != nil {
				return err
			}
			return saveErr
		},
	}
}

// dm history <peer-pubkey> <root-dir>: print one peer's stored history.
func dmHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <peer-pubkey> <root-dir>",
		Short: "Print the stored conversation with a peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			peer, err := crypto.ParsePublicKey(args[0])
			if err != nil {
				return err
			}
			cs := store.NewConversationStore(args[1])
			msgs, err := cs.List(peer.Hex())
			if err != nil {
				return err
			}
			return printJSON(msgs)
		},
	}
}
