package commands

import (
	"github.com/spf13/cobra"

	"nostrdm/internal/crypto"
	"nostrdm/internal/domain"
)

func keyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Generate and re-encode keys",
	}
	cmd.AddCommand(keyGenerateCmd(), keyConvertCmd())
	return cmd
}

func keyGenerateCmd() *cobra.Command {
	var encoding string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a fresh keypair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := domain.EncodingHex
			if encoding == "bech32" {
				enc = domain.EncodingBech32
			}
			id, err := crypto.GenerateKeypair()
			if err != nil {
				return err
			}
			pub, err := crypto.EncodeKey(id.Pub, domain.KeyKindPublic, enc)
			if err != nil {
				return err
			}
			priv, err := crypto.EncodeKey(*id.Priv, domain.KeyKindPrivate, enc)
			if err != nil {
				return err
			}
			return printJSON(struct {
				Public  string `json:"public"`
				Private string `json:"private"`
			}{pub, priv})
		},
	}
	cmd.Flags().StringVar(&encoding, "encoding", "hex", "output encoding: hex or bech32")
	return cmd
}

func keyConvertCmd() *cobra.Command {
	var kindFlag string
	cmd := &cobra.Command{
		Use:   "convert <key>",
		Short: "Print a key in both encodings",
		Long: "Accepts hex or bech32. Bech32 input carries its own kind; for hex " +
			"input the kind comes from --kind (public by default) since a bare " +
			"hex scalar does not say which half of the pair it is.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, raw, err := crypto.ParseKey(args[0])
			if err != nil {
				return err
			}
			if len(args[0]) == 64 && kindFlag == "private" {
				kind = domain.KeyKindPrivate
			}
			hexText, err := crypto.EncodeKey(raw, kind, domain.EncodingHex)
			if err != nil {
				return err
			}
			bech32Text, err := crypto.EncodeKey(raw, kind, domain.EncodingBech32)
			if err != nil {
				return err
			}
			return printJSON(struct {
				Kind   string `json:"kind"`
				Hex    string `json:"hex"`
				Bech32 string `json:"bech32"`
			}{kind.String(), hexText, bech32Text})
		},
	}
	cmd.Flags().StringVar(&kindFlag, "kind", "public", "kind of a bare hex key: public or private")
	return cmd
}
