package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/venuehub/pkg/totp"
)

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Print a random base64 key for TOTP_ENCRYPTION_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := totp.GenerateEncodedEncryptionKey()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}
}
