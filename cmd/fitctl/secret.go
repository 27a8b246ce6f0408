package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2beens/fitlog/pkg"
)

type secretOutput struct {
	Secret string `json:"secret"`
	Hash   string `json:"hash"`
}

// newSecretCmd prints an API secret with its bcrypt hash, the hash goes to
// FITLOG_API_SECRET_HASH on the server.
func newSecretCmd(opts *rootOptions) *cobra.Command {
	var (
		value  string
		length int
	)

	secretCmd := &cobra.Command{
		Use:   "secret",
		Short: "Generate an API secret and the hash the server checks it against",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := value
			if secret == "" {
				if length <= 0 {
					return fmt.Errorf("length must be positive, got %d", length)
				}
				generated, err := pkg.GenerateRandomString(length)
				if err != nil {
					return fmt.Errorf("generate secret: %w", err)
				}
				secret = generated
			}

			hash, err := pkg.HashPassword(secret)
			if err != nil {
				return fmt.Errorf("hash secret: %w", err)
			}
			return printOutput(cmd.OutOrStdout(), opts.output, secretOutput{
				Secret: secret,
				Hash:   hash,
			})
		},
	}
	secretCmd.Flags().StringVar(&value, "value", "", "hash this secret instead of generating one")
	secretCmd.Flags().IntVar(&length, "length", 24, "random bytes in a generated secret")

	return secretCmd
}
