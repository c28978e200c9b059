package main

import (
	"errors"
	"time"

	"renderbox/pkg/token"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// 開發用，正式環境的 token 由外部身分服務簽發
func newTokenCmd(opts *cliOptions) *cobra.Command {
	var secret, member, role string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed development token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("--secret or JWT_SECRET is required")
			}
			token.Configure(secret, ttl)
			if member == "" {
				member = uuid.NewString()
			}
			t, err := token.GenerateJWT(member, role, token.Issuer)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"token": t, "member": member})
			}
			return writePlain(cmd.OutOrStdout(), "%s", t)
		},
	}

	cmd.Flags().StringVar(&secret, "secret", envOr("JWT_SECRET", ""), "HMAC signing secret")
	cmd.Flags().StringVar(&member, "member", "", "member id, random when empty")
	cmd.Flags().StringVar(&role, "role", string(token.RoleUser), "role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
