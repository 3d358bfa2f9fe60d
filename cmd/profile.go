package main

import (
	"betblocker/internal/config"
	"betblocker/pkg/logger"
	"betblocker/pkg/mobileconfig"
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// profileCommand constructs the 'profile' subcommand that writes a generated,
// optionally signed configuration profile to a file or stdout.
func profileCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Generates a configuration profile for a filtering profile id",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			profileID, _ := cmd.Flags().GetString("profile-id")
			password, _ := cmd.Flags().GetString("password")
			out, _ := cmd.Flags().GetString("out")

			if profileID == "" {
				profileID = cfg.NextDNS.ProfileID
			}
			if password == "" {
				password = cfg.Profile.RemovalPassword
			}

			unsigned, err := newBuilder(cfg).Build(profileID, password)
			if err != nil {
				logger.Fatal(ctx, "could not build configuration profile", zap.Error(err))
			}
			doc := newSigner(cfg).Sign(ctx, unsigned)

			if out == "" {
				out = mobileconfig.Filename(profileID)
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(doc.Body)
			} else {
				err = os.WriteFile(out, doc.Body, 0o600)
			}
			if err != nil {
				logger.Fatal(ctx, "could not write configuration profile", zap.Error(err))
			}

			logger.Info(ctx, "configuration profile generated",
				zap.String("out", out),
				zap.Bool("signed", doc.Signed))
		},
	}

	cmd.Flags().StringP("profile-id", "p", "", "NextDNS profile id (defaults to NEXTDNS_PROFILE_ID)")
	cmd.Flags().String("password", "", "Removal password (defaults to REMOVAL_PASSWORD)")
	cmd.Flags().StringP("out", "o", "", "Output file, '-' for stdout (defaults to betblocker-<id>.mobileconfig)")

	return cmd
}
