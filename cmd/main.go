// Package main provides the CLI entrypoint for the BetBlocker service.
// It wires subcommands (serve, profile), loads configuration, and initializes logging.
package main

import (
	"betblocker/internal/blocklist"
	"betblocker/internal/config"
	"betblocker/pkg/dnsfilter/nextdns"
	"betblocker/pkg/logger"
	"betblocker/pkg/mobileconfig"
	"context"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newBlocklist creates the blocklist service backed by the NextDNS client.
func newBlocklist(cfg *config.Config) blocklist.Service {
	client := nextdns.New(&http.Client{}, nextdns.Options{
		BaseURL: cfg.NextDNS.BaseURL,
		APIKey:  cfg.NextDNS.APIKey,
		Timeout: cfg.NextDNS.Timeout,
	})

	return blocklist.New(client, blocklist.NewOptions(cfg))
}

func newBuilder(cfg *config.Config) *mobileconfig.Builder {
	return mobileconfig.NewBuilder(mobileconfig.Options{
		Organization:     cfg.Profile.Organization,
		IdentifierPrefix: cfg.Profile.IdentifierPrefix,
		DisplayName:      cfg.Profile.DisplayName,
		DNSHost:          cfg.NextDNS.DNSHost,
	})
}

func newSigner(cfg *config.Config) *mobileconfig.Signer {
	return mobileconfig.NewSigner(mobileconfig.SignerOptions{
		CertPath:  cfg.Signing.CertPath,
		KeyPath:   cfg.Signing.KeyPath,
		ChainPath: cfg.Signing.ChainPath,
		Command:   cfg.Signing.Command,
		Timeout:   cfg.Signing.Timeout,
	})
}

// main sets up the root Cobra command, loads configuration and logging, and
// registers subcommands before executing the CLI.
func main() {
	rootCmd := &cobra.Command{
		Use: "betblocker",
	}

	// there is no way to access flags before command execution in cobra.
	// configPath here is parsed using the standard flags package.
	// following line is just added to prevent errors when Cobra is parsing the flags.
	rootCmd.PersistentFlags().StringP("config", "c", "config.yml", "Config File Path")

	configPath := flag.String("c", "config.yml", "The config file path")
	flag.Parse()

	log.Println("loading config ...")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("could not load config file", err)
	}

	if err := logger.Setup(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatal("could not setup logger", err)
	}

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			_ = logger.Get(ctx).Sync()

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		serveCommand(cfg),
		profileCommand(cfg),
	)

	err = rootCmd.Execute()
	_ = logger.Get(ctx).Sync()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}
