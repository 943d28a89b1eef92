// Package app implements the shoplo command-line interface.
//
// Commands are organized with a root command and subcommands, each built by a
// NewXxxCommand constructor sharing GlobalOptions.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shoplo-hq/shoplo-go/pkg/shoplo"
	"github.com/shoplo-hq/shoplo-go/pkg/shops"
)

const (
	cliName        = "shoplo"
	cliDescription = "shoplo - Shoplo platform API client"
)

// GlobalOptions holds options common to all commands.
type GlobalOptions struct {
	ShopsFile string
	Profile   string
	Shop      string
	Username  string
	APIKey    string
	UserAgent string
	Format    string
	Secure    bool
}

// NewShoploCommand creates the root shoplo command with all subcommands.
func NewShoploCommand() *cobra.Command {
	opts := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:   cliName,
		Short: cliDescription,
		Long: `shoplo is a command-line client for the Shoplo e-commerce platform API.

Credentials come from flags, a named profile in the shops file, or the
SHOPLO_SHOP, SHOPLO_USERNAME and SHOPLO_API_KEY environment variables.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ShopsFile, "shops-file", envOr("SHOPLO_SHOPS_FILE", "./configs/shops.yaml"), "path to the shops registry file")
	cmd.PersistentFlags().StringVarP(&opts.Profile, "profile", "p", "", "shop profile id from the shops file")
	cmd.PersistentFlags().StringVar(&opts.Shop, "shop", os.Getenv("SHOPLO_SHOP"), "shop subdomain (env SHOPLO_SHOP)")
	cmd.PersistentFlags().StringVar(&opts.Username, "username", os.Getenv("SHOPLO_USERNAME"), "API username (env SHOPLO_USERNAME)")
	cmd.PersistentFlags().StringVar(&opts.APIKey, "api-key", os.Getenv("SHOPLO_API_KEY"), "API key (env SHOPLO_API_KEY)")
	cmd.PersistentFlags().StringVar(&opts.UserAgent, "user-agent", "", "User-Agent header override")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "", "response format: json or xml")
	cmd.PersistentFlags().BoolVar(&opts.Secure, "secure", false, "use https")

	cmd.AddCommand(
		NewCallCommand(opts),
		NewShopsCommand(opts),
		NewVersionCommand(),
	)

	return cmd
}

// getClient resolves a configured API client: a named profile when --profile
// is set, otherwise flag and environment credentials.
func getClient(opts *GlobalOptions) (*shoplo.Client, error) {
	if opts.Profile != "" {
		reg, err := shops.LoadRegistry(opts.ShopsFile)
		if err != nil {
			return nil, err
		}
		profile, ok := reg.ByID(opts.Profile)
		if !ok {
			return nil, fmt.Errorf("profile %q not found in %s", opts.Profile, opts.ShopsFile)
		}
		client, err := shops.ClientFor(profile)
		if err != nil {
			return nil, err
		}
		return applyFormat(client, opts.Format)
	}

	client, err := shoplo.New(shoplo.Config{
		Shop:      opts.Shop,
		Username:  opts.Username,
		APIKey:    opts.APIKey,
		UserAgent: opts.UserAgent,
		Secure:    opts.Secure,
	})
	if err != nil {
		return nil, err
	}
	return applyFormat(client, opts.Format)
}

func applyFormat(client *shoplo.Client, format string) (*shoplo.Client, error) {
	if format == "" {
		return client, nil
	}
	return client.SetResponseFormat(format)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
