package app

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shoplo-hq/shoplo-go/pkg/shops"
)

// NewShopsCommand creates the shops command listing configured profiles.
func NewShopsCommand(globalOpts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shops",
		Short: "List shop profiles from the shops file",
		Example: `  # List profiles from the default shops file
  shoplo shops

  # List profiles from a specific file
  shoplo --shops-file ./shops.yaml shops`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShops(cmd, globalOpts)
		},
	}
}

func runShops(cmd *cobra.Command, opts *GlobalOptions) error {
	reg, err := shops.LoadRegistry(opts.ShopsFile)
	if err != nil {
		return err
	}

	profiles := reg.All()
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSHOP\tFORMAT\tCOLLECTIONS\tENABLED")
	for _, p := range profiles {
		format := p.ResponseFormat
		if format == "" {
			format = "json"
		}
		enabled := "yes"
		if !p.EnabledValue() {
			enabled = "no"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, p.Shop, format, strings.Join(p.Collections, ","), enabled)
	}
	return w.Flush()
}
