package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed sample categories, products and store knowledge",
		Long:  "Upserts the sample catalog by category name and SKU, then indexes store FAQs and product descriptions into the document store. Safe to run repeatedly.",
		RunE:  runSeed,
	}
	cmd.Flags().Bool("catalog-only", false, "Only write categories and products, skip indexing")

	RootCmd.AddCommand(cmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var out any
	if catalogOnly, _ := cmd.Flags().GetBool("catalog-only"); catalogOnly {
		out, err = a.svc.Seeder.SeedCatalog(ctx)
	} else {
		out, err = a.svc.Seeder.Run(ctx)
	}
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
