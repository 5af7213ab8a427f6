package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bizmatch/dealmaker/internal/cli"
	"github.com/bizmatch/dealmaker/internal/narrative"
	"github.com/bizmatch/dealmaker/internal/normalize"
)

func listingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listings",
		Short: "Manage seller listings",
		Long:  `Import, list, and inspect raw seller listing records.`,
	}

	cmd.AddCommand(listingsImportCmd())
	cmd.AddCommand(listingsListCmd())
	cmd.AddCommand(listingsShowCmd())

	return cmd
}

func listingsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import seller listings from a JSON file",
		Long:  `Import one raw seller record, or an array of them, from a JSON file. Records are stored as-is and normalized on read.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := loadRawRecords(args[0])
			if err != nil {
				return err
			}

			for i, raw := range records {
				id := recordID(raw, i)
				if err := store.SaveListing(ctx, id, raw); err != nil {
					return fmt.Errorf("failed to import listing %s: %w", id, err)
				}
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d listing(s)", len(records))))
			return nil
		},
	}
}

func listingsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored seller listings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.ListListings(ctx)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No listings imported yet."))
				return nil
			}

			for _, record := range records {
				listing := normalize.Seller(record.Fields)
				line := fmt.Sprintf("%-12s %-30s %s",
					record.ID, listing.Title, narrative.FormatMoney(listing.AskingPrice))
				if missing := normalize.Validate(listing); len(missing) > 0 {
					line += "  " + cli.FormatWarning("missing: "+strings.Join(missing, ", "))
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func listingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a seller listing in its normalized form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			record, err := store.GetListing(ctx, args[0])
			if err != nil {
				return err
			}

			listing := normalize.Seller(record.Fields)
			slog.Debug("normalized listing", "id", record.ID)

			content := fmt.Sprintf(
				"Industry: %s\nLocation: %s\nAsking price: %s\nSDE: %s\nAnnual revenue: %s\nSeller financing: %s",
				orDash(listing.Industry),
				orDash(listing.Location),
				narrative.FormatMoney(listing.AskingPrice),
				narrative.FormatMoney(listing.SDE),
				narrative.FormatMoney(listing.AnnualRevenue),
				orDash(string(listing.SellerFinancing.Considered)),
			)
			fmt.Println(cli.RenderBox(listing.Title, content))
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
