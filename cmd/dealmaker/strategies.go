package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bizmatch/dealmaker/internal/cli"
)

func strategiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "Inspect saved deal strategies",
		Long:  `List saved strategies for a listing, or show the latest one for a pairing.`,
	}

	cmd.AddCommand(strategiesListCmd())
	cmd.AddCommand(strategiesLatestCmd())

	return cmd
}

func strategiesListCmd() *cobra.Command {
	var listingID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved strategies for a listing, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if listingID == "" {
				return fmt.Errorf("--listing is required")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.ListStrategies(ctx, listingID)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No strategies saved for this listing yet."))
				return nil
			}

			for _, record := range records {
				fmt.Printf("%-36s  buyer %-12s  %-15s  %s\n",
					record.ID, record.BuyerID, record.Strategy.Structure,
					record.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listingID, "listing", "", "stored listing id")

	return cmd
}

func strategiesLatestCmd() *cobra.Command {
	var (
		listingID string
		buyerID   string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the most recent strategy for a listing/buyer pair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if listingID == "" || buyerID == "" {
				return fmt.Errorf("--listing and --buyer are required")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			record, err := store.GetLatestStrategy(ctx, listingID, buyerID)
			if err != nil {
				return err
			}

			if asJSON {
				encoded, err := json.MarshalIndent(record.Strategy, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode strategy: %w", err)
				}
				fmt.Println(string(encoded))
				return nil
			}

			fmt.Println(record.Narrative)
			return nil
		},
	}

	cmd.Flags().StringVar(&listingID, "listing", "", "stored listing id")
	cmd.Flags().StringVar(&buyerID, "buyer", "", "stored buyer id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the strategy as JSON instead of the narrative")

	return cmd
}
