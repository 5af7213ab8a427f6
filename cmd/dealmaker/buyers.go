package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bizmatch/dealmaker/internal/cli"
	"github.com/bizmatch/dealmaker/internal/narrative"
	"github.com/bizmatch/dealmaker/internal/normalize"
)

func buyersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buyers",
		Short: "Manage buyer profiles",
		Long:  `Import and list raw buyer profile records.`,
	}

	cmd.AddCommand(buyersImportCmd())
	cmd.AddCommand(buyersListCmd())

	return cmd
}

func buyersImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import buyer profiles from a JSON file",
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
				if err := store.SaveBuyer(ctx, id, raw); err != nil {
					return fmt.Errorf("failed to import buyer %s: %w", id, err)
				}
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d buyer(s)", len(records))))
			return nil
		},
	}
}

func buyersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored buyer profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.ListBuyers(ctx)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No buyers imported yet."))
				return nil
			}

			for _, record := range records {
				buyer := normalize.Buyer(record.Fields)
				fmt.Printf("%-12s capital %-14s target %s\n",
					record.ID,
					narrative.FormatMoney(buyer.AvailableCapital),
					narrative.FormatMoney(buyer.TargetPurchasePrice))
			}
			return nil
		},
	}
}
