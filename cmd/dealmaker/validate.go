package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bizmatch/dealmaker/internal/cli"
	"github.com/bizmatch/dealmaker/internal/model"
	"github.com/bizmatch/dealmaker/internal/normalize"
)

func validateCmd() *cobra.Command {
	var listingID string
	var listingFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a seller listing for missing recommended fields",
		Long: `Normalize a seller listing and report which recommended fields are
missing. Validation is advisory: a listing with gaps can still be structured,
but the resulting strategy will carry unknown terms.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var listing model.SellerListing
			switch {
			case listingFile != "":
				records, err := loadRawRecords(listingFile)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					return fmt.Errorf("no records in %s", listingFile)
				}
				listing = normalize.Seller(records[0])
			case listingID != "":
				store, err := initStorage(ctx)
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()

				record, err := store.GetListing(ctx, listingID)
				if err != nil {
					return err
				}
				listing = normalize.Seller(record.Fields)
			default:
				return fmt.Errorf("either --listing or --file is required")
			}

			missing := normalize.Validate(listing)
			if len(missing) == 0 {
				fmt.Println(cli.FormatSuccess("All recommended fields are present."))
				return nil
			}

			fmt.Println(cli.FormatWarning(fmt.Sprintf("%d recommended field(s) missing:", len(missing))))
			for _, field := range missing {
				fmt.Println("  - " + field)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listingID, "listing", "", "stored listing id")
	cmd.Flags().StringVar(&listingFile, "file", "", "raw listing JSON file")

	return cmd
}
