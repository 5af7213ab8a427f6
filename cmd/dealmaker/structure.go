package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/bizmatch/dealmaker/internal/cli"
	"github.com/bizmatch/dealmaker/internal/deal"
	"github.com/bizmatch/dealmaker/internal/model"
	"github.com/bizmatch/dealmaker/internal/narrative"
	"github.com/bizmatch/dealmaker/internal/normalize"
	"github.com/bizmatch/dealmaker/internal/service"
)

func structureCmd() *cobra.Command {
	var (
		listingID   string
		buyerID     string
		listingFile string
		buyerFile   string
		asJSON      bool
		save        bool
		all         bool
	)

	cmd := &cobra.Command{
		Use:   "structure",
		Short: "Compute a recommended financing structure",
		Long: `Pair a seller listing with a buyer profile and compute a recommended
financing structure: cash down, seller note, and an amortizing or
bridge/balloon schedule. Prints the narrative brief, or the raw strategy
with --json.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			policy := policyFromConfig()

			if all {
				if buyerID == "" {
					return fmt.Errorf("--all requires --buyer")
				}
				return structureAll(ctx, buyerID, policy)
			}

			dealCtx, ids, store, err := resolveDealContext(ctx, listingID, buyerID, listingFile, buyerFile)
			if err != nil {
				return err
			}
			if store != nil {
				defer func() { _ = store.Close() }()
			}

			strategy := deal.Compute(dealCtx, policy)

			renderer, err := narrative.NewRenderer(policy)
			if err != nil {
				return err
			}
			text, err := renderer.Render(dealCtx, strategy)
			if err != nil {
				return err
			}

			if save {
				if store == nil {
					return fmt.Errorf("--save requires stored records (--listing/--buyer), not files")
				}
				record := &model.StrategyRecord{
					ListingID: ids.listing,
					BuyerID:   ids.buyer,
					Strategy:  strategy,
					Narrative: text,
				}
				if err := store.SaveStrategy(ctx, record); err != nil {
					return err
				}
				fmt.Println(cli.FormatSuccess("Saved strategy " + record.ID))
			}

			if asJSON {
				encoded, err := json.MarshalIndent(strategy, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode strategy: %w", err)
				}
				fmt.Println(string(encoded))
				return nil
			}

			fmt.Println(text)
			return nil
		},
	}

	cmd.Flags().StringVar(&listingID, "listing", "", "stored listing id")
	cmd.Flags().StringVar(&buyerID, "buyer", "", "stored buyer id")
	cmd.Flags().StringVar(&listingFile, "listing-file", "", "raw listing JSON file")
	cmd.Flags().StringVar(&buyerFile, "buyer-file", "", "raw buyer JSON file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the strategy as JSON instead of the narrative")
	cmd.Flags().BoolVar(&save, "save", false, "persist the computed strategy")
	cmd.Flags().BoolVar(&all, "all", false, "compute and save a strategy for every stored listing")

	return cmd
}

type pairIDs struct {
	listing string
	buyer   string
}

// resolveDealContext assembles the seller/buyer pair from stored records or
// raw files. The returned storage handle is non-nil only when stored records
// were used; the caller owns closing it.
func resolveDealContext(ctx context.Context, listingID, buyerID, listingFile, buyerFile string) (model.DealContext, pairIDs, service.Storage, error) {
	var dealCtx model.DealContext
	var ids pairIDs
	var store service.Storage

	needStore := listingFile == "" || buyerFile == ""
	if needStore {
		s, err := initStorage(ctx)
		if err != nil {
			return dealCtx, ids, nil, err
		}
		store = s
	}

	switch {
	case listingFile != "":
		records, err := loadRawRecords(listingFile)
		if err != nil || len(records) == 0 {
			closeOnError(store)
			if err == nil {
				err = fmt.Errorf("no records in %s", listingFile)
			}
			return dealCtx, ids, nil, err
		}
		dealCtx.Seller = normalize.Seller(records[0])
		ids.listing = recordID(records[0], 0)
	case listingID != "":
		record, err := store.GetListing(ctx, listingID)
		if err != nil {
			closeOnError(store)
			return dealCtx, ids, nil, err
		}
		dealCtx.Seller = normalize.Seller(record.Fields)
		ids.listing = record.ID
	default:
		closeOnError(store)
		return dealCtx, ids, nil, fmt.Errorf("either --listing or --listing-file is required")
	}

	switch {
	case buyerFile != "":
		records, err := loadRawRecords(buyerFile)
		if err != nil || len(records) == 0 {
			closeOnError(store)
			if err == nil {
				err = fmt.Errorf("no records in %s", buyerFile)
			}
			return dealCtx, ids, nil, err
		}
		dealCtx.Buyer = normalize.Buyer(records[0])
		ids.buyer = recordID(records[0], 0)
	case buyerID != "":
		record, err := store.GetBuyer(ctx, buyerID)
		if err != nil {
			closeOnError(store)
			return dealCtx, ids, nil, err
		}
		dealCtx.Buyer = normalize.Buyer(record.Fields)
		ids.buyer = record.ID
	default:
		closeOnError(store)
		return dealCtx, ids, nil, fmt.Errorf("either --buyer or --buyer-file is required")
	}

	return dealCtx, ids, store, nil
}

func closeOnError(store service.Storage) {
	if store != nil {
		_ = store.Close()
	}
}

// structureAll computes and saves a strategy for every stored listing
// against one buyer.
func structureAll(ctx context.Context, buyerID string, policy deal.Policy) error {
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	buyerRecord, err := store.GetBuyer(ctx, buyerID)
	if err != nil {
		return err
	}
	buyer := normalize.Buyer(buyerRecord.Fields)

	listings, err := store.ListListings(ctx)
	if err != nil {
		return err
	}
	if len(listings) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No listings imported yet."))
		return nil
	}

	renderer, err := narrative.NewRenderer(policy)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(listings),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Structuring deals..."),
	)

	var saved int
	for _, record := range listings {
		if err := ctx.Err(); err != nil {
			return err
		}

		dealCtx := model.DealContext{
			Seller: normalize.Seller(record.Fields),
			Buyer:  buyer,
		}
		strategy := deal.Compute(dealCtx, policy)
		text, err := renderer.Render(dealCtx, strategy)
		if err != nil {
			return err
		}

		if err := store.SaveStrategy(ctx, &model.StrategyRecord{
			ListingID: record.ID,
			BuyerID:   buyerRecord.ID,
			Strategy:  strategy,
			Narrative: text,
		}); err != nil {
			return err
		}
		saved++
		_ = bar.Add(1)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Saved %d strategies for buyer %s", saved, buyerID)))
	return nil
}
