package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/bizmatch/dealmaker/internal/cli"
	"github.com/bizmatch/dealmaker/internal/deal"
	"github.com/bizmatch/dealmaker/internal/llm"
	"github.com/bizmatch/dealmaker/internal/model"
	"github.com/bizmatch/dealmaker/internal/narrative"
)

func draftCmd() *cobra.Command {
	var (
		listingID   string
		buyerID     string
		listingFile string
		buyerFile   string
		save        bool
	)

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Draft a full proposal with a language model",
		Long: `Compute the financing structure, render the narrative brief, and send it
to the configured LLM provider to draft a full written proposal.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			policy := policyFromConfig()
			cfg := llmConfig()

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
			prompt, err := renderer.Render(dealCtx, strategy)
			if err != nil {
				return err
			}

			drafter, err := llm.NewDrafter(cfg, slog.Default())
			if err != nil {
				return err
			}
			defer drafter.Close()

			content, err := drafter.Draft(ctx, prompt)
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
					Narrative: prompt,
				}
				if err := store.SaveStrategy(ctx, record); err != nil {
					return err
				}
				if err := store.SaveDraft(ctx, &model.Draft{
					StrategyID: record.ID,
					Provider:   cfg.Provider,
					Model:      cfg.Model,
					Content:    content,
				}); err != nil {
					return err
				}
				fmt.Println(cli.FormatSuccess("Saved strategy " + record.ID + " with draft"))
			}

			fmt.Println(content)
			return nil
		},
	}

	cmd.Flags().StringVar(&listingID, "listing", "", "stored listing id")
	cmd.Flags().StringVar(&buyerID, "buyer", "", "stored buyer id")
	cmd.Flags().StringVar(&listingFile, "listing-file", "", "raw listing JSON file")
	cmd.Flags().StringVar(&buyerFile, "buyer-file", "", "raw buyer JSON file")
	cmd.Flags().BoolVar(&save, "save", false, "persist the strategy and draft")

	return cmd
}
