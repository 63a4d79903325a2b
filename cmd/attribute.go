package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TTMK7777/player-list-scraper/internal/export"
	"github.com/TTMK7777/player-list-scraper/internal/investigate"
	"github.com/TTMK7777/player-list-scraper/internal/template"
)

var (
	attrIndustry   string
	attrTemplateID string
	attrList       []string
	attrCriteria   string
	attrBatchSize  int
	attrOut        string
	attrYes        bool
)

var attributeCmd = &cobra.Command{
	Use:   "attribute <players.xlsx>",
	Short: "Build a player-by-attribute matrix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("attribute"); err != nil {
			return err
		}

		attributes := attrList
		criteria := attrCriteria
		if attrTemplateID != "" {
			mgr, err := template.NewManager(cfg.Templates.Dir)
			if err != nil {
				return err
			}
			tpl, err := mgr.Get(attrTemplateID)
			if err != nil {
				return err
			}
			attributes = tpl.Attributes
			if criteria == "" {
				criteria = tpl.Context
			}
			if attrBatchSize <= 0 {
				attrBatchSize = tpl.BatchSize
			}
		}
		if len(attributes) == 0 {
			return fmt.Errorf("no attributes: pass --template or --attributes")
		}

		players, err := loadPlayers(args[0], attrIndustry)
		if err != nil {
			return err
		}

		client, err := initLLM()
		if err != nil {
			return err
		}
		investigator := investigate.NewAttributeInvestigator(client, cfg.LLM.Model)

		estimate := investigate.EstimateCost(len(players), len(attributes), attrBatchSize)
		fmt.Printf("プレイヤー%d件 × 属性%d件 → %dバッチ, 概算 $%.2f\n",
			len(players), len(attributes), estimate.BatchCount, estimate.EstimatedCost)
		if !attrYes && !confirm("実行しますか?") {
			return nil
		}

		results := investigator.InvestigateBatch(ctx, investigate.AttributeBatchRequest{
			Players:    players,
			Attributes: attributes,
			Industry:   attrIndustry,
			Context:    criteria,
			BatchSize:  attrBatchSize,
			Delay:      secs(cfg.Batch.DelaySecs),
			OnProgress: printProgress,
		})

		path, err := outputPath(attrOut, "attributes")
		if err != nil {
			return err
		}
		if err := export.WriteAttributeReport(results, attributes, path); err != nil {
			return err
		}
		fmt.Println("出力:", path)
		return nil
	},
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	var answer string
	if _, err := fmt.Fscanln(os.Stdin, &answer); err != nil {
		return false
	}
	return answer == "y" || answer == "Y" || answer == "yes"
}

func init() {
	attributeCmd.Flags().StringVar(&attrIndustry, "industry", "", "industry label for prompts")
	attributeCmd.Flags().StringVar(&attrTemplateID, "template", "", "investigation template id")
	attributeCmd.Flags().StringSliceVar(&attrList, "attributes", nil, "attributes to check (comma separated)")
	attributeCmd.Flags().StringVar(&attrCriteria, "criteria", "", "judgment criteria shown to the model")
	attributeCmd.Flags().IntVar(&attrBatchSize, "batch-size", 0, "players per model call (0 = auto)")
	attributeCmd.Flags().StringVarP(&attrOut, "out", "o", "", "output xlsx path")
	attributeCmd.Flags().BoolVarP(&attrYes, "yes", "y", false, "skip the cost confirmation")
	rootCmd.AddCommand(attributeCmd)
}
