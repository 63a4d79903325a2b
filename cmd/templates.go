package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TTMK7777/player-list-scraper/internal/template"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage attribute investigation templates",
}

var templatesListCategory string

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := template.NewManager(cfg.Templates.Dir)
		if err != nil {
			return err
		}
		for _, t := range mgr.List(templatesListCategory) {
			marker := " "
			if t.Builtin {
				marker = "*"
			}
			fmt.Printf("%s %-20s %-8s %s (%d属性)\n", marker, t.ID, t.Category, t.Label, len(t.Attributes))
		}
		return nil
	},
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := template.NewManager(cfg.Templates.Dir)
		if err != nil {
			return err
		}
		t, err := mgr.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n", t.Label, t.ID)
		fmt.Println("カテゴリ:", t.Category)
		if t.Description != "" {
			fmt.Println(t.Description)
		}
		if t.Context != "" {
			fmt.Println("判定基準:", t.Context)
		}
		fmt.Println("属性:")
		for _, a := range t.Attributes {
			fmt.Println("  -", a)
		}
		return nil
	},
}

var (
	templatesCreateLabel    string
	templatesCreateCategory string
	templatesCreateContext  string
	templatesCreateFile     string
	templatesCreateAttrs    []string
)

var templatesCreateCmd = &cobra.Command{
	Use:   "create <id>",
	Short: "Create or update a user template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := template.NewManager(cfg.Templates.Dir)
		if err != nil {
			return err
		}

		attributes := templatesCreateAttrs
		if templatesCreateFile != "" {
			data, err := os.ReadFile(templatesCreateFile)
			if err != nil {
				return fmt.Errorf("read attributes file: %w", err)
			}
			attributes = template.ImportAttributes(string(data), ",")
		}

		label := templatesCreateLabel
		if label == "" {
			label = strings.ReplaceAll(args[0], "_", " ")
		}
		path, err := mgr.Save(template.Template{
			ID:         args[0],
			Label:      label,
			Category:   templatesCreateCategory,
			Context:    templatesCreateContext,
			Attributes: attributes,
		})
		if err != nil {
			return err
		}
		fmt.Println("保存:", path)
		return nil
	},
}

var templatesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := template.NewManager(cfg.Templates.Dir)
		if err != nil {
			return err
		}
		if err := mgr.Delete(args[0]); err != nil {
			return err
		}
		fmt.Println("削除:", args[0])
		return nil
	},
}

func init() {
	templatesListCmd.Flags().StringVar(&templatesListCategory, "category", "", "filter by category")
	templatesCreateCmd.Flags().StringVar(&templatesCreateLabel, "label", "", "display name")
	templatesCreateCmd.Flags().StringVar(&templatesCreateCategory, "category", template.CategoryCustom, "template category")
	templatesCreateCmd.Flags().StringVar(&templatesCreateContext, "criteria", "", "judgment criteria shown to the model")
	templatesCreateCmd.Flags().StringVar(&templatesCreateFile, "from-file", "", "read attributes from a text file")
	templatesCreateCmd.Flags().StringSliceVar(&templatesCreateAttrs, "attributes", nil, "attributes (comma separated)")
	templatesCmd.AddCommand(templatesListCmd, templatesShowCmd, templatesCreateCmd, templatesDeleteCmd)
	rootCmd.AddCommand(templatesCmd)
}
