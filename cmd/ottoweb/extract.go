package main

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottoweb/internal/domain"
	"github.com/hammamikhairi/ottoweb/internal/recipe"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <url|file>",
		Short: "Extract a recipe and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.newLogger("")
			if err != nil {
				return err
			}
			defer ctx.close()

			src, _ := newSource(cfg, log)
			r, err := loadTarget(cmd.Context(), src, args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(r)
		},
	}
}

// loadTarget loads a recipe from a URL or, for anything that is not
// http(s), a saved HTML file.
func loadTarget(ctx context.Context, src *recipe.WebSource, target string) (*domain.Recipe, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return src.Load(ctx, target)
	}
	return src.LoadFile(target)
}
