package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	root := &cobra.Command{
		Use:           "ottoweb",
		Short:         "Recipe extraction and guided voice cooking",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			if cmd.Annotations[skipConfig] != "" {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&ctx.configPath, "config", "c", "", "configuration file path")
	flags.BoolVarP(&ctx.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVarP(&ctx.quiet, "quiet", "q", false, "disable all logging")
	flags.StringVar(&ctx.logFile, "log-file", "", `log destination ("stderr" or a file path)`)

	root.AddCommand(newServeCommand(ctx))
	root.AddCommand(newCookCommand(ctx))
	root.AddCommand(newExtractCommand(ctx))
	root.AddCommand(newConfigCommand(ctx))
	return root
}
