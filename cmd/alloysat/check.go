package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	var scope, steps int

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Solve a module's designated check command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			cfg, err := loadConfig(file)
			if err != nil {
				os.Exit(exitUsage)
			}
			ov := scopeOverride{
				Scope:    scope,
				HasScope: cmd.Flags().Changed("scope"),
				Steps:    steps,
				HasSteps: cmd.Flags().Changed("steps"),
			}
			os.Exit(runFile(context.Background(), file, cfg, ov))
			return nil
		},
	}
	cmd.Flags().IntVar(&scope, "scope", 0, "Default scope for signatures without an explicit bound")
	cmd.Flags().IntVar(&steps, "steps", 0, "Trace length for temporal commands")
	return cmd
}
