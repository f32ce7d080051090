package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kevinawalsh/alloysat/internal/dimacs"
	"github.com/kevinawalsh/alloysat/internal/sat"
)

func dimacsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dimacs <file.cnf>",
		Short: "Solve a CNF formula given directly in DIMACS form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitUsage)
			}
			defer f.Close()

			cnf, err := dimacs.Read(f)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitUsage)
			}

			solver := sat.NewSolver(cnf.NumVars, sat.DefaultOptions())
			for _, c := range cnf.Clauses {
				if !solver.AddClause(c) {
					break
				}
			}

			result := solver.Solve(context.Background())
			fmt.Println(result.Status)

			switch result.Status {
			case sat.Satisfiable:
				os.Exit(exitSAT)
			case sat.Unsatisfiable:
				os.Exit(exitUNSAT)
			default:
				os.Exit(exitUnknown)
			}
			return nil
		},
	}
}
