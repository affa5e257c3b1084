package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"projgen/internal/plan"
)

func newCheckCmd() *cobra.Command {
	var flagReport bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compile call sites and report diagnostics",
		Long: `Check compiles every call site of the manifest without writing any
file. It exits with status 2 when a call site fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := setup(cmd)
			if err != nil {
				return err
			}

			res, diags, err := s.compile(cmd.Context())
			if err != nil {
				return err
			}

			if flagReport && res != nil {
				fmt.Fprint(s.stdout, plan.FormatReport(plan.GenerateReport(res)))
			}

			return s.report(diags)
		},
	}

	cmd.Flags().BoolVar(&flagReport, "report", false, "print a per-call-site summary")

	return cmd
}
