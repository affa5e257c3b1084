package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"projgen/internal/gen"
	"projgen/internal/output"
)

func newGenerateCmd() *cobra.Command {
	var flagOutput string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate projection types and functions",
		Long: `Generate compiles every call site of the manifest and writes the
projection file into the output directory. Call sites that fail are
reported and left out; the others are still generated.`,
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

			if res != nil && res.Output != nil {
				files, err := res.Output.Files()
				if err != nil {
					return fmt.Errorf("rendering output: %w", err)
				}

				paths, err := gen.WriteFiles(files, s.config.Generator.OutputDir)
				if err != nil {
					return err
				}

				for _, p := range paths {
					output.Info("wrote", "file", p)
				}

				output.Info("generated",
					"call_sites", res.Compiled(), "types", len(res.Output.Types), "functions", len(res.Output.Funcs))
			}

			return s.report(diags)
		},
	}

	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output directory (env: PROJGEN_OUTPUT)")

	return cmd
}
