package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"projgen/internal/analyze"
	"projgen/internal/diagnostic"
	"projgen/internal/mapping"
	"projgen/internal/output"
	"projgen/internal/plan"
)

var (
	// Global flags
	flagConfig   string
	flagManifest string
	flagJobs     int
	flagVerbose  bool
	flagQuiet    bool
	flagNoColor  bool
	flagDump     bool
)

// rootCmd is the base command for the projgen CLI.
var rootCmd = &cobra.Command{
	Use:   "projgen",
	Short: "Declarative projection compiler",
	Long: `projgen compiles selection expressions into Go record types and
projection functions.

It provides commands to:
  - Generate the projection file for a manifest of call sites
  - Check call sites and report diagnostics without writing files`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to config file (env: PROJGEN_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&flagManifest, "manifest", "m", "projgen.yaml", "path to the call-site manifest (env: PROJGEN_MANIFEST)")
	rootCmd.PersistentFlags().IntVarP(&flagJobs, "jobs", "j", 0, "call sites compiled concurrently, 0 for GOMAXPROCS (env: PROJGEN_JOBS)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "increase output verbosity")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "only report warnings and errors")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable coloured diagnostics")
	rootCmd.PersistentFlags().BoolVar(&flagDump, "dump", false, "log built structures at debug level")

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newCheckCmd())
}

// session is one loaded manifest with its settings and type graph.
type session struct {
	settings *settings
	manifest *mapping.Manifest
	graph    *analyze.TypeGraph
	config   plan.Config
	stdout   io.Writer
}

// setup loads settings, configures output and loads the manifest and the
// packages it names.
func setup(cmd *cobra.Command) (*session, error) {
	configFile := flagConfig
	if configFile == "" {
		configFile = envConfigFile()
	}

	s, err := loadSettings(cmd, configFile)
	if err != nil {
		return nil, err
	}

	output.SetupLogging(output.LogConfig{Verbose: s.Verbose, Quiet: s.Quiet, Writer: cmd.ErrOrStderr()})
	if s.NoColor {
		color.NoColor = true
	}

	m, err := mapping.LoadFile(s.Manifest)
	if err != nil {
		return nil, err
	}

	output.Debug("manifest loaded", "path", s.Manifest, "call_sites", len(m.CallSites), "packages", len(m.Packages))

	graph, err := analyze.NewAnalyzer().LoadPackages(m.Packages...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	cfg := plan.ConfigFromManifest(m, plan.DefaultConfig())
	cfg.Jobs = s.Jobs
	cfg.Dump = s.Dump

	if s.Output != "" {
		cfg.Generator.OutputDir = s.Output
	}

	return &session{settings: s, manifest: m, graph: graph, config: cfg, stdout: cmd.OutOrStdout()}, nil
}

// compile validates the manifest and compiles its call sites. Manifest
// errors stop before compilation.
func (s *session) compile(ctx context.Context) (*plan.Result, diagnostic.Diagnostics, error) {
	diags := mapping.Validate(s.manifest, s.graph)
	if diags.HasErrors() {
		diags.Sort()
		return nil, diags, nil
	}

	sites, siteDiags := plan.SitesFromManifest(s.manifest, s.graph)
	diags.Merge(siteDiags)

	res, err := plan.NewCompiler(s.graph, s.config).CompileAll(ctx, sites)
	if err != nil {
		return res, diags, err
	}

	diags.Merge(res.Diagnostics)
	diags.Sort()

	return res, diags, nil
}

// report prints diagnostics and turns errors into an exit code.
func (s *session) report(diags diagnostic.Diagnostics) error {
	output.PrintDiagnostics(s.stdout, diags)

	if diags.Len() > 0 {
		output.Info(output.Summary(diags))
	}

	if diags.HasErrors() {
		return &exitError{code: exitDiagnostics, err: diags.Error(), printed: true}
	}

	return nil
}

// envConfigFile returns the config file named by the environment.
func envConfigFile() string {
	return os.Getenv(envPrefix + "_CONFIG")
}
