package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"mainprgm/internal/config"
	"mainprgm/internal/frontend"
	"mainprgm/internal/logger"
	"mainprgm/internal/report"
)

// errProblems signals that the input was processed and problems were
// already reported; Execute exits 1 without printing it.
var errProblems = errors.New("problems found")

type globalOptions struct {
	cfgFile string
	verbose bool
	format  string
	noColor bool
}

// app is the state shared by subcommands once the persistent flags are parsed.
type app struct {
	opts globalOptions
	cfg  *config.Config
	log  *slog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "mainprgm",
		Short: "Front end for MainPrgm programs",
		Long: `mainprgm lexes, parses and checks programs written in the MainPrgm
language and reports every problem it finds.

Commands:
  check    - full analysis of one or more files
  parse    - print the syntax tree
  tokens   - print the token stream
  symbols  - print the symbol table
  fmt      - print the program in canonical form`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.opts.cfgFile, "config", "", "config file, .toml or .yaml (default: $"+config.EnvConfigPath+" or ./mainprgm.toml)")
	pf.BoolVarP(&a.opts.verbose, "verbose", "v", false, "debug logging")
	pf.StringVarP(&a.opts.format, "format", "f", "", "output format: text, json or yaml")
	pf.BoolVar(&a.opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newCheckCmd(a),
		newParseCmd(a),
		newTokensCmd(a),
		newSymbolsCmd(a),
		newFmtCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line and returns the process exit code: 0 when
// every input was accepted, 1 when problems were reported and 2 for usage,
// configuration or I/O errors.
func Execute() int {
	root := NewRootCmd()
	root.SetOut(colorable.NewColorableStdout())
	root.SetErr(colorable.NewColorableStderr())

	err := root.Execute()
	code := exitCode(err)
	if code == 2 {
		printError(root.ErrOrStderr(), err)
	}
	return code
}

// exitCode maps the error returned by a command to the process status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errProblems):
		return 1
	default:
		return 2
	}
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
}

// setup loads the configuration, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	var err error
	if a.opts.cfgFile != "" {
		a.cfg, err = config.Load(a.opts.cfgFile)
	} else {
		a.cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	if a.opts.format != "" {
		a.cfg.Output.Format = a.opts.format
		if err := a.cfg.Validate(); err != nil {
			return err
		}
	}
	if a.opts.noColor || !isTerminal(cmd.OutOrStdout()) {
		a.cfg.Output.Color = false
	}

	lc := a.cfg.LoggerConfig()
	if a.opts.verbose {
		lc.Level = logger.LevelDebug
	}
	lc.Output = cmd.ErrOrStderr()
	a.log, err = logger.New(lc)
	if err != nil {
		return err
	}
	a.log.Debug("Configuration loaded", "config", a.opts.cfgFile, "format", a.cfg.Output.Format)
	return nil
}

func (a *app) writer(cmd *cobra.Command) *report.Writer {
	return report.NewWriter(cmd.OutOrStdout(), report.Options{
		Format: a.cfg.Output.Format,
		Color:  a.cfg.Output.Color,
	})
}

// compile runs the pipeline on path. When the program did not parse, the
// problems are reported and errProblems is returned.
func (a *app) compile(cmd *cobra.Command, path string) (*frontend.Result, error) {
	res, err := frontend.CompileFile(path, a.log)
	if res == nil {
		return nil, err
	}
	if res.Program == nil {
		f := report.FromOutcome(frontend.Outcome{Path: path, Result: res, Err: err}, false)
		if werr := a.writer(cmd).Write([]report.File{f}); werr != nil {
			return nil, werr
		}
		return nil, errProblems
	}
	return res, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
