// Package frontend runs the lexer, parser and semantic analyser as one
// pipeline and collects everything each phase produced.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mainprgm/internal/ast"
	"mainprgm/internal/lexer"
	"mainprgm/internal/logger"
	"mainprgm/internal/parser"
	"mainprgm/internal/semantic"
)

// Errors returned by Compile, one per failing phase. Use errors.Is.
var (
	ErrLex      = errors.New("lexical errors")
	ErrSyntax   = errors.New("syntax error")
	ErrSemantic = errors.New("semantic errors")
)

// Result holds the output of every phase that ran. Fields of phases that
// did not run are left empty.
type Result struct {
	RunID       string
	Name        string
	Tokens      []lexer.Token
	LexErrors   []lexer.LexError
	Program     *ast.Program
	SyntaxError *parser.ParseError
	Diagnostics []semantic.Diagnostic
	Symbols     []*semantic.Symbol
	Duration    time.Duration
}

// Accepted reports whether the program passed every phase.
func (r *Result) Accepted() bool {
	return len(r.LexErrors) == 0 && r.SyntaxError == nil && r.Program != nil && len(r.Diagnostics) == 0
}

// Compile lexes, parses and analyses src. The Result is never nil. The
// error wraps ErrLex, ErrSyntax or ErrSemantic for the first phase that
// failed; lexical errors stop before parsing and a syntax error stops
// before analysis.
func Compile(name, src string, log *slog.Logger) (*Result, error) {
	if log == nil {
		log = logger.Discard()
	}
	start := time.Now()
	res := &Result{RunID: uuid.NewString(), Name: name}
	log = log.With("run_id", res.RunID, "file", name)
	defer func() { res.Duration = time.Since(start) }()

	logger.LogPhase(log, "lex")
	res.Tokens, res.LexErrors = lexer.Lex(src)
	logger.LogPhaseComplete(log, "lex", "tokens", len(res.Tokens), "errors", len(res.LexErrors))
	if n := len(res.LexErrors); n > 0 {
		log.Info("Lexing failed", "errors", n)
		return res, fmt.Errorf("%s: %w (%d)", name, ErrLex, n)
	}

	logger.LogPhase(log, "parse")
	prog, err := parser.Parse(res.Tokens)
	if err != nil {
		errors.As(err, &res.SyntaxError)
		log.Info("Parsing failed", "error", err)
		return res, fmt.Errorf("%s: %w: %w", name, ErrSyntax, err)
	}
	res.Program = prog
	logger.LogPhaseComplete(log, "parse", "decls", len(prog.Decls), "stmts", len(prog.Stmts))

	logger.LogPhase(log, "analyze")
	res.Diagnostics, res.Symbols = semantic.AnalyzeWithSymbols(prog)
	logger.LogPhaseComplete(log, "analyze", "diagnostics", len(res.Diagnostics), "symbols", len(res.Symbols))
	if n := len(res.Diagnostics); n > 0 {
		log.Info("Analysis reported diagnostics", "count", n)
		return res, fmt.Errorf("%s: %w (%d)", name, ErrSemantic, n)
	}

	log.Info("Program accepted", "program", prog.Name)
	return res, nil
}

// CompileFile reads path and compiles its contents. A read failure returns
// a nil Result.
func CompileFile(path string, log *slog.Logger) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return Compile(path, string(content), log)
}

// Outcome pairs one input file with its compile result.
type Outcome struct {
	Path   string
	Result *Result
	Err    error
}

// CompileFiles compiles every path with at most workers files in flight
// (runtime.NumCPU() when workers <= 0). Outcomes keep the order of paths.
// Each file gets its own analyser, so runs share no state. Compile and read
// failures are recorded per file; only cancellation of ctx aborts the batch.
func CompileFiles(ctx context.Context, paths []string, log *slog.Logger, workers int) ([]Outcome, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	outcomes := make([]Outcome, len(paths))
	sem := make(chan struct{}, workers)

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { <-sem }()

			res, err := CompileFile(path, log)
			outcomes[i] = Outcome{Path: path, Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
