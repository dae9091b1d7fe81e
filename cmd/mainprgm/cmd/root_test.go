package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mainprgm/internal/config"
	"mainprgm/internal/report"
)

const (
	validFile = "../../../testdata/valid.prgm"
	errorFile = "../../../testdata/error_test.prgm"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(config.EnvConfigPath, "")
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "mainprgm "+Version+"\n", out)
}

func TestCheckValid(t *testing.T) {
	out, _, err := run(t, "check", validFile)
	require.NoError(t, err)
	assert.Equal(t, validFile+": ok (program Squares)\n", out)
}

func TestCheckReportsDiagnostics(t *testing.T) {
	out, _, err := run(t, "check", "--no-color", errorFile)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errProblems))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, errorFile+":9:3: UndefinedIdentifier: undefined identifier \"a\"", lines[0])
	assert.Equal(t, errorFile+": 7 problem(s)", lines[7])
}

func TestCheckManyFilesJSON(t *testing.T) {
	out, _, err := run(t, "check", "-f", "json", "-j", "2", errorFile, validFile)
	require.ErrorIs(t, err, errProblems)

	var files []report.File
	require.NoError(t, json.Unmarshal([]byte(out), &files))
	require.Len(t, files, 2)
	assert.Equal(t, errorFile, files[0].Path)
	assert.Len(t, files[0].Problems, 7)
	assert.True(t, files[1].Accepted)
	assert.Empty(t, files[1].Symbols)
}

func TestCheckSymbols(t *testing.T) {
	out, _, err := run(t, "check", "--symbols", validFile)
	require.NoError(t, err)
	assert.Contains(t, out, "HALF")
	assert.Contains(t, out, "[Int; 10]")
}

func TestCheckMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.prgm")
	out, _, err := run(t, "check", missing)
	require.Error(t, err)
	assert.False(t, errors.Is(err, errProblems))
	assert.Equal(t, 2, exitCode(err))
	assert.Contains(t, err.Error(), "1 of 1 file(s) could not be read")
	assert.Contains(t, out, missing+": read source:")
}

func TestCheckMissingFileAmongPrograms(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.prgm")
	out, _, err := run(t, "check", "--no-color", errorFile, missing, validFile)
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
	assert.Contains(t, out, errorFile+": 7 problem(s)")
	assert.Contains(t, out, validFile+": ok (program Squares)")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errProblems))
	assert.Equal(t, 1, exitCode(fmt.Errorf("wrapped: %w", errProblems)))
	assert.Equal(t, 2, exitCode(errors.New("config file not found")))
}

func TestCheckRequiresFile(t *testing.T) {
	_, _, err := run(t, "check")
	require.Error(t, err)
	assert.False(t, errors.Is(err, errProblems))
}

func TestParse(t *testing.T) {
	out, _, err := run(t, "parse", validFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Program Squares\n"), out)
	assert.Contains(t, out, "ForStmt i from 0 to N - 1 step 1")
}

func TestParseSyntaxError(t *testing.T) {
	path := writeTemp(t, "bad.prgm", "MainPrgm Bad;\nVar\nBeginPg\n{\n  x := 1\n}\nEndPg;\n")
	out, _, err := run(t, "parse", path)
	require.ErrorIs(t, err, errProblems)
	assert.Contains(t, out, ":6:1: SyntaxError: expected ';' after assignment")
}

func TestTokens(t *testing.T) {
	out, _, err := run(t, "tokens", errorFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "   1:1    MAINPRGM      MainPrgm", lines[0])
	assert.Contains(t, lines[len(lines)-1], "EOF")
}

func TestTokensLexErrors(t *testing.T) {
	path := writeTemp(t, "lex.prgm", "MainPrgm L; $")
	out, errOut, err := run(t, "tokens", path)
	require.ErrorIs(t, err, errProblems)
	assert.Contains(t, out, "IDENT")
	assert.Contains(t, errOut, ":1:13: LexError: unexpected character")
}

func TestSymbolsYAML(t *testing.T) {
	out, _, err := run(t, "symbols", "--format", "yaml", errorFile)
	require.NoError(t, err)
	assert.Contains(t, out, "name: MAX")
	assert.Contains(t, out, "value: \"100\"")
}

func TestFmt(t *testing.T) {
	out, _, err := run(t, "fmt", validFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "MainPrgm Squares;\nVar\nlet i, n, total: Int;\n"), out)
	assert.NotContains(t, out, "<!-")

	// Formatting is a fixed point.
	path := writeTemp(t, "squares.prgm", out)
	_, _, err = run(t, "fmt", "-w", path)
	require.NoError(t, err)
	rewritten, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, string(rewritten))
}

func TestBadFormatFlag(t *testing.T) {
	_, _, err := run(t, "check", "--format", "xml", validFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.format")
}

func TestConfigFile(t *testing.T) {
	cfg := writeTemp(t, "mainprgm.yaml", "output:\n  format: json\n  show_symbols: true\n")
	out, _, err := run(t, "--config", cfg, "check", validFile)
	require.NoError(t, err)

	var files []report.File
	require.NoError(t, json.Unmarshal([]byte(out), &files))
	require.Len(t, files, 1)
	assert.NotEmpty(t, files[0].Symbols)
}

func TestVerboseLogsToStderr(t *testing.T) {
	_, errOut, err := run(t, "-v", "check", validFile)
	require.NoError(t, err)
	assert.Contains(t, errOut, "phase=parse")
	assert.Contains(t, errOut, "run_id=")
}
