// Package report renders front-end results for people and for tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"mainprgm/internal/frontend"
	"mainprgm/internal/semantic"
)

// Problem is one lexical error, syntax error or semantic diagnostic.
type Problem struct {
	Phase   string `json:"phase" yaml:"phase"`
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
	Line    int    `json:"line" yaml:"line"`
	Column  int    `json:"column" yaml:"column"`
}

// Symbol is one row of the symbol table.
type Symbol struct {
	Name    string `json:"name" yaml:"name"`
	Kind    string `json:"kind" yaml:"kind"`
	Type    string `json:"type" yaml:"type"`
	Value   string `json:"value,omitempty" yaml:"value,omitempty"`
	Mutable bool   `json:"mutable" yaml:"mutable"`
	Line    int    `json:"line" yaml:"line"`
	Column  int    `json:"column" yaml:"column"`
}

// File is the report for one source file.
type File struct {
	Path     string    `json:"path" yaml:"path"`
	RunID    string    `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Program  string    `json:"program,omitempty" yaml:"program,omitempty"`
	Accepted bool      `json:"accepted" yaml:"accepted"`
	Error    string    `json:"error,omitempty" yaml:"error,omitempty"`
	Problems []Problem `json:"problems" yaml:"problems"`
	Symbols  []Symbol  `json:"symbols,omitempty" yaml:"symbols,omitempty"`
}

// FromOutcome builds the report for one compiled file. A nil Result means
// the file could not be read; the error text is kept instead.
func FromOutcome(o frontend.Outcome, withSymbols bool) File {
	f := File{Path: o.Path, Problems: []Problem{}}
	res := o.Result
	if res == nil {
		if o.Err != nil {
			f.Error = o.Err.Error()
		}
		return f
	}

	f.RunID = res.RunID
	f.Accepted = res.Accepted()
	if res.Program != nil {
		f.Program = res.Program.Name
	}
	for _, e := range res.LexErrors {
		f.Problems = append(f.Problems, Problem{
			Phase:   "lex",
			Kind:    "LexError",
			Message: e.Message,
			Line:    e.Line,
			Column:  e.Column,
		})
	}
	if pe := res.SyntaxError; pe != nil {
		f.Problems = append(f.Problems, Problem{
			Phase:   "syntax",
			Kind:    "SyntaxError",
			Message: pe.Message,
			Line:    pe.Line,
			Column:  pe.Column,
		})
	}
	for _, d := range res.Diagnostics {
		f.Problems = append(f.Problems, Problem{
			Phase:   "semantic",
			Kind:    d.Kind.String(),
			Message: d.Message,
			Line:    d.Pos.Line,
			Column:  d.Pos.Column,
		})
	}
	if withSymbols {
		f.Symbols = Symbols(res.Symbols)
	}
	return f
}

// Symbols converts analyser symbols to table rows.
func Symbols(syms []*semantic.Symbol) []Symbol {
	rows := make([]Symbol, 0, len(syms))
	for _, s := range syms {
		row := Symbol{
			Name:    s.Name,
			Kind:    s.Kind.String(),
			Type:    s.Type.String(),
			Mutable: s.Mutable,
			Line:    s.Pos.Line,
			Column:  s.Pos.Column,
		}
		if s.Value != nil {
			row.Value = s.Value.String()
		}
		rows = append(rows, row)
	}
	return rows
}

// ---------------------------------------------------------------------------
// Writer
// ---------------------------------------------------------------------------

// Options selects the output format ("text", "json" or "yaml") and whether
// text output is colored.
type Options struct {
	Format string
	Color  bool
}

// Writer renders reports to an io.Writer.
type Writer struct {
	out  io.Writer
	opts Options

	location *color.Color
	kind     *color.Color
	ok       *color.Color
	faint    *color.Color
}

// NewWriter returns a Writer for out.
func NewWriter(out io.Writer, opts Options) *Writer {
	w := &Writer{
		out:      out,
		opts:     opts,
		location: color.New(color.Bold),
		kind:     color.New(color.FgRed, color.Bold),
		ok:       color.New(color.FgGreen),
		faint:    color.New(color.Faint),
	}
	for _, c := range []*color.Color{w.location, w.kind, w.ok, w.faint} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return w
}

// Structured reports whether the writer emits JSON or YAML.
func (w *Writer) Structured() bool {
	return w.opts.Format == "json" || w.opts.Format == "yaml"
}

// Write renders files in the configured format.
func (w *Writer) Write(files []File) error {
	switch w.opts.Format {
	case "json", "yaml":
		return w.Encode(files)
	case "text", "":
		for _, f := range files {
			if err := w.writeText(f); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown output format %q", w.opts.Format)
}

// Encode writes v as JSON or YAML. It fails for the text format.
func (w *Writer) Encode(v any) error {
	switch w.opts.Format {
	case "json":
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", w.opts.Format)
}

func (w *Writer) writeText(f File) error {
	if f.Error != "" {
		_, err := fmt.Fprintf(w.out, "%s: %s\n", w.location.Sprint(f.Path), f.Error)
		return err
	}
	for _, p := range f.Problems {
		loc := fmt.Sprintf("%s:%d:%d:", f.Path, p.Line, p.Column)
		if _, err := fmt.Fprintf(w.out, "%s %s: %s\n", w.location.Sprint(loc), w.kind.Sprint(p.Kind), p.Message); err != nil {
			return err
		}
	}
	if len(f.Symbols) > 0 {
		if err := w.WriteSymbols(f.Symbols); err != nil {
			return err
		}
	}

	var err error
	if f.Accepted {
		_, err = fmt.Fprintf(w.out, "%s: %s %s\n", f.Path, w.ok.Sprint("ok"), w.faint.Sprintf("(program %s)", f.Program))
	} else {
		_, err = fmt.Fprintf(w.out, "%s: %d problem(s)\n", f.Path, len(f.Problems))
	}
	return err
}

// WriteSymbols renders rows as a table with one line per symbol.
func (w *Writer) WriteSymbols(rows []Symbol) error {
	table := tablewriter.NewWriter(w.out)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Name", "Kind", "Type", "Value", "Mutable", "Line", "Column"})
	for _, r := range rows {
		value := r.Value
		if value == "" {
			value = "-"
		}
		table.Append([]string{
			r.Name,
			r.Kind,
			r.Type,
			value,
			strconv.FormatBool(r.Mutable),
			strconv.Itoa(r.Line),
			strconv.Itoa(r.Column),
		})
	}
	table.Render()
	return nil
}
