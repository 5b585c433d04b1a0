package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/qi-lang/qi/core"
	"github.com/qi-lang/qi/reader"
)

// Fmt reads input, parses it, and formats it in the chosen representation.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as native Qi syntax (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	AST    AST    `cmd:""                    help:"Format as a form tree."`
}

func readSource(source string) ([]byte, error) {
	var file *os.File

	if source == "-" {
		file = os.Stdin
	} else {
		var err error

		file, err = os.Open(source)
		if err != nil {
			return nil, err
		}
		defer file.Close()
	}

	return io.ReadAll(bufio.NewReader(file))
}

// Native formats input as native Qi syntax.
type Native struct {
	Indent int `default:"2" help:"Separate top-level forms with newlines when greater than zero, else with spaces; forms are not indented" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the native format command.
func (f *Native) Run(ctx context.Context) error {
	data, err := readSource(f.Source)
	if err != nil {
		return err
	}

	forms, err := reader.Parse(string(data))
	if err != nil {
		return wrapCommandErr("fmt native", err)
	}

	for i, form := range forms {
		if i > 0 {
			if f.Indent > 0 {
				fmt.Println()
			} else {
				fmt.Print(" ")
			}
		}

		fmt.Print(form.String())
	}

	fmt.Println()

	return nil
}

// JSON reads input, parses it, and outputs as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) error {
	data, err := readSource(j.Source)
	if err != nil {
		return err
	}

	forms, err := reader.Parse(string(data))
	if err != nil {
		return wrapCommandErr("fmt json", err)
	}

	native := make([]any, len(forms))
	for i, form := range forms {
		native[i] = toNative(form)
	}

	var jsonData []byte
	if j.Indent > 0 {
		jsonData, err = json.MarshalIndent(native, "", strings.Repeat(" ", j.Indent))
	} else {
		jsonData, err = json.Marshal(native)
	}

	if err != nil {
		return ErrJSONMarshal.With(slog.Int("indent", j.Indent)).Wrap(err)
	}

	fmt.Println(string(jsonData))

	return nil
}

// YAML reads input, parses it, and outputs as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) error {
	data, err := readSource(y.Source)
	if err != nil {
		return err
	}

	forms, err := reader.Parse(string(data))
	if err != nil {
		return wrapCommandErr("fmt yaml", err)
	}

	native := make([]any, len(forms))
	for i, form := range forms {
		native[i] = toNative(form)
	}

	var opts []yaml.EncodeOption
	if y.Indent > 0 {
		opts = append(opts, yaml.Indent(y.Indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, native, opts...)
	if err != nil {
		return ErrYAMLMarshal.With(slog.Int("indent", y.Indent)).Wrap(err)
	}

	fmt.Print(string(yamlData))

	return nil
}

// AST formats input as an indented form-tree representation.
type AST struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) error {
	data, err := readSource(a.Source)
	if err != nil {
		return err
	}

	forms, err := reader.Parse(string(data))
	if err != nil {
		return wrapCommandErr("fmt ast", err)
	}

	for _, form := range forms {
		printTree(os.Stdout, form, 0)
	}

	return nil
}

// printTree writes a recursively indented form-tree representation of v.
func printTree(w io.Writer, v core.Value, depth int) {
	indent := strings.Repeat("  ", depth)

	switch t := v.(type) {
	case *core.List:
		fmt.Fprintf(w, "%sList\n", indent)

		for _, item := range t.Items {
			printTree(w, item, depth+1)
		}
	case *core.Vector:
		fmt.Fprintf(w, "%sVector\n", indent)

		for _, item := range t.Items {
			printTree(w, item, depth+1)
		}
	default:
		fmt.Fprintf(w, "%s%s\n", indent, v.String())
	}
}

// toNative converts a parsed form into a plain Go value suitable for
// JSON/YAML marshaling: lists and vectors become slices, maps become
// map[string]any keyed by their printed representation, and atoms print
// through core.Value.String().
func toNative(v core.Value) any {
	switch t := v.(type) {
	case *core.List:
		out := make([]any, len(t.Items))
		for i, item := range t.Items {
			out[i] = toNative(item)
		}

		return out
	case *core.Vector:
		out := make([]any, len(t.Items))
		for i, item := range t.Items {
			out[i] = toNative(item)
		}

		return out
	case *core.Map:
		keys, vals := t.Keys(), t.Vals()
		out := make(map[string]any, len(keys))

		for i, k := range keys {
			out[k.String()] = toNative(vals[i])
		}

		return out
	case core.Int:
		return int64(t)
	case core.Float:
		return float64(t)
	case core.String:
		return string(t)
	case core.Bool:
		return bool(t)
	case core.Nil:
		return nil
	default:
		return v.String()
	}
}
