package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/at-ishikawa/inkcalc/internal/board"
	"github.com/at-ishikawa/inkcalc/internal/canvas"
	"github.com/at-ishikawa/inkcalc/internal/drawing"
	"github.com/at-ishikawa/inkcalc/internal/typeset"
)

var ErrRejected = errors.New("drawing was rejected")

// SolveCLI sends an existing image to the relay and prints the results
type SolveCLI struct {
	submitter  board.Submitter
	typesetter typeset.Typesetter
	stdout     io.Writer
	bold       *color.Color
	green      *color.Color
	red        *color.Color
}

func NewSolveCLI(submitter board.Submitter, typesetter typeset.Typesetter, stdout io.Writer) *SolveCLI {
	return &SolveCLI{
		submitter:  submitter,
		typesetter: typesetter,
		stdout:     stdout,
		bold:       color.New(color.Bold),
		green:      color.New(color.FgGreen),
		red:        color.New(color.FgRed),
	}
}

// Solve loads a PNG or JPEG file, flattens it onto white and submits it.
func (cli *SolveCLI) Solve(ctx context.Context, path string, variables drawing.VariableContext) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("os.Open(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	img, _, err := image.Decode(file)
	if err != nil {
		return fmt.Errorf("image.Decode(%s) > %w", path, err)
	}
	dataURL, err := canvas.EncodeDataURL(img)
	if err != nil {
		return fmt.Errorf("canvas.EncodeDataURL > %w", err)
	}

	if variables == nil {
		variables = drawing.VariableContext{}
	}
	response, err := cli.submitter.Submit(ctx, drawing.Request{
		Image:      dataURL,
		DictOfVars: variables,
	})
	if err != nil {
		_, _ = cli.red.Fprintln(cli.stdout, typeset.FormatEntry(cli.typesetter, drawing.ErrorEntry(board.TransportErrorMessage)))
		return fmt.Errorf("submitter.Submit > %w", err)
	}
	if !response.IsSuccess() {
		_, _ = cli.red.Fprintln(cli.stdout, typeset.FormatEntry(cli.typesetter, drawing.ErrorEntry(response.Message)))
		return fmt.Errorf("%s: %s: %w", response.Message, response.Error, ErrRejected)
	}

	cli.printResults(response.Data)
	return nil
}

func (cli *SolveCLI) printResults(entries []drawing.ResultEntry) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(cli.stdout, "No expressions found")
		return
	}
	for _, entry := range entries {
		line := typeset.FormatEntry(cli.typesetter, entry)
		if entry.Assign {
			_, _ = cli.green.Fprintf(cli.stdout, "%s  ", line)
			_, _ = cli.bold.Fprintln(cli.stdout, "(assigned)")
			continue
		}
		_, _ = fmt.Fprintln(cli.stdout, line)
	}
}

// ParseVariable reads a name=value pair. JSON values keep their type,
// anything else is kept as a string.
func ParseVariable(arg string) (string, any, error) {
	name, raw, ok := strings.Cut(arg, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("variable %q must be name=value", arg)
	}

	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil || decoder.More() {
		return name, raw, nil
	}
	return name, value, nil
}

// ParseVariables builds a variable context from name=value pairs
func ParseVariables(args []string) (drawing.VariableContext, error) {
	variables := drawing.VariableContext{}
	for _, arg := range args {
		name, value, err := ParseVariable(arg)
		if err != nil {
			return nil, err
		}
		variables[name] = value
	}
	return variables, nil
}
