// Package board holds the state of the drawing screen: the canvas, the palette
// selection, the variable context and the results of the last submission.
package board

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/at-ishikawa/inkcalc/internal/canvas"
	"github.com/at-ishikawa/inkcalc/internal/drawing"
)

// TransportErrorMessage is shown when the relay could not be reached
const TransportErrorMessage = "Failed to process equation"

var (
	ErrBusy         = errors.New("a submission is already in progress")
	ErrUnknownColor = errors.New("color is not in the palette")
)

type Color struct {
	Name string
	Hex  string
	RGBA color.RGBA
}

var Palette = []Color{
	{Name: "black", Hex: "#000000", RGBA: color.RGBA{A: 0xff}},
	{Name: "red", Hex: "#FF0000", RGBA: color.RGBA{R: 0xff, A: 0xff}},
	{Name: "blue", Hex: "#0000FF", RGBA: color.RGBA{B: 0xff, A: 0xff}},
	{Name: "green", Hex: "#008000", RGBA: color.RGBA{G: 0x80, A: 0xff}},
	{Name: "purple", Hex: "#800080", RGBA: color.RGBA{R: 0x80, B: 0x80, A: 0xff}},
	{Name: "orange", Hex: "#FFA500", RGBA: color.RGBA{R: 0xff, G: 0xa5, A: 0xff}},
}

type Board struct {
	canvas    *canvas.Canvas
	submitter Submitter

	mu         sync.Mutex
	color      Color
	results    []drawing.ResultEntry
	processing bool
	fullscreen bool
	variables  drawing.VariableContext
}

func New(surface *canvas.Canvas, submitter Submitter) *Board {
	b := &Board{
		canvas:    surface,
		submitter: submitter,
		color:     Palette[0],
		variables: drawing.VariableContext{},
	}
	surface.SetColor(b.color.RGBA)
	return b
}

func (b *Board) Canvas() *canvas.Canvas {
	return b.canvas
}

// Clear whitens the canvas and discards the displayed results
func (b *Board) Clear() {
	b.canvas.Clear()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.results = nil
}

// SetColor selects a palette color by hex code or name, ignoring case.
func (b *Board) SetColor(code string) error {
	index := slices.IndexFunc(Palette, func(c Color) bool {
		return strings.EqualFold(c.Hex, code) || strings.EqualFold(c.Name, code)
	})
	if index < 0 {
		return fmt.Errorf("%q: %w", code, ErrUnknownColor)
	}
	return b.SelectColor(index)
}

// SelectColor selects the palette entry at index
func (b *Board) SelectColor(index int) error {
	if index < 0 || index >= len(Palette) {
		return fmt.Errorf("palette index %d: %w", index, ErrUnknownColor)
	}

	b.mu.Lock()
	b.color = Palette[index]
	b.mu.Unlock()

	b.canvas.SetColor(Palette[index].RGBA)
	return nil
}

func (b *Board) Color() Color {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.color
}

func (b *Board) SetVariable(name string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.variables[name] = value
}

func (b *Board) Variables() drawing.VariableContext {
	b.mu.Lock()
	defer b.mu.Unlock()
	return maps.Clone(b.variables)
}

// ToggleFullscreen flips the display mode and returns the new value
func (b *Board) ToggleFullscreen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fullscreen = !b.fullscreen
	return b.fullscreen
}

func (b *Board) Fullscreen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fullscreen
}

func (b *Board) Processing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.processing
}

func (b *Board) Results() []drawing.ResultEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.results)
}

// Submit exports the canvas and sends it with the current variables.
// Only one submission runs at a time; a second one fails with ErrBusy.
//
// Whatever happens, the results afterwards describe the outcome: the relay's
// entries on success, or a single error entry. Assignments in a successful
// result are added to the variable context for the next submission.
// The returned error is set only when no envelope was received.
func (b *Board) Submit(ctx context.Context) error {
	b.mu.Lock()
	if b.processing {
		b.mu.Unlock()
		return ErrBusy
	}
	b.processing = true
	variables := maps.Clone(b.variables)
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.processing = false
		b.mu.Unlock()
	}()

	image, err := b.canvas.Export()
	if err != nil {
		b.setResults(drawing.ErrorEntry(TransportErrorMessage))
		return fmt.Errorf("canvas.Export > %w", err)
	}

	response, err := b.submitter.Submit(ctx, drawing.Request{
		Image:      image,
		DictOfVars: variables,
	})
	if err != nil {
		slog.Default().Error("failed to submit the drawing", "error", err)
		b.setResults(drawing.ErrorEntry(TransportErrorMessage))
		return fmt.Errorf("submitter.Submit > %w", err)
	}
	if !response.IsSuccess() {
		slog.Default().Warn("the drawing was rejected",
			"message", response.Message,
			"error", response.Error)
		b.setResults(drawing.ErrorEntry(response.Message))
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.results = slices.Clone(response.Data)
	for _, entry := range response.Data {
		if entry.Assign {
			b.variables[entry.Expr] = entry.Result
		}
	}
	return nil
}

func (b *Board) setResults(entries ...drawing.ResultEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results = entries
}
