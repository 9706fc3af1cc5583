package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/at-ishikawa/inkcalc/internal/board"
	"github.com/at-ishikawa/inkcalc/internal/canvas"
	"github.com/at-ishikawa/inkcalc/internal/typeset"
)

const (
	headerHeight     = 2
	resultsHeight    = 6
	fullscreenChrome = 1
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	hintStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	paperStyle   = lipgloss.NewStyle().Background(lipgloss.Color("#FFFFFF"))
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2)
)

var instructions = []string{
	"Choose a color with the keys 1 to 6",
	"Draw an expression, a graph or a sketch with the mouse",
	"Press enter or s to solve what you drew",
	"Press c to clear the canvas and the results",
	"Press f to toggle fullscreen",
}

type submitDoneMsg struct {
	err error
}

type quitMsg struct{}

// previewCache keeps the rendered canvas between frames
type previewCache struct {
	version    uint64
	cols, rows int
	rendered   string
}

// DrawModel is the Bubble Tea model of the drawing screen.
type DrawModel struct {
	ctx        context.Context
	board      *board.Board
	typesetter typeset.Typesetter
	spinner    spinner.Model

	width      int
	height     int
	showHelp   bool
	submitting bool
	notice     string
	quitting   bool
	cache      *previewCache
}

func NewDrawModel(ctx context.Context, b *board.Board, typesetter typeset.Typesetter) DrawModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return DrawModel{
		ctx:        ctx,
		board:      b,
		typesetter: typesetter,
		spinner:    s,
		cache:      &previewCache{},
	}
}

func (m DrawModel) Init() tea.Cmd {
	return nil
}

func (m DrawModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case submitDoneMsg:
		m.submitting = false
		if msg.err != nil {
			slog.Default().Error("submission failed", "error", msg.err)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case quitMsg:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m DrawModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
	case "esc":
		m.showHelp = false
	case "c":
		m.board.Clear()
	case "f":
		m.board.ToggleFullscreen()
	case "enter", "s":
		if m.submitting {
			m.notice = board.ErrBusy.Error()
			return m, nil
		}
		m.submitting = true
		return m, tea.Batch(m.spinner.Tick, submitCmd(m.ctx, m.board))
	case "1", "2", "3", "4", "5", "6":
		if err := m.board.SelectColor(int(key[0] - '1')); err != nil {
			m.notice = err.Error()
		}
	}
	return m, nil
}

func submitCmd(ctx context.Context, b *board.Board) tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{err: b.Submit(ctx)}
	}
}

// canvasArea returns the top row and the size of the drawing area in cells
func (m DrawModel) canvasArea() (int, int, int) {
	if m.board.Fullscreen() {
		return 0, m.width, max(m.height-fullscreenChrome, 1)
	}
	return headerHeight, m.width, max(m.height-headerHeight-resultsHeight, 1)
}

// handleMouse maps cell events to strokes. Moving out of the area ends the stroke.
func (m DrawModel) handleMouse(msg tea.MouseMsg) {
	if m.showHelp || m.width == 0 {
		return
	}

	top, cols, rows := m.canvasArea()
	surface := m.board.Canvas()
	x, y := msg.X, msg.Y-top
	inside := x >= 0 && x < cols && y >= 0 && y < rows

	// the center of the cell is where the pointer is
	point := canvas.Point{X: float32(x) + 0.5, Y: float32(y) + 0.5}
	display := canvas.Size{Width: float32(cols), Height: float32(rows)}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft && inside {
			surface.BeginStroke(point, display)
		}
	case tea.MouseActionMotion:
		if !inside {
			surface.EndStroke()
			return
		}
		if err := surface.ExtendStroke(point, display); err != nil && !errors.Is(err, canvas.ErrNotDrawing) {
			slog.Default().Error("failed to extend the stroke", "error", err)
		}
	case tea.MouseActionRelease:
		surface.EndStroke()
	}
}

func (m DrawModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "  Initializing..."
	}
	if m.showHelp {
		return m.helpView()
	}

	_, cols, rows := m.canvasArea()
	paper := m.renderCanvas(cols, rows)
	if m.board.Fullscreen() {
		return lipgloss.JoinVertical(lipgloss.Left, paper, m.statusLine())
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		paper,
		m.resultsView(),
	)
}

func (m DrawModel) header() string {
	current := m.board.Color()

	var swatches []string
	for i, c := range board.Palette {
		label := fmt.Sprintf("%d ██", i+1)
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex))
		if c == current {
			style = style.Underline(true).Bold(true)
		}
		swatches = append(swatches, style.Render(label))
	}
	return titleStyle.Render("inkcalc") + "  " + strings.Join(swatches, " ") + "\n" + m.statusLine()
}

func (m DrawModel) statusLine() string {
	if m.notice != "" {
		return errorStyle.Render(m.notice)
	}
	return hintStyle.Render("enter solve · c clear · f fullscreen · ? help · q quit")
}

func (m DrawModel) resultsView() string {
	lines := []string{strings.Repeat("─", m.width)}
	if m.submitting || m.board.Processing() {
		lines = append(lines, m.spinner.View()+" Processing...")
		return strings.Join(lines, "\n")
	}

	results := m.board.Results()
	limit := resultsHeight - 1
	for i, entry := range results {
		if i == limit-1 && len(results) > limit {
			lines = append(lines, hintStyle.Render(fmt.Sprintf("... %d more", len(results)-i)))
			break
		}
		text := typeset.FormatEntry(m.typesetter, entry)
		if entry.Expr == "Error" {
			text = errorStyle.Render(text)
		}
		lines = append(lines, text)
	}
	return strings.Join(lines, "\n")
}

func (m DrawModel) helpView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("How to use inkcalc"))
	sb.WriteString("\n\n")
	for i, step := range instructions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
	}
	sb.WriteString("\n")
	sb.WriteString(hintStyle.Render("? or esc to close · q to quit"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, helpBoxStyle.Render(sb.String()))
}

// renderCanvas draws the preview, joining runs of equal cells into one styled span.
func (m DrawModel) renderCanvas(cols, rows int) string {
	surface := m.board.Canvas()
	version := surface.Version()
	if m.cache.version == version && m.cache.cols == cols && m.cache.rows == rows && m.cache.rendered != "" {
		return m.cache.rendered
	}

	cells := surface.Preview(cols, rows)
	lines := make([]string, 0, len(cells))
	for _, row := range cells {
		var sb strings.Builder
		for start := 0; start < len(row); {
			end := start + 1
			for end < len(row) && row[end] == row[start] {
				end++
			}
			sb.WriteString(renderRun(row[start], end-start))
			start = end
		}
		lines = append(lines, sb.String())
	}

	*m.cache = previewCache{
		version:  version,
		cols:     cols,
		rows:     rows,
		rendered: strings.Join(lines, "\n"),
	}
	return m.cache.rendered
}

func renderRun(cell canvas.Cell, n int) string {
	if !cell.Ink {
		return paperStyle.Render(strings.Repeat(" ", n))
	}
	hex := fmt.Sprintf("#%02X%02X%02X", cell.Color.R, cell.Color.G, cell.Color.B)
	return paperStyle.Foreground(lipgloss.Color(hex)).Render(strings.Repeat("█", n))
}

// RunDraw opens the drawing screen and blocks until the user quits or ctx ends.
func RunDraw(ctx context.Context, b *board.Board, typesetter typeset.Typesetter) error {
	program := tea.NewProgram(
		NewDrawModel(ctx, b, typesetter),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-ctx.Done()
		program.Send(quitMsg{})
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program.Run > %w", err)
	}
	return nil
}
