package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/san-kum/physview/internal/apiclient"
	"github.com/san-kum/physview/internal/formula"
	"github.com/san-kum/physview/internal/mathrender"
)

const Title = "Physics Formula Viewer"

// Fetcher loads the formula list. *apiclient.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context) ([]formula.Formula, error)
}

// Config is everything the view needs from process configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Theme   string
}

type formulasMsg struct {
	formulas []formula.Formula
	err      error
}

// FormulaView fetches the formula list once and renders it, or the fetch error.
type FormulaView struct {
	ctx    context.Context
	cancel context.CancelFunc

	fetcher  Fetcher
	renderer mathrender.Renderer
	styles   styles
	spinner  spinner.Model

	state     State
	requested bool
	closed    bool
}

var _ tea.Model = (*FormulaView)(nil)

type Option func(*FormulaView)

func WithTheme(name string) Option {
	return func(v *FormulaView) { v.styles = newStyles(GetTheme(name)) }
}

// New creates a view bound to ctx. Cancelling ctx, or calling Close, aborts the
// fetch and freezes the view's state.
func New(ctx context.Context, fetcher Fetcher, renderer mathrender.Renderer, opts ...Option) *FormulaView {
	ctx, cancel := context.WithCancel(ctx)

	v := &FormulaView{
		ctx:      ctx,
		cancel:   cancel,
		fetcher:  fetcher,
		renderer: renderer,
		styles:   newStyles(ThemeDefault),
		state:    Loading{},
	}
	for _, opt := range opts {
		opt(v)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = v.styles.spinner
	v.spinner = s
	return v
}

// NewFromConfig wires the HTTP client and the terminal math renderer.
func NewFromConfig(ctx context.Context, cfg Config, logger *zap.Logger) *FormulaView {
	client := apiclient.New(cfg.BaseURL, cfg.Timeout, apiclient.WithLogger(logger))
	return New(ctx, client, mathrender.NewUnicode(), WithTheme(cfg.Theme))
}

func (v *FormulaView) State() State { return v.state }

// Closed reports whether the view has been torn down.
func (v *FormulaView) Closed() bool { return v.closed || v.ctx.Err() != nil }

// Close cancels any in-flight fetch. Results arriving afterwards are dropped.
func (v *FormulaView) Close() {
	v.closed = true
	v.cancel()
}

// Init issues the single fetch of this view's lifetime.
func (v *FormulaView) Init() tea.Cmd {
	if v.requested {
		return nil
	}
	v.requested = true
	return tea.Batch(v.spinner.Tick, v.fetch())
}

// Load fetches synchronously, for non-interactive output.
func (v *FormulaView) Load() State {
	if !v.requested {
		v.requested = true
		v.Update(v.fetch()())
	}
	return v.state
}

func (v *FormulaView) fetch() tea.Cmd {
	ctx, fetcher := v.ctx, v.fetcher
	return func() tea.Msg {
		formulas, err := fetcher.Fetch(ctx)
		return formulasMsg{formulas: formulas, err: err}
	}
}

func (v *FormulaView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case formulasMsg:
		if v.closed || v.ctx.Err() != nil || Terminal(v.state) {
			return v, nil
		}
		if msg.err != nil {
			v.state = Errored{Message: msg.err.Error()}
		} else {
			v.state = Loaded{Formulas: msg.formulas}
		}
		return v, nil
	case spinner.TickMsg:
		if _, ok := v.state.(Loading); !ok || v.closed {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			v.Close()
			return v, tea.Quit
		}
	}
	return v, nil
}

func (v *FormulaView) View() string {
	var b strings.Builder
	b.WriteString(v.styles.title.Render(Title) + "\n\n")

	switch s := v.state.(type) {
	case Loading:
		b.WriteString(v.spinner.View() + " " + v.styles.count.Render("loading formulas") + "\n")
	case Errored:
		b.WriteString(v.styles.err.Render("Error: "+s.Message) + "\n")
	case Loaded:
		b.WriteString(v.styles.count.Render(fmt.Sprintf("formulas (%d)", len(s.Formulas))) + "\n")
		for _, f := range s.Formulas {
			b.WriteString(v.renderItem(f) + "\n")
		}
	}

	b.WriteString("\n" + v.styles.hint.Render("q quit") + "\n")
	return b.String()
}

func (v *FormulaView) renderItem(f formula.Formula) string {
	math := v.renderer.Render(mathrender.Inline(f.Latex))
	return "  • " + v.styles.name.Render(f.Name+":") + " " + v.styles.math.Render(math)
}

// Run starts the interactive program and blocks until the user quits.
func Run(ctx context.Context, v *FormulaView) error {
	defer v.Close()
	p := tea.NewProgram(v, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
