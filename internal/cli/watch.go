package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wzrd/pkg/core/eval"
	"github.com/matzehuels/wzrd/pkg/core/layout"
	"github.com/matzehuels/wzrd/pkg/graph"
	"github.com/matzehuels/wzrd/pkg/pipeline"
)

// watchCommand creates the live preview command.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		output     string
		noCache    bool
		autoLayout bool
		debounce   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [script]",
		Short: "Re-import a script on every change and preview the result",
		Long: `Re-import a script on every change and preview the result.

Saves are debounced, then the script is imported and the text generated back
from the graph is shown. Press l to lay the graph out on the next build, r to
rebuild now and q to quit. With -o the graph JSON is rewritten after every
build so other tools can follow along.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if debounce == 0 {
				debounce = c.Config.Watch.Debounce.Duration
			}
			return c.runWatch(cmd.Context(), args[0], output, noCache, autoLayout, debounce)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "rewrite graph JSON here after every build")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&autoLayout, "layout", false, "lay out after every build")
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before rebuilding (default from config)")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, path, output string, noCache, autoLayout bool, debounce time.Duration) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	// The TUI owns the terminal; pipeline logging would tear the view.
	runner.Logger = log.New(io.Discard)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	b := &watchBuilder{
		runner:     runner,
		opts:       c.pipelineOptions(),
		path:       target,
		output:     output,
		autoLayout: autoLayout,
		layoutReq:  &layout.Request{},
	}
	b.opts.Logger = runner.Logger

	m := newWatchModel(path, b.layoutReq, func() watchResult { return b.build(ctx) })
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())

	deb := pipeline.NewDebouncer(debounce, func() { p.Send(fileChangedMsg{}) })
	defer deb.Stop()

	go watchFile(ctx, watcher, target, deb.Trigger, loggerFromContext(ctx))

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// watchFile calls trigger for every change to target until ctx is done or
// the watcher closes.
func watchFile(ctx context.Context, w *fsnotify.Watcher, target string, trigger func(), logger *log.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				trigger()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error", "err", err)
		}
	}
}

// =============================================================================
// Builder
// =============================================================================

// watchResult is the outcome of one import → generate pass.
type watchResult struct {
	Text        string
	Fallback    bool
	Nodes       int
	Connections int
	Cached      bool
	LaidOut     bool
	Err         error
	At          time.Time
	Took        time.Duration
}

type watchBuilder struct {
	runner     *pipeline.Runner
	opts       pipeline.Options
	path       string
	output     string
	autoLayout bool
	layoutReq  *layout.Request
}

func (b *watchBuilder) build(ctx context.Context) (res watchResult) {
	start := time.Now()
	res.At = start
	defer func() { res.Took = time.Since(start) }()

	src, err := os.ReadFile(b.path)
	if err != nil {
		res.Err = err
		return res
	}

	opts := b.opts
	opts.Script = string(src)
	g, sigs, hit, err := b.runner.ImportWithCacheInfo(ctx, opts)
	if err != nil {
		res.Err = err
		return res
	}
	res.Nodes, res.Connections, res.Cached = g.NodeCount(), g.ConnectionCount(), hit

	// Consume the request even when auto-layout is on so it does not fire later.
	requested := b.layoutReq.TakeRequested()
	if (requested || b.autoLayout) && g.NodeCount() > 0 {
		if _, err := b.runner.Layout(ctx, g, sigs, opts); err == nil {
			res.LaidOut = true
		}
	}

	res.Text = b.runner.Generate(ctx, g, sigs)
	res.Fallback = eval.IsFallback(res.Text)

	if b.output != "" {
		if err := graph.WriteGraphFile(g, sigs, b.output); err != nil {
			res.Err = err
		}
	}
	return res
}

// =============================================================================
// WatchModel - bubbletea preview
// =============================================================================

type fileChangedMsg struct{}

type buildDoneMsg watchResult

var (
	watchHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	watchErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	watchHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// watchModel renders the latest build and schedules rebuilds. At most one
// build runs at a time; changes that arrive meanwhile collapse into a single
// follow-up build.
type watchModel struct {
	path      string
	build     func() watchResult
	layoutReq *layout.Request

	result   watchResult
	built    bool
	building bool
	pending  bool
	width    int
}

func newWatchModel(path string, req *layout.Request, build func() watchResult) watchModel {
	return watchModel{path: path, build: build, layoutReq: req}
}

func (m watchModel) Init() tea.Cmd {
	return func() tea.Msg { return fileChangedMsg{} }
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m.schedule()
		case "l":
			m.layoutReq.Set()
			return m.schedule()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case fileChangedMsg:
		return m.schedule()
	case buildDoneMsg:
		m.result = watchResult(msg)
		m.built = true
		m.building = false
		if m.pending {
			m.pending = false
			return m.schedule()
		}
	}
	return m, nil
}

func (m watchModel) schedule() (tea.Model, tea.Cmd) {
	if m.building {
		m.pending = true
		return m, nil
	}
	m.building = true
	build := m.build
	return m, func() tea.Msg { return buildDoneMsg(build()) }
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(watchHeaderStyle.Render("wzrd watch") + " " + StyleDim.Render(m.path))
	b.WriteString("\n\n")

	switch {
	case !m.built:
		b.WriteString(StyleDim.Render("building..."))
	case m.result.Err != nil:
		b.WriteString(watchErrorStyle.Render(iconError + " " + m.result.Err.Error()))
	default:
		r := m.result
		status := iconFresh
		if r.Cached {
			status = iconCached
		}
		line := fmt.Sprintf("%d nodes · %d connections · %s · %s",
			r.Nodes, r.Connections, status, r.Took.Round(time.Millisecond))
		if r.LaidOut {
			line += " · laid out"
		}
		b.WriteString(StyleDim.Render(r.At.Format("15:04:05") + "  " + line))
		b.WriteString("\n")
		code := styleCode
		if m.width > 4 {
			code = code.MaxWidth(m.width)
		}
		if r.Fallback {
			code = code.BorderForeground(colorYellow).Foreground(colorYellow)
		}
		b.WriteString(code.Render(r.Text))
	}
	if m.building && m.built {
		b.WriteString("\n" + StyleDim.Render("rebuilding..."))
	}

	b.WriteString("\n\n")
	b.WriteString(watchHelpStyle.Render("r rebuild  l layout  q quit"))
	b.WriteString("\n")
	return b.String()
}
