package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/todolist/internal/config"
	"github.com/Makepad-fr/todolist/internal/loader"
	"github.com/Makepad-fr/todolist/internal/model"
	"github.com/Makepad-fr/todolist/internal/store/jsonstore"
	"github.com/Makepad-fr/todolist/internal/ui"
)

// Program is the part of *tea.Program the runner needs.
type Program interface {
	Run() (tea.Model, error)
}

// Options carry everything the subcommands need from the entry point.
type Options struct {
	Group  bool // list grouped by pending/done
	Config config.Config
	Logger *log.Logger

	// Fetcher overrides the source built from Config.
	Fetcher ui.Fetcher
	// NewProgram overrides how the interactive list is started. ctx ends
	// the program when it is canceled.
	NewProgram func(ctx context.Context, m tea.Model) Program

	Stdout io.Writer
	Stderr io.Writer
}

func (o Options) stdout() io.Writer {
	if o.Stdout != nil {
		return o.Stdout
	}
	return os.Stdout
}

func (o Options) stderr() io.Writer {
	if o.Stderr != nil {
		return o.Stderr
	}
	return os.Stderr
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	cmd := "ui"
	var rest []string
	if len(args) > 0 {
		cmd, rest = args[0], args[1:]
	}

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.stdout())
		return 0

	case "ui":
		if len(rest) != 0 {
			ui.Fail(opt.stderr(), "usage: todolist ui")
			return 2
		}
		return doInteractive(ctx, opt)

	case "ls":
		if len(rest) != 0 {
			ui.Fail(opt.stderr(), "usage: todolist ls")
			return 2
		}
		return doList(ctx, opt)
	}

	ui.Fail(opt.stderr(), "unknown subcommand: "+cmd)
	fmt.Fprintln(opt.stderr())
	PrintHelp(opt.stderr())
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `todolist - fetch a todo list and edit it for this session

Usage:
  todolist [flags] [subcommand]

Subcommands:
  ui                 Interactive list (default)
  ls                 Fetch once and print the list
  help               Show this help

Flags:
  --config <path>    TOML config file (env TODOLIST_CONFIG)
  --url <url>        Collection endpoint (env TODOLIST_URL)
  --file <path>      Read the collection from a JSON file instead
  --token <token>    Bearer token sent with the request
  --log-level <lvl>  debug|info|warn|error
  --log-file <path>  Where the interactive list writes its logs
  --theme <name>     classic|neon|mono
  --group            ls: group output by pending/done

Examples:
  todolist
  todolist --url http://localhost:3000/todos ls
  todolist --file todos.json --group ls
`)
}

// Fetcher builds the source described by cfg: a JSON file when one is set,
// otherwise the HTTP endpoint.
func Fetcher(cfg config.Config, logger *log.Logger) (ui.Fetcher, error) {
	if f := strings.TrimSpace(cfg.Source.File); f != "" {
		l, err := jsonstore.New(f)
		if err != nil {
			return nil, fmt.Errorf("open json source: %w", err)
		}
		return l, nil
	}
	l := loader.New(cfg.Source.URL, &http.Client{})
	l.Token = cfg.Source.Token
	l.Logger = logger
	return l, nil
}

func (o Options) fetcher() (ui.Fetcher, error) {
	if o.Fetcher != nil {
		return o.Fetcher, nil
	}
	return Fetcher(o.Config, o.logger())
}

// -------------- subcommand impls ----------------

func doInteractive(ctx context.Context, opt Options) int {
	f, err := opt.fetcher()
	if err != nil {
		ui.Fail(opt.stderr(), err.Error())
		return 1
	}
	logger := opt.logger()
	m := ui.New(f, ui.WithLogger(logger))

	newProgram := opt.NewProgram
	if newProgram == nil {
		newProgram = func(ctx context.Context, m tea.Model) Program {
			return tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
		}
	}
	logger.Info("interactive list start")
	final, err := newProgram(ctx, m).Run()
	if fm, ok := final.(ui.Model); ok {
		fm.Dispose()
	}
	if err != nil && ctx.Err() != nil {
		logger.Info("interactive list interrupted", "err", err)
		return 0
	}
	if err != nil {
		logger.Error("interactive list failed", "err", err)
		ui.Fail(opt.stderr(), "tui: "+err.Error())
		return 1
	}
	logger.Info("interactive list done")
	return 0
}

func doList(ctx context.Context, opt Options) int {
	f, err := opt.fetcher()
	if err != nil {
		ui.Fail(opt.stderr(), err.Error())
		return 1
	}
	items, err := f.Fetch(ctx)
	if err != nil {
		msg := err.Error()
		var le *loader.LoadError
		if errors.As(err, &le) {
			msg = le.Message
		}
		opt.logger().Error("list fetch failed", "err", err)
		ui.Fail(opt.stderr(), "Error: "+msg)
		return 1
	}

	t := ui.Current()
	done, _ := model.Stats(items)
	lines := []string{
		ui.Header(items),
		t.Muted.Render(ui.ProgressBar(done, len(items), 28)),
		"",
	}
	if opt.Group {
		lines = append(lines, groupLines(items)...)
	} else {
		lines = append(lines, flatLines(items)...)
	}
	lines = append(lines, "", t.Muted.Render("Tip: run `todolist` to add and remove items"))
	fmt.Fprintln(opt.stdout(), ui.Panel(strings.Join(lines, "\n")))
	return 0
}

// -------------- rendering helpers --------------

func flatLines(items []model.Item) []string {
	t := ui.Current()
	if len(items) == 0 {
		return []string{t.Muted.Render("no items")}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		idx := fmt.Sprintf("%2d.", i+1)
		box := t.Muted.Render(t.BoxUnchecked)
		title := it.Title
		if it.Completed {
			box = t.Success.Render(t.BoxChecked)
		}
		if r := []rune(title); len(r) > 80 {
			title = string(r[:77]) + "..."
		}
		out = append(out, fmt.Sprintf("%s %s %s", t.Muted.Render(idx), box, title))
	}
	return out
}

func groupLines(items []model.Item) []string {
	t := ui.Current()
	var pend, done []model.Item
	for _, it := range items {
		if it.Completed {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}
