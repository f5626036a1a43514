package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/amirbrooks/todo/internal/config"
	"github.com/amirbrooks/todo/internal/logging"
	"github.com/amirbrooks/todo/internal/prompt"
	"github.com/amirbrooks/todo/internal/render"
	"github.com/amirbrooks/todo/internal/store"
)

// Exit codes
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitInternal = 10
)

type GlobalFlags struct {
	File    string
	Config  string
	Color   string
	NoColor bool
	Verbose bool
}

// Streams is what a run reads from and writes to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	// Input overrides how interactive lines are read; nil picks a reader
	// based on whether stdin is a terminal.
	Input prompt.LineReader
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func Run(args []string) int {
	return Execute(context.Background(), args, Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
}

// Execute runs one command and returns the process exit code.
func Execute(ctx context.Context, args []string, s Streams) int {
	if s.Getenv == nil {
		s.Getenv = os.Getenv
	}
	// A lone "-" never reaches cobra's command lookup, so map the alias here.
	if len(args) > 0 && args[0] == "-" {
		args = append([]string{"delete"}, args[1:]...)
	}
	root := newRootCmd(&s)
	root.SetArgs(args)
	root.SetIn(s.In)
	root.SetOut(s.Out)
	root.SetErr(s.Err)
	err := root.ExecuteContext(ctx)
	return exitCode(s.Err, err)
}

func exitCode(w io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}
	var ue *usageError
	switch {
	case errors.As(err, &ue), errors.Is(err, store.ErrInvalidTask):
		fmt.Fprintln(w, "todo:", err)
		return ExitUsage
	case errors.Is(err, prompt.ErrAborted), errors.Is(err, context.Canceled):
		fmt.Fprintln(w, "todo: aborted, nothing changed")
		return ExitUsage
	default:
		fmt.Fprintln(w, "todo:", err)
		return ExitInternal
	}
}

func newRootCmd(s *Streams) *cobra.Command {
	gf := &GlobalFlags{}
	root := &cobra.Command{
		Use:           "todo",
		Short:         "todo - a small prioritized task list",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usagef("unknown command %q", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return usagef("missing command")
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&gf.File, "file", "", "Task file (default: $TODO_FILE, config file, or ~/.todo.json)")
	pf.StringVar(&gf.Config, "config", "", "Config file (default: $TODO_CONFIG or <config dir>/todo/config.toml)")
	pf.StringVar(&gf.Color, "color", "", "Color output: auto|always|never")
	pf.BoolVar(&gf.NoColor, "no-color", false, "Disable color output")
	pf.BoolVarP(&gf.Verbose, "verbose", "v", false, "Log debug details to stderr")

	r := &runner{streams: s, flags: gf}
	root.AddCommand(
		newAddCmd(r),
		newDeleteCmd(r),
		newEditCmd(r),
		newListCmd(r),
	)
	return root
}

func newAddCmd(r *runner) *cobra.Command {
	var (
		priority int
		group    string
	)
	cmd := &cobra.Command{
		Use:     "add <text>...",
		Aliases: []string{"a", "+"},
		Short:   "Add a todo",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usagef("add: missing task text")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return r.withApp(cmd.Context(), func(app *App) error {
				return app.Add(text, priority, group)
			})
		},
	}
	addPriorityFlag(cmd.Flags(), &priority)
	cmd.Flags().StringVarP(&group, "group", "g", "", "Group label")
	return cmd
}

func newDeleteCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:     "delete [id...]",
		Aliases: []string{"d", "rm"},
		Short:   "Delete todos; asks which ones when no id is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, errs := ParseIDs(strings.Join(args, ","))
			if len(errs) > 0 {
				return &usageError{err: fmt.Errorf("delete: %w", errors.Join(errs...))}
			}
			return r.withApp(cmd.Context(), func(app *App) error {
				return app.Delete(cmd.Context(), ids)
			})
		},
	}
}

func newEditCmd(r *runner) *cobra.Command {
	var (
		priority int
		group    string
		noGroup  bool
		text     string
	)
	cmd := &cobra.Command{
		Use:     "edit <id>",
		Aliases: []string{"e"},
		Short:   "Change the priority, group or text of a todo",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usagef("edit: expected exactly one id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return usagef("edit: %q is not an id", args[0])
			}
			flags := cmd.Flags()
			if noGroup && flags.Changed("group") {
				return usagef("edit: --group and --no-group are mutually exclusive")
			}
			var in EditInput
			if flags.Changed("priority") {
				in.Priority = &priority
			}
			if flags.Changed("group") {
				in.Group = &group
			}
			if noGroup {
				empty := ""
				in.Group = &empty
			}
			if flags.Changed("text") {
				in.Text = &text
			}
			return r.withApp(cmd.Context(), func(app *App) error {
				return app.Edit(id, in)
			})
		},
	}
	addPriorityFlag(cmd.Flags(), &priority)
	cmd.Flags().StringVarP(&group, "group", "g", "", "New group label")
	cmd.Flags().BoolVarP(&noGroup, "no-group", "G", false, "Remove the group")
	cmd.Flags().StringVarP(&text, "text", "t", "", "New task text")
	return cmd
}

func newListCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"l", "ls"},
		Short:   "List all todos",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usagef("list: takes no arguments")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd.Context(), func(app *App) error {
				return app.List()
			})
		},
	}
}

// addPriorityFlag registers -p as a counter: -p low, -pp medium, -ppp high.
func addPriorityFlag(fs *pflag.FlagSet, p *int) {
	fs.CountVarP(p, "priority", "p", "Priority; repeat for more (-p, -pp, -ppp)")
}

// runner owns the load, operate, save cycle shared by every command.
type runner struct {
	streams *Streams
	flags   *GlobalFlags
}

func (r *runner) loadConfig() (*config.Config, error) {
	path := r.flags.Config
	if path == "" {
		path = r.streams.Getenv("TODO_CONFIG")
	}
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFrom(store.ExpandHome(path))
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(r.streams.Getenv)
	if r.flags.File != "" {
		cfg.File = store.ExpandHome(r.flags.File)
	}
	if r.flags.Color != "" {
		cfg.Color = r.flags.Color
	}
	if r.flags.NoColor {
		cfg.Color = config.ColorNever
	}
	if err := cfg.Validate(); err != nil {
		return nil, &usageError{err: err}
	}
	return cfg, nil
}

func (r *runner) input() prompt.LineReader {
	if r.streams.Input != nil {
		return r.streams.Input
	}
	return prompt.For(r.streams.In, r.streams.Out)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// withApp loads the task file, runs fn, and writes the file back. Nothing is
// written when fn fails.
func (r *runner) withApp(ctx context.Context, fn func(*App) error) error {
	cfg, err := r.loadConfig()
	if err != nil {
		return err
	}
	logger := logging.New(r.streams.Err, logging.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Verbose: r.flags.Verbose,
	})

	file := store.NewFile(cfg.File)
	created, err := file.EnsureExists()
	if err != nil {
		return fmt.Errorf("prepare %s: %w", file.Path, err)
	}
	if created {
		logger.Info("created task file", "path", file.Path)
	}
	tasks, err := file.Load()
	if err != nil {
		return err
	}
	logger.Debug("loaded tasks", "path", file.Path, "format", file.Format, "count", tasks.Len())

	app := &App{
		Tasks: tasks,
		Out:   render.NewPrinter(r.streams.Out, cfg.UseColor(isTerminal(r.streams.Out))),
		Input: r.input(),
		Log:   logger,
	}
	if err := fn(app); err != nil {
		return err
	}

	rev, err := file.Save(tasks)
	if err != nil {
		return fmt.Errorf("save %s: %w", file.Path, err)
	}
	logger.Debug("saved tasks", "path", file.Path, "revision", rev, "count", tasks.Len())
	return nil
}
