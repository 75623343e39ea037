package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/umlcanvas/internal/canvas"
	"github.com/dusk-indust/umlcanvas/internal/config"
	"github.com/dusk-indust/umlcanvas/internal/diagram"
	"github.com/dusk-indust/umlcanvas/internal/script"
)

// version is set by the linker at build time.
var version = "dev"

var errColor = color.New(color.FgRed, color.Bold)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		errColor.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	Dir      string
	LogLevel string
}

// NewRootCmd creates the umlcanvas command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "umlcanvas",
		Short:         "umlcanvas - headless UML class diagram editor",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&g.Dir, "dir", ".", "directory holding umlcanvas.yml")
	root.PersistentFlags().StringVar(&g.LogLevel, "log-level", "", "override logLevel (debug, info, warn, error)")

	root.AddCommand(newRunCmd(g))
	root.AddCommand(newServeCmd(g))
	root.AddCommand(newServeMCPCmd(g))
	root.AddCommand(newWatchCmd(g))
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// loadConfig reads the project config and applies flag overrides.
func (g *globalFlags) loadConfig() (*config.ProjectConfig, error) {
	cfg, err := config.Load(g.Dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newLogger writes text logs at the configured level to w.
func newLogger(cfg *config.ProjectConfig, w io.Writer) *slog.Logger {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newCanvas builds a model and a session over it.
func newCanvas(cfg *config.ProjectConfig, log *slog.Logger) (*diagram.Model, *canvas.Session) {
	m := diagram.New(
		diagram.WithHistoryLimit(cfg.HistoryLimit),
		diagram.WithLogger(log.With("component", "diagram")),
	)
	c := canvas.New(m, canvas.WithLogger(log.With("component", "canvas")))
	return m, canvas.NewSession(c)
}

// seed replays an optional script before serving.
func seed(ctx context.Context, sess *canvas.Session, path string, log *slog.Logger) error {
	if path == "" {
		return nil
	}
	s, err := script.LoadFile(path)
	if err != nil {
		return err
	}
	res, err := script.Run(ctx, sess, s, script.WithLogger(log))
	if err != nil {
		return fmt.Errorf("seed %s: %w", s.Name, err)
	}
	log.Info("seeded", "script", s.Name, "steps", len(res.Steps), "rejected", res.Rejected())
	return nil
}
