package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/umlcanvas/internal/config"
	"github.com/dusk-indust/umlcanvas/internal/diagram"
	"github.com/dusk-indust/umlcanvas/internal/export"
	"github.com/dusk-indust/umlcanvas/internal/registry"
	"github.com/dusk-indust/umlcanvas/internal/script"
)

// colorStyler highlights headers, notes and links of a text rendering.
func colorStyler() export.Styler {
	header := color.New(color.FgCyan, color.Bold)
	note := color.New(color.FgHiBlack)
	link := color.New(color.FgYellow)
	return export.Styler{
		Header: func(s string) string { return header.Sprint(s) },
		Note:   func(s string) string { return note.Sprint(s) },
		Link:   func(s string) string { return link.Sprint(s) },
	}
}

type runFlags struct {
	Format string
	Strict bool
}

func newRunCmd(g *globalFlags) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Replay a YAML event script and print the resulting diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if f.Format != "" {
				cfg.Format = f.Format
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			log := newLogger(cfg, cmd.ErrOrStderr())

			s, err := script.LoadFile(args[0])
			if err != nil {
				return err
			}
			m, sess := newCanvas(cfg, log)

			opts := []script.Option{script.WithLogger(log)}
			if f.Strict {
				opts = append(opts, script.Strict())
			}
			res, err := script.Run(cmd.Context(), sess, s, opts...)
			if err != nil {
				return fmt.Errorf("run %s: %w", s.Name, err)
			}
			for _, sr := range res.Steps {
				if !sr.Accepted {
					log.Warn("step rejected", "step", sr.Index, "action", sr.Action, "err", sr.Err)
				}
			}

			if err := writeDiagram(cmd.OutOrStdout(), cfg.Format, m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d steps, %d rejected\n", s.Name, len(res.Steps), res.Rejected())
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Format, "format", "", "output format: text, mermaid or json (default from config)")
	cmd.Flags().BoolVar(&f.Strict, "strict", false, "fail on the first rejected step")
	return cmd
}

// writeDiagram renders m in the given format.
func writeDiagram(w io.Writer, format string, m *diagram.Model) error {
	switch format {
	case "json":
		return export.WriteJSON(w, export.ExportDiagram(m))
	case "mermaid":
		_, err := io.WriteString(w, export.GenerateMermaid(registry.Project(m.Snapshot())))
		return err
	case "", config.DefaultFormat:
		_, err := io.WriteString(w, export.GenerateText(registry.Project(m.Snapshot()), colorStyler()))
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}
