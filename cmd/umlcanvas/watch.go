package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/umlcanvas/internal/export"
	"github.com/dusk-indust/umlcanvas/internal/view"
)

func newWatchCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [url]",
		Short: "Follow a running server's event feed and print each render",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := ""
			if len(args) == 1 {
				url = args[0]
			} else {
				cfg, err := g.loadConfig()
				if err != nil {
					return err
				}
				url = "http://" + cfg.ViewAddr
			}
			return watch(cmd, eventsURL(url))
		},
	}
	return cmd
}

// eventsURL appends /events unless url already names it.
func eventsURL(url string) string {
	url = strings.TrimRight(url, "/")
	if strings.HasSuffix(url, "/events") {
		return url
	}
	return url + "/events"
}

func watch(cmd *cobra.Command, url string) error {
	ctx := cmd.Context()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("connect %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return fmt.Errorf("connect %s: %s", url, resp.Status)
	}

	for ev := range view.ReadEvents(ctx, resp.Body) {
		if ev.Err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read events: %w", ev.Err)
		}
		printEvent(cmd.OutOrStdout(), ev)
	}
	return nil
}

var eventColor = color.New(color.FgGreen, color.Bold)

// printEvent writes a frame header and the render carried by ev.
func printEvent(w io.Writer, ev view.Event) {
	if ev.Seq == 0 {
		eventColor.Fprintln(w, "== current diagram")
	} else {
		eventColor.Fprintf(w, "== #%d %s (%s)\n", ev.Seq, ev.Op, ev.Direction)
	}
	if ev.Render != nil {
		fmt.Fprint(w, export.GenerateText(*ev.Render, colorStyler()))
	}
}
