package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/umlcanvas/internal/mcptools"
	"github.com/dusk-indust/umlcanvas/internal/view"
)

type serveFlags struct {
	Addr    string
	MCPAddr string
	Script  string
}

func newServeCmd(g *globalFlags) *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the viewer endpoints and the MCP tools over HTTP",
		Long: `Serve GET /render, GET /render.mmd and GET /events for viewers, and the
canvas MCP tools. The tools are mounted on the viewer address at mcpPath
unless --mcp-addr gives them their own listener.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if f.Addr != "" {
				cfg.ViewAddr = f.Addr
			}
			log := newLogger(cfg, cmd.ErrOrStderr())
			m, sess := newCanvas(cfg, log)

			srv := view.NewServer(sess, view.WithLogger(log.With("component", "view")))
			srv.Attach(m)
			mcpHandler := mcptools.NewHTTPHandler(mcptools.NewCanvasService(sess))

			ctx := cmd.Context()
			if err := seed(ctx, sess, f.Script, log); err != nil {
				return err
			}

			eg, ctx := errgroup.WithContext(ctx)
			if f.MCPAddr == "" {
				srv.Handle(cfg.MCPPath, mcpHandler)
				log.Info("mcp tools mounted", "addr", cfg.ViewAddr, "path", cfg.MCPPath)
			} else {
				eg.Go(func() error {
					log.Info("mcp tools listening", "addr", f.MCPAddr)
					return serveHTTP(ctx, f.MCPAddr, mcpHandler)
				})
			}
			eg.Go(func() error {
				return srv.ListenAndServe(ctx, cfg.ViewAddr)
			})
			return eg.Wait()
		},
	}
	cmd.Flags().StringVar(&f.Addr, "addr", "", "viewer listen address (default from config)")
	cmd.Flags().StringVar(&f.MCPAddr, "mcp-addr", "", "separate listen address for the MCP tools")
	cmd.Flags().StringVar(&f.Script, "script", "", "YAML event script replayed before serving")
	return cmd
}

type serveMCPFlags struct {
	View   bool
	Script string
}

func newServeMCPCmd(g *globalFlags) *cobra.Command {
	f := &serveMCPFlags{}
	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the canvas MCP tools over stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			// stdout carries the protocol.
			log := newLogger(cfg, cmd.ErrOrStderr())
			m, sess := newCanvas(cfg, log)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			if err := seed(ctx, sess, f.Script, log); err != nil {
				return err
			}

			eg, ctx := errgroup.WithContext(ctx)
			if f.View {
				srv := view.NewServer(sess, view.WithLogger(log.With("component", "view")))
				srv.Attach(m)
				eg.Go(func() error {
					return srv.ListenAndServe(ctx, cfg.ViewAddr)
				})
			}
			eg.Go(func() error {
				defer cancel()
				return mcptools.RunStdio(ctx, mcptools.NewCanvasService(sess))
			})
			return eg.Wait()
		},
	}
	cmd.Flags().BoolVar(&f.View, "view", false, "also serve the viewer endpoints on viewAddr")
	cmd.Flags().StringVar(&f.Script, "script", "", "YAML event script replayed before serving")
	return cmd
}

// serveHTTP serves h on addr until ctx is cancelled.
func serveHTTP(ctx context.Context, addr string, h http.Handler) error {
	hs := &http.Server{Addr: addr, Handler: h}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
	}()

	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
