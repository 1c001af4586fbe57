package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/nstehr/vimy/vimy-triggers/agent"
	"github.com/nstehr/vimy/vimy-triggers/config"
	"github.com/nstehr/vimy/vimy-triggers/game"
	"github.com/nstehr/vimy/vimy-triggers/ipc"
	"github.com/nstehr/vimy/vimy-triggers/logger"
	"github.com/nstehr/vimy/vimy-triggers/scenario"
)

const banner = `
██╗   ██╗██╗███╗   ███╗██╗   ██╗
██║   ██║██║████╗ ████║╚██╗ ██╔╝
██║   ██║██║██╔████╔██║ ╚████╔╝
╚██╗ ██╔╝██║██║╚██╔╝██║  ╚██╔╝
 ╚████╔╝ ██║██║ ╚═╝ ██║   ██║
  ╚═══╝  ╚═╝╚═╝     ╚═╝   ╚═╝

Scenario Trigger Engine`

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger.Setup(cfg, os.Stdout)

	if cfg.LogFormat == "text" {
		fmt.Println(banner)
	}
	slog.Info("starting vimy-triggers", "mode", cfg.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cfg.Mode {
	case config.ModeRun:
		err = run(ctx, cfg)
	default:
		err = serve(ctx, cfg)
	}
	if err != nil {
		slog.Error("exiting", "error", err)
		os.Exit(1)
	}
}

// run simulates a scenario standalone until its triggers end the game.
func run(ctx context.Context, cfg config.Config) error {
	s, err := scenario.Load(cfg.Scenario)
	if err != nil {
		return err
	}
	m, err := s.Build()
	if err != nil {
		return err
	}
	defer m.Close()

	loop := &game.Loop{World: m.World, Engine: m.Engine, Game: m.Game, Interval: cfg.Interval}
	err = loop.Run(ctx, cfg.MaxTicks)
	if errors.Is(err, context.Canceled) {
		slog.Info("interrupted", "tick", loop.Tick())
		return nil
	}
	if err != nil {
		return err
	}
	slog.Info("run finished", "scenario", s.Name, "tick", loop.Tick(), "result", m.Game.Result)
	return nil
}

// serve accepts host simulations on a unix socket, one session each.
func serve(ctx context.Context, cfg config.Config) error {
	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(cfg.Socket); err != nil {
		return fmt.Errorf("clean up socket %s: %w", cfg.Socket, err)
	}
	listener, err := net.Listen("unix", cfg.Socket)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Socket, err)
	}
	defer os.Remove(cfg.Socket)

	slog.Info("listening on domain socket", "path", cfg.Socket, "scenarios", cfg.Scenarios)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("shutting down")
				return nil
			}
			slog.Error("failed to accept connection", "error", err)
			continue
		}
		slog.Info("new connection accepted")
		go handleConn(conn, cfg.Scenarios)
	}
}

func handleConn(conn net.Conn, dir string) {
	c := ipc.NewConnection(conn, nil)
	a := agent.New(c, dir)
	defer a.Close()
	a.Register()
	c.ReadLoop()
}
