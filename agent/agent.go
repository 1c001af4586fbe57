package agent

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/nstehr/vimy/vimy-triggers/game"
	"github.com/nstehr/vimy/vimy-triggers/ipc"
	"github.com/nstehr/vimy/vimy-triggers/logger"
	"github.com/nstehr/vimy/vimy-triggers/scenario"
)

var errNoSession = errors.New("game_state before hello")

// Agent runs the triggers of one host session. The host owns the world:
// every game_state replaces the agent's copy, and the agent answers with
// the game flags after one trigger step.
type Agent struct {
	Conn *ipc.Connection
	// Dir is where hello messages look up scenarios by name.
	Dir string

	match *scenario.Match
	loop  *game.Loop
	log   *slog.Logger
}

func New(conn *ipc.Connection, dir string) *Agent {
	return &Agent{Conn: conn, Dir: dir, log: slog.Default()}
}

// Register installs the agent's handlers on its connection.
func (a *Agent) Register() {
	a.Conn.RegisterHandler(ipc.TypeHello, a.HandleHello)
	a.Conn.RegisterHandler(ipc.TypeGameState, a.HandleGameState)
}

// Close releases the session's script runtime.
func (a *Agent) Close() {
	if a.match != nil {
		a.match.Close()
	}
}

// HandleHello loads the named scenario and builds its triggers. A second
// hello starts over with a fresh match.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := env.Decode(&hello); err != nil {
		return nil, err
	}
	if hello.Scenario == "" || strings.ContainsAny(hello.Scenario, `/\`) || strings.HasPrefix(hello.Scenario, ".") {
		return nil, fmt.Errorf("invalid scenario name %q", hello.Scenario)
	}

	s, err := scenario.Load(filepath.Join(a.Dir, hello.Scenario+".yaml"))
	if err != nil {
		return nil, err
	}
	s.ThisPlayer = hello.ThisPlayer
	m, err := s.Build()
	if err != nil {
		return nil, err
	}

	a.Close()
	a.match = m
	a.loop = &game.Loop{World: m.World, Engine: m.Engine, Game: m.Game}
	a.log = logger.WithSession(slog.Default(), s.Name, hello.ThisPlayer)
	a.Conn.SetLogger(a.log)

	tbl, err := m.Engine.Triggers()
	if err != nil {
		return nil, err
	}
	a.log.Info("session started", "triggers", tbl.Len())

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", Triggers: tbl.Len()})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleGameState applies the snapshot and runs one trigger step. A bad
// snapshot is rejected without touching the world; a trigger error ends
// the session.
func (a *Agent) HandleGameState(env ipc.Envelope) (*ipc.Envelope, error) {
	if a.loop == nil {
		return nil, errNoSession
	}
	var gs ipc.GameStateMessage
	if err := env.Decode(&gs); err != nil {
		return nil, err
	}

	if err := a.match.World.Apply(gs); err != nil {
		return nil, fmt.Errorf("apply snapshot: %w", err)
	}
	if err := a.loop.Step(); err != nil {
		return nil, fmt.Errorf("tick %d: %w: %w", gs.Tick, err, ipc.ErrEndSession)
	}

	g := a.match.Game
	a.log.Debug("tick evaluated", "tick", gs.Tick, "units", len(gs.Units), "result", g.Result)
	if !g.Running {
		a.log.Info("game over", "tick", gs.Tick, "result", g.Result)
	}

	res, err := ipc.NewEnvelope(ipc.TypeResult, ipc.ResultMessage{
		Tick:    gs.Tick,
		Result:  g.Result.String(),
		Paused:  g.Paused,
		Running: g.Running,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
