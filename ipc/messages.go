package ipc

import (
	"github.com/nstehr/vimy/vimy-triggers/model"
)

// Message types. The host simulation sends hello once, then one
// game_state per tick; the sidecar answers with ack, result or error.
const (
	TypeHello     = "hello"
	TypeAck       = "ack"
	TypeGameState = "game_state"
	TypeResult    = "result"
	TypeError     = "error"
)

// HelloMessage opens a session. Scenario names the file whose unit types
// and triggers the sidecar should load; the host's own world replaces the
// scenario's units with every game_state.
type HelloMessage struct {
	Scenario   string `json:"scenario"`
	ThisPlayer int    `json:"this_player"`
}

type AckMessage struct {
	Status string `json:"status"`
	// Triggers is the number of triggers registered after loading.
	Triggers int `json:"triggers"`
}

// GameStateMessage is the world snapshot for one tick.
type GameStateMessage = model.GameState

// ResultMessage reports the game flags after the tick's trigger step.
type ResultMessage struct {
	Tick    int    `json:"tick"`
	Result  string `json:"result"`
	Paused  bool   `json:"paused"`
	Running bool   `json:"running"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}
