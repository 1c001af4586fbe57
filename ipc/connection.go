package ipc

import (
	"errors"
	"io"
	"log/slog"
)

// ErrEndSession, wrapped in a handler error, closes the connection after
// the error reply is sent.
var ErrEndSession = errors.New("session ended")

// Handler processes a received envelope. Return nil to send no reply. Any
// error is sent back to the host as an error message.
type Handler func(env Envelope) (*Envelope, error)

// Connection is one host simulation talking to the sidecar.
type Connection struct {
	rw       io.ReadWriteCloser
	handlers map[string]Handler
	log      *slog.Logger
}

func NewConnection(rw io.ReadWriteCloser, log *slog.Logger) *Connection {
	if log == nil {
		log = slog.Default()
	}
	return &Connection{
		rw:       rw,
		handlers: make(map[string]Handler),
		log:      log,
	}
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

// SetLogger replaces the connection's logger, e.g. once the hello
// handshake has identified the session.
func (c *Connection) SetLogger(log *slog.Logger) { c.log = log }

func (c *Connection) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return WriteEnvelope(c.rw, env)
}

// ReadLoop blocks until the connection closes, a write fails, or a handler
// ends the session. It owns the connection and closes it on return.
func (c *Connection) ReadLoop() {
	defer c.rw.Close()

	for {
		env, err := ReadEnvelope(c.rw)
		if err != nil {
			c.log.Info("connection read ended", "error", err)
			return
		}

		handler, ok := c.handlers[env.Type]
		if !ok {
			c.log.Warn("no handler for message type", "type", env.Type)
			continue
		}

		resp, err := handler(env)
		if err != nil {
			c.log.Error("handler error", "type", env.Type, "error", err)
			if sendErr := c.Send(TypeError, ErrorMessage{Message: err.Error()}); sendErr != nil {
				c.log.Error("failed to send error", "error", sendErr)
				return
			}
			if errors.Is(err, ErrEndSession) {
				return
			}
			continue
		}

		if resp != nil {
			if err := WriteEnvelope(c.rw, *resp); err != nil {
				c.log.Error("failed to send response", "type", resp.Type, "error", err)
				return
			}
			c.log.Debug("sent response", "type", resp.Type)
		}
	}
}
