package translhost

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/google/uuid"
)

// hostState tracks the dispatcher state machine.
type hostState int

const (
	// stateAwaitingConfig is the entry state; the logging bootstrap has not
	// run yet.
	stateAwaitingConfig hostState = iota
	// stateReady means the one-shot logging bootstrap happened.
	stateReady
	// stateStopped is terminal: the input stream ended or broke.
	stateStopped
)

// Host drives the session: one blocking read, one dispatch, one blocking
// write, repeated until the controller closes the stream. There are no
// concurrent in-flight requests and no state survives across messages other
// than the logging configuration.
type Host struct {
	codec      *Codec
	logs       *LogService
	logger     Logger
	translator *Translator
	state      hostState
}

// NewHost wires a codec, the logging service, and a translator into a
// session host.
func NewHost(codec *Codec, logs *LogService, translator *Translator) *Host {
	return &Host{
		codec:      codec,
		logs:       logs,
		logger:     logs,
		translator: translator,
		state:      stateAwaitingConfig,
	}
}

// Run announces readiness and processes messages until the stream ends. An
// orderly close of the input returns nil; a malformed frame also stops the
// loop gracefully. Only a fault escaping the loop itself is returned as an
// error, after being logged with a full stack trace.
func (h *Host) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorf("host loop failed: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("host loop failed: %v", r)
		}
	}()

	h.logger.Infof("host started, pid %d", os.Getpid())
	h.send(map[string]any{"status": "ready"})

	for h.state != stateStopped {
		msg, err := h.codec.ReadMessage()
		if err == io.EOF {
			h.logger.Infof("input stream closed, shutting down")
			h.state = stateStopped
			break
		}
		if err != nil {
			// The stream is unrecoverable after a malformed frame.
			h.logger.Errorf("receive failed: %v", err)
			h.state = stateStopped
			break
		}

		h.bootstrapLogging(msg)
		h.dispatch(msg)
	}

	h.logger.Infof("host stopped")
	return nil
}

// bootstrapLogging performs the one-shot logging configuration. It fires on
// the first message that carries a settings.logFilePath, or on the first
// message that carries no settings at all; a message with settings but no
// log path leaves the bootstrap pending. Configure itself is once-only, so
// later messages can never re-trigger sink attachment.
func (h *Host) bootstrapLogging(msg *Message) {
	if h.state != stateAwaitingConfig {
		return
	}
	switch {
	case msg.Settings == nil:
		h.logs.Configure("")
		h.state = stateReady
	case msg.Settings.LogFilePath != "":
		h.logs.Configure(msg.Settings.LogFilePath)
		h.state = stateReady
	}
}

// dispatch routes one message by type. A panic while handling it is caught,
// logged, and converted to an error reply; it never aborts the loop.
func (h *Host) dispatch(msg *Message) {
	id := uuid.New().String()
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorf("dispatch %s: panic handling %q message: %v\n%s", id, msg.Type, r, debug.Stack())
			h.send(map[string]any{"error": fmt.Sprintf("Host error: internal failure handling %s message", typeLabel(msg.Type))})
		}
	}()

	switch msg.Type {
	case MessageTypeTranslate:
		h.handleTranslate(id, msg)
	case MessageTypePing:
		h.logger.Debugf("dispatch %s: ping", id)
		h.send(map[string]any{"status": "pong", "pid": os.Getpid()})
	default:
		h.logger.Warnf("dispatch %s: unknown message type %q", id, msg.Type)
		h.send(map[string]any{"error": "Unknown message type: " + typeLabel(msg.Type)})
	}
}

func (h *Host) handleTranslate(id string, msg *Message) {
	if msg.Settings == nil {
		h.logger.Warnf("dispatch %s: translate request without settings", id)
		h.send(map[string]any{"error": "Host error: No settings provided with translation request."})
		return
	}
	if msg.Text == "" {
		h.logger.Warnf("dispatch %s: translate request without text", id)
		h.send(map[string]any{"error": "No text provided for translation"})
		return
	}

	h.logger.Debugf("dispatch %s: translating %d chars", id, len(msg.Text))
	result := h.translator.Translate(msg.Text, msg.Context, msg.Settings)
	h.send(result.reply())
}

// send writes one outbound frame. Failures are logged and swallowed: the
// loop proceeds as if the send succeeded.
func (h *Host) send(v any) {
	if err := h.codec.Send(v); err != nil {
		h.logger.Errorf("send failed: %v", err)
	}
}

func typeLabel(msgType string) string {
	if msgType == "" {
		return "[unknown]"
	}
	return msgType
}
