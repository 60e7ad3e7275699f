package server

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "warning"
}

// WebLogger implements core.Logger by forwarding to zap and copying every
// message to a console channel for the render summary
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
	sugar       *zap.SugaredLogger
}

// NewWebLogger creates a new web logger for a specific render
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage, sugar *zap.SugaredLogger) core.Logger {
	if sugar == nil {
		sugar = zap.NewNop().Sugar()
	}
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
		sugar:       sugar.With("render", renderID),
	}
}

func (wl *WebLogger) Debugf(format string, args ...interface{}) {
	wl.sugar.Debugf(format, args...)
	wl.send("debug", format, args)
}

func (wl *WebLogger) Infof(format string, args ...interface{}) {
	wl.sugar.Infof(format, args...)
	wl.send("info", format, args)
}

func (wl *WebLogger) Warnf(format string, args ...interface{}) {
	wl.sugar.Warnf(format, args...)
	wl.send("warning", format, args)
}

// send never blocks; a full channel drops the message
func (wl *WebLogger) send(level, format string, args []interface{}) {
	if wl.consoleChan == nil {
		return
	}
	select {
	case wl.consoleChan <- ConsoleMessage{
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
		Level:     level,
	}:
	default:
	}
}

// drainConsole collects whatever is buffered without waiting
func drainConsole(ch <-chan ConsoleMessage) []ConsoleMessage {
	messages := []ConsoleMessage{}
	for {
		select {
		case msg := <-ch:
			messages = append(messages, msg)
		default:
			return messages
		}
	}
}
