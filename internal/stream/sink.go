package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gorilla/websocket"
)

// Sink delivers frames to a consumer. A Send error means the consumer is gone.
type Sink interface {
	Send(Frame) error
}

// LineSink writes newline-delimited JSON frames.
type LineSink struct {
	enc *json.Encoder
}

// NewLineSink returns a sink writing one JSON object per line to w.
func NewLineSink(w io.Writer) *LineSink {
	return &LineSink{enc: json.NewEncoder(w)}
}

func (s *LineSink) Send(f Frame) error {
	if err := s.enc.Encode(f); err != nil {
		return fmt.Errorf("stream: write frame: %w", err)
	}
	return nil
}

// FuncSink adapts a function to a Sink.
type FuncSink func(Frame) error

func (f FuncSink) Send(frame Frame) error { return f(frame) }

// WebSocketSink writes each frame as one text message.
type WebSocketSink struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

// NewWebSocketSink wraps conn. A zero writeTimeout disables write deadlines.
func NewWebSocketSink(conn *websocket.Conn, writeTimeout time.Duration) *WebSocketSink {
	return &WebSocketSink{conn: conn, writeTimeout: writeTimeout}
}

func (s *WebSocketSink) Send(f Frame) error {
	if s.writeTimeout > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
			return fmt.Errorf("stream: set write deadline: %w", err)
		}
	}
	if err := s.conn.WriteJSON(f); err != nil {
		return fmt.Errorf("stream: websocket write: %w", err)
	}
	return nil
}
