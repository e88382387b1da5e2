// Package stream defines the frames exchanged with a live client and the
// sinks that deliver them.
package stream

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ziadkadry99/atlas/internal/graph"
	"github.com/ziadkadry99/atlas/internal/layout"
)

// FrameType tags every outbound and inbound message.
type FrameType string

const (
	FrameNode      FrameType = "node"
	FrameEdge      FrameType = "edge"
	FramePositions FrameType = "positions"
	FrameComplete  FrameType = "complete"
	FrameMode      FrameType = "mode"
)

// Frame is one outbound message.
type Frame struct {
	Type FrameType `json:"type"`
	Data any       `json:"data,omitempty"`
}

// NodeFrame snapshots n so later in-place updates do not leak into a frame
// that is still queued.
func NodeFrame(n *graph.FileNode) Frame {
	snapshot := *n
	if n.CoChanges != nil {
		snapshot.CoChanges = append([]graph.CoChange(nil), n.CoChanges...)
	}
	return Frame{Type: FrameNode, Data: snapshot}
}

func EdgeFrame(e graph.Edge) Frame {
	return Frame{Type: FrameEdge, Data: e}
}

func PositionsFrame(p layout.Positions) Frame {
	return Frame{Type: FramePositions, Data: p}
}

func CompleteFrame() Frame {
	return Frame{Type: FrameComplete}
}

// Control is an inbound command from the client.
type Control struct {
	Type FrameType `json:"type"`
	Mode string    `json:"mode,omitempty"`
}

// ErrUnknownControl is returned for well-formed messages of an unsupported type.
var ErrUnknownControl = errors.New("stream: unknown control message")

// DecodeControl parses an inbound message. Only mode messages are accepted;
// the mode value is validated by the caller.
func DecodeControl(data []byte) (Control, error) {
	var c Control
	if err := json.Unmarshal(data, &c); err != nil {
		return Control{}, fmt.Errorf("stream: decode control: %w", err)
	}
	if c.Type != FrameMode {
		return Control{}, fmt.Errorf("%w: %q", ErrUnknownControl, c.Type)
	}
	return c, nil
}
