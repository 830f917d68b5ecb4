package netswitch

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	wmessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/othellosim/desim/internal/message"
)

// wireDTO is the JSON-serializable shape of whichever envelope crossed the
// switch, used only to stamp a correlatable Watermill envelope around the
// dispatch for structured logging — the simulated transport itself stays on
// engine.Chan (see internal/engine), since Watermill's own pub/sub transports
// deliver asynchronously on their own goroutines and would reintroduce the
// non-deterministic scheduling spec §5 explicitly forbids. This mirrors the
// teacher's own wire-envelope construction (internal/adapter/pubsub/dispatcher.go's
// message.NewMessage(watermill.NewUUID(), payload)) without adopting its
// asynchronous delivery loop.
type wireDTO struct {
	Kind   string `json:"kind"`
	ID     int64  `json:"id"`
	Detail any    `json:"detail"`
}

// encode wraps msg in a Watermill message carrying a fresh correlation UUID,
// for debug logging only (see Switch.run in switch.go).
func encode(msg message.Envelope) (*wmessage.Message, error) {
	dto := wireDTO{Kind: msg.Kind().String(), ID: msg.ID()}
	switch m := msg.(type) {
	case *message.Map:
		dto.Detail = struct {
			MaxDepth, CurDepth, SourceHost int
			SourceMsgID                    int64
		}{m.MaxDepth, m.CurDepth, m.SourceHost, m.SourceMsgID}
	case *message.Reduce:
		dto.Detail = struct {
			TargetHostID int
			TargetMsgID  int64
		}{m.TargetHostID, m.TargetMsgID}
	}
	payload, err := json.Marshal(dto)
	if err != nil {
		return nil, err
	}
	wm := wmessage.NewMessage(watermill.NewUUID(), payload)
	wm.Metadata.Set("kind", dto.Kind)
	return wm, nil
}
