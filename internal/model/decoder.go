package model

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
)

// Fragment is one decoded text piece of a streamed answer.
type Fragment struct {
	Text string
	Err  error
}

// ExtractFunc pulls the generation text out of one decoded frame
// payload. ok is false when the payload does not carry text, in which
// case the frame is skipped without error.
type ExtractFunc func(payload []byte) (text string, ok bool)

// DecodeStream maps transport frames to text fragments. Frames without
// a recognized payload shape are skipped; frames whose payload is not
// valid JSON are skipped as well, matching the lenient reference
// behavior, but logged at debug level. The returned channel closes when
// frames closes and may be consumed exactly once.
func DecodeStream(ctx context.Context, frames <-chan Frame, extract ExtractFunc) <-chan Fragment {
	out := make(chan Fragment)
	go func() {
		defer close(out)
		for frame := range frames {
			if frame.Err != nil {
				select {
				case out <- Fragment{Err: frame.Err}:
				case <-ctx.Done():
				}
				return
			}
			text, ok := extract(frame.Payload)
			if !ok {
				continue
			}
			select {
			case out <- Fragment{Text: text}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Collect drains a fragment stream to completion and concatenates the
// fragments in arrival order.
func Collect(ctx context.Context, fragments <-chan Fragment) (string, error) {
	var b strings.Builder
	for {
		select {
		case fragment, ok := <-fragments:
			if !ok {
				return b.String(), nil
			}
			if fragment.Err != nil {
				return "", fragment.Err
			}
			b.WriteString(fragment.Text)
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// ExtractMessageDelta decodes message-style frames: text rides in
// content_block_delta events under delta.text. All other frame types
// (message_start, ping, content_block_stop, ...) carry no text.
func ExtractMessageDelta(payload []byte) (string, bool) {
	var chunk struct {
		Type  string `json:"type"`
		Delta struct {
			Text string `json:"text"`
		} `json:"delta"`
	}
	if err := json.Unmarshal(payload, &chunk); err != nil {
		slog.Debug("skipping malformed stream frame", slog.String("error", err.Error()))
		return "", false
	}
	if chunk.Type != "content_block_delta" {
		return "", false
	}
	return chunk.Delta.Text, true
}

// ExtractGeneration decodes completion-style frames carrying a
// generation field.
func ExtractGeneration(payload []byte) (string, bool) {
	var chunk struct {
		Generation *string `json:"generation"`
	}
	if err := json.Unmarshal(payload, &chunk); err != nil {
		slog.Debug("skipping malformed stream frame", slog.String("error", err.Error()))
		return "", false
	}
	if chunk.Generation == nil {
		return "", false
	}
	return *chunk.Generation, true
}
