package model

import (
	"context"
	"errors"
	"testing"
)

func frameChan(payloads ...[]byte) <-chan Frame {
	ch := make(chan Frame, len(payloads))
	for _, p := range payloads {
		ch <- Frame{Payload: p}
	}
	close(ch)
	return ch
}

func TestDecodeStream_MessageDelta(t *testing.T) {
	frames := frameChan(
		[]byte(`{"type":"message_start","message":{"role":"assistant"}}`),
		[]byte(`{"type":"content_block_delta","delta":{"type":"text_delta","text":"Hello"}}`),
		[]byte(`{"type":"ping"}`),
		[]byte(`{"type":"content_block_delta","delta":{"type":"text_delta","text":", world"}}`),
		[]byte(`{"type":"message_stop"}`),
	)

	got, err := Collect(context.Background(), DecodeStream(context.Background(), frames, ExtractMessageDelta))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if got != "Hello, world" {
		t.Errorf("Collect() = %q, want %q", got, "Hello, world")
	}
}

func TestDecodeStream_Generation(t *testing.T) {
	frames := frameChan(
		[]byte(`{"generation":"The search results"}`),
		[]byte(`{"prompt_token_count":42}`),
		[]byte(`{"generation":" contain TVs."}`),
	)

	got, err := Collect(context.Background(), DecodeStream(context.Background(), frames, ExtractGeneration))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if got != "The search results contain TVs." {
		t.Errorf("Collect() = %q", got)
	}
}

func TestDecodeStream_MalformedFramesSkipped(t *testing.T) {
	frames := frameChan(
		[]byte(`not json at all`),
		[]byte(`{"type":"content_block_delta","delta":{"text":"ok"}}`),
		[]byte(`{"unexpected":"shape"}`),
	)

	got, err := Collect(context.Background(), DecodeStream(context.Background(), frames, ExtractMessageDelta))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("Collect() = %q, want %q", got, "ok")
	}
}

func TestDecodeStream_TransportError(t *testing.T) {
	cause := errors.New("connection reset")
	ch := make(chan Frame, 2)
	ch <- Frame{Payload: []byte(`{"type":"content_block_delta","delta":{"text":"partial"}}`)}
	ch <- Frame{Err: cause}
	close(ch)

	_, err := Collect(context.Background(), DecodeStream(context.Background(), ch, ExtractMessageDelta))
	if !errors.Is(err, cause) {
		t.Errorf("Collect() error = %v, want the transport error", err)
	}
}

func TestCollect_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Never-closing channel: cancellation must unblock the drain loop.
	ch := make(chan Fragment)
	_, err := Collect(ctx, ch)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Collect() error = %v, want context.Canceled", err)
	}
}

func TestExtractGeneration_EmptyString(t *testing.T) {
	// An explicit empty generation is still a fragment, just a zero-length one.
	text, ok := ExtractGeneration([]byte(`{"generation":""}`))
	if !ok || text != "" {
		t.Errorf("ExtractGeneration() = %q, %v, want empty fragment", text, ok)
	}
}
