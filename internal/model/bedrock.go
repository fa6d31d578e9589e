package model

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// Frame is one opaque event from the model-invocation transport. A
// non-nil Err terminates the stream.
type Frame struct {
	Payload []byte
	Err     error
}

// Invoker abstracts the model-invocation transport so backends and
// tests do not touch the Bedrock client directly.
type Invoker interface {
	// Invoke sends a single-shot request and returns the raw response body.
	Invoke(ctx context.Context, modelID string, body []byte) ([]byte, error)

	// InvokeStream sends a streaming request. The returned channel is
	// closed when the transport stream ends and may be consumed once.
	InvokeStream(ctx context.Context, modelID string, body []byte) (<-chan Frame, error)
}

// InvokeAPI is the subset of the Bedrock runtime client used for model
// invocation.
type InvokeAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
	InvokeModelWithResponseStream(ctx context.Context, params *bedrockruntime.InvokeModelWithResponseStreamInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelWithResponseStreamOutput, error)
}

// BedrockInvoker implements Invoker over the Bedrock runtime API.
type BedrockInvoker struct {
	client InvokeAPI
}

// NewInvoker creates a BedrockInvoker.
func NewInvoker(client InvokeAPI) *BedrockInvoker {
	return &BedrockInvoker{client: client}
}

func (b *BedrockInvoker) Invoke(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke model: %w", err)
	}
	return out.Body, nil
}

func (b *BedrockInvoker) InvokeStream(ctx context.Context, modelID string, body []byte) (<-chan Frame, error) {
	out, err := b.client.InvokeModelWithResponseStream(ctx, &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke model stream: %w", err)
	}

	frames := make(chan Frame)
	go func() {
		defer close(frames)

		stream := out.GetStream()
		defer stream.Close()

		for event := range stream.Events() {
			chunk, ok := event.(*types.ResponseStreamMemberChunk)
			if !ok {
				// Other member types carry no generation text.
				continue
			}
			select {
			case frames <- Frame{Payload: chunk.Value.Bytes}:
			case <-ctx.Done():
				return
			}
		}

		if err := stream.Err(); err != nil {
			select {
			case frames <- Frame{Err: fmt.Errorf("stream read: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()

	return frames, nil
}
