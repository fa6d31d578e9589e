// Package guard screens text through a Bedrock guardrail. The
// classification itself is the guardrail's concern; this package only
// turns its verdict into a pass-through or a terminal rejection.
package guard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/shopassist/kbchat/internal/domain"
)

// Sources for a guardrail check. Input is checked before any model
// spend; output is checked after the full answer is accumulated.
const (
	SourceInput  = types.GuardrailContentSourceInput
	SourceOutput = types.GuardrailContentSourceOutput
)

// API is the subset of the Bedrock runtime client used for guardrail
// checks.
type API interface {
	ApplyGuardrail(ctx context.Context, params *bedrockruntime.ApplyGuardrailInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ApplyGuardrailOutput, error)
}

// Guard wraps one configured guardrail. A nil *Guard is a disabled
// guard: Check passes everything through.
type Guard struct {
	api     API
	id      string
	version string
	logger  *slog.Logger
}

// New creates a Guard for the given guardrail identifier and version.
func New(api API, id, version string, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{api: api, id: id, version: version, logger: logger}
}

// Check runs text through the guardrail. On a "none" verdict the text
// passed; any other action fails the turn with a blocked error carrying
// the guardrail call's request ID. Check never modifies the text.
func (g *Guard) Check(ctx context.Context, text string, source types.GuardrailContentSource) error {
	if g == nil {
		return nil
	}

	out, err := g.api.ApplyGuardrail(ctx, &bedrockruntime.ApplyGuardrailInput{
		GuardrailIdentifier: aws.String(g.id),
		GuardrailVersion:    aws.String(g.version),
		Source:              source,
		Content: []types.GuardrailContentBlock{
			&types.GuardrailContentBlockMemberText{
				Value: types.GuardrailTextBlock{
					Text:       aws.String(text),
					Qualifiers: []types.GuardrailContentQualifier{types.GuardrailContentQualifierGuardContent},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("apply guardrail: %w", err)
	}

	requestID, _ := awsmiddleware.GetRequestIDMetadata(out.ResultMetadata)

	if out.Action != types.GuardrailActionNone {
		g.logger.Info("guardrail intervened",
			slog.String("guardrail_id", g.id),
			slog.String("source", string(source)),
			slog.String("action", string(out.Action)),
			slog.String("aws_request_id", requestID),
		)
		return domain.ErrBlocked(requestID)
	}

	return nil
}
