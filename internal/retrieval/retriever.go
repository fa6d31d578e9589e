// Package retrieval fetches knowledge-base passages relevant to a
// query. The vector search itself is the knowledge base's concern; this
// package only preserves the relevance order it returns.
package retrieval

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"

	"github.com/shopassist/kbchat/internal/domain"
)

// Retriever returns ranked passages for a query. Index is 1-based in
// relevance order.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]domain.RetrievedDocument, error)
}

// RetrieveAPI is the subset of the Bedrock agent runtime client used
// for knowledge-base search.
type RetrieveAPI interface {
	Retrieve(ctx context.Context, params *bedrockagentruntime.RetrieveInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveOutput, error)
}

// KnowledgeBase is a Retriever backed by a Bedrock knowledge base.
type KnowledgeBase struct {
	client     RetrieveAPI
	kbID       string
	numResults int32
}

// NewKnowledgeBase creates a retriever for the given knowledge base.
func NewKnowledgeBase(client RetrieveAPI, kbID string, numResults int32) *KnowledgeBase {
	return &KnowledgeBase{client: client, kbID: kbID, numResults: numResults}
}

func (k *KnowledgeBase) Retrieve(ctx context.Context, query string) ([]domain.RetrievedDocument, error) {
	out, err := k.client.Retrieve(ctx, &bedrockagentruntime.RetrieveInput{
		KnowledgeBaseId: aws.String(k.kbID),
		RetrievalQuery:  &types.KnowledgeBaseQuery{Text: aws.String(query)},
		RetrievalConfiguration: &types.KnowledgeBaseRetrievalConfiguration{
			VectorSearchConfiguration: &types.KnowledgeBaseVectorSearchConfiguration{
				NumberOfResults: aws.Int32(k.numResults),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("knowledge base retrieve: %w", err)
	}

	docs := make([]domain.RetrievedDocument, 0, len(out.RetrievalResults))
	for i, result := range out.RetrievalResults {
		content := ""
		if result.Content != nil && result.Content.Text != nil {
			content = *result.Content.Text
		}
		docs = append(docs, domain.RetrievedDocument{
			Index:   i + 1,
			Content: content,
		})
	}
	return docs, nil
}
