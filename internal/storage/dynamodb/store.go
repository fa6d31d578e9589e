// Package dynamodb is a DynamoDB-backed ConversationStore, keyed by
// session with a time-ordered sort key carrying append order.
package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/shopassist/kbchat/internal/domain"
	"github.com/shopassist/kbchat/internal/storage"
)

// DefaultTable is the conversation history table name.
const DefaultTable = "ConversationHistory"

// API is the subset of the DynamoDB client used by the store.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Store is a DynamoDB implementation of ConversationStore.
type Store struct {
	client API
	table  string
}

var _ storage.ConversationStore = (*Store)(nil)

type turnRecord struct {
	SessionID string    `dynamodbav:"SessionId"`
	Seq       string    `dynamodbav:"Seq"`
	Role      string    `dynamodbav:"Role"`
	Content   string    `dynamodbav:"Content"`
	CreatedAt time.Time `dynamodbav:"CreatedAt"`
}

// seqKey builds the sort key for one turn: zero-padded UnixNano so
// lexicographic order matches chronological order, plus a random
// suffix so two appends landing in the same nanosecond get distinct
// keys instead of overwriting each other.
func seqKey(t time.Time) string {
	return fmt.Sprintf("%019d#%s", t.UnixNano(), uuid.New().String())
}

// New creates a Store against the given table. An empty table name
// selects DefaultTable.
func New(client API, table string) *Store {
	if table == "" {
		table = DefaultTable
	}
	return &Store{client: client, table: table}
}

func (s *Store) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	turns := []domain.Turn{}
	var startKey map[string]types.AttributeValue

	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.table),
			KeyConditionExpression: aws.String("SessionId = :sid"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":sid": &types.AttributeValueMemberS{Value: sessionID},
			},
			ScanIndexForward:  aws.Bool(true),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query turns: %w", err)
		}

		var records []turnRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
			return nil, fmt.Errorf("failed to unmarshal turns: %w", err)
		}
		for _, rec := range records {
			turns = append(turns, domain.Turn{
				Role:      domain.Role(rec.Role),
				Text:      rec.Content,
				CreatedAt: rec.CreatedAt,
			})
		}

		if len(out.LastEvaluatedKey) == 0 {
			return turns, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (s *Store) Append(ctx context.Context, sessionID string, turn domain.Turn) error {
	now := time.Now()
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = now
	}

	item, err := attributevalue.MarshalMap(turnRecord{
		SessionID: sessionID,
		Seq:       seqKey(now),
		Role:      string(turn.Role),
		Content:   turn.Text,
		CreatedAt: turn.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("failed to put turn: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	return nil
}
