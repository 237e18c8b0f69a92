package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/seller-panel/internal/events"
)

// DynamoAuditArchive keeps a long-term copy of order events in DynamoDB.
// Archived items are streamed to Kinesis via the DynamoDB Kinesis integration,
// which is where the lambda notifier picks them up.
type DynamoAuditArchive struct {
	client    *dynamodb.Client
	tableName string
}

// archiveItem represents the DynamoDB item structure
type archiveItem struct {
	OrderID   string `dynamodbav:"order_id"`
	ID        string `dynamodbav:"id"`
	EventType string `dynamodbav:"event_type"`
	Data      string `dynamodbav:"data"`
	CreatedAt string `dynamodbav:"created_at"`
	GSI1PK    string `dynamodbav:"gsi1pk"`
}

func NewDynamoAuditArchive(client *dynamodb.Client, tableName string) *DynamoAuditArchive {
	return &DynamoAuditArchive{
		client:    client,
		tableName: tableName,
	}
}

// Archive stores one event envelope. The write is conditional on the event ID
// so Kafka redeliveries do not produce duplicate archive rows.
func (a *DynamoAuditArchive) Archive(ctx context.Context, env *events.Envelope) error {
	item := archiveItem{
		OrderID:   env.OrderID,
		ID:        env.ID,
		EventType: env.Type,
		Data:      string(env.Data),
		CreatedAt: env.Timestamp.Format(time.RFC3339Nano),
		GSI1PK:    "EVENTS", // Fixed value for GSI1 to enable ListAll
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal archive item: %w", err)
	}

	_, err = a.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(a.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(order_id) AND attribute_not_exists(id)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			// Already archived, redelivery.
			return nil
		}
		return fmt.Errorf("failed to put archive item: %w", err)
	}
	return nil
}

// ListByOrder returns the archived events for one order, oldest first.
func (a *DynamoAuditArchive) ListByOrder(ctx context.Context, orderID string) ([]*events.Envelope, error) {
	result, err := a.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(a.tableName),
		KeyConditionExpression: aws.String("order_id = :oid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":oid": &types.AttributeValueMemberS{Value: orderID},
		},
		ScanIndexForward: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query archive: %w", err)
	}

	return unmarshalArchiveItems(result.Items)
}

// ListAll returns every archived event via GSI1, oldest first.
func (a *DynamoAuditArchive) ListAll(ctx context.Context) ([]*events.Envelope, error) {
	result, err := a.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(a.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("gsi1pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "EVENTS"},
		},
		ScanIndexForward: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query archive: %w", err)
	}

	return unmarshalArchiveItems(result.Items)
}

func unmarshalArchiveItems(items []map[string]types.AttributeValue) ([]*events.Envelope, error) {
	envelopes := make([]*events.Envelope, 0, len(items))

	for _, item := range items {
		var ai archiveItem
		if err := attributevalue.UnmarshalMap(item, &ai); err != nil {
			return nil, fmt.Errorf("failed to unmarshal archive item: %w", err)
		}

		timestamp, _ := time.Parse(time.RFC3339Nano, ai.CreatedAt)

		envelopes = append(envelopes, &events.Envelope{
			ID:        ai.ID,
			OrderID:   ai.OrderID,
			Type:      ai.EventType,
			Data:      json.RawMessage(ai.Data),
			Timestamp: timestamp,
		})
	}

	return envelopes, nil
}
