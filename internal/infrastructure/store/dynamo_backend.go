package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoBackend keeps cart envelopes in a DynamoDB table keyed by the
// storage key, for serverless deployments of the cart sync service.
type DynamoBackend struct {
	client    *dynamodb.Client
	tableName string
}

// dynamoEnvelope is the DynamoDB item layout. The envelope JSON is stored
// opaque; validation and expiry stay in CartStore.
type dynamoEnvelope struct {
	Key       string `dynamodbav:"key"`
	Data      string `dynamodbav:"data"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

func NewDynamoBackend(client *dynamodb.Client, tableName string) *DynamoBackend {
	return &DynamoBackend{client: client, tableName: tableName}
}

func (b *DynamoBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	result, err := b.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(b.tableName),
		Key: map[string]types.AttributeValue{
			"key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get envelope: %w", err)
	}
	if result.Item == nil {
		return nil, false, nil
	}

	var item dynamoEnvelope
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	return []byte(item.Data), true, nil
}

func (b *DynamoBackend) Set(ctx context.Context, key string, value []byte) error {
	item := dynamoEnvelope{
		Key:       key,
		Data:      string(value),
		UpdatedAt: time.Now().Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	// Last writer wins, matching the cross-tab protocol.
	_, err = b.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(b.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put envelope: %w", err)
	}
	return nil
}

func (b *DynamoBackend) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(b.tableName),
		Key: map[string]types.AttributeValue{
			"key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete envelope: %w", err)
	}
	return nil
}
