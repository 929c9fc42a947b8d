package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Key attribute names for the single-table layout
const (
	partitionKey = "PK"
	sortKey      = "SK"
)

// BatchGetItem accepts at most this many keys per request
const batchGetLimit = 100

// SortCondition selects how the sort key is matched in a query
type SortCondition int

const (
	SortBeginsWith SortCondition = iota
	SortEqual
	SortGreater
	SortGreaterEqual
	SortBetween
)

// QueryOptions narrows a partition query
type QueryOptions struct {
	Condition SortCondition
	SortValue string
	// SortUpper is the inclusive upper bound for SortBetween
	SortUpper  string
	Limit      int32
	Descending bool
	// StartKey resumes a previous page
	StartKey map[string]types.AttributeValue
}

// QueryPage is one page of query results
type QueryPage struct {
	Items   []map[string]types.AttributeValue
	LastKey map[string]types.AttributeValue
}

// Key addresses a single item
type Key struct {
	PK string
	SK string
}

// TableClient wraps the low-level DynamoDB operations used by the
// secondary store. All items live in one table keyed by PK and SK.
type TableClient struct {
	client    *dynamodb.Client
	tableName string
}

// NewTableClient creates a table client
func NewTableClient(client *dynamodb.Client, tableName string) *TableClient {
	return &TableClient{
		client:    client,
		tableName: tableName,
	}
}

// TableName returns the configured table name
func (c *TableClient) TableName() string {
	return c.tableName
}

// Put writes an item
func (c *TableClient) Put(ctx context.Context, item map[string]types.AttributeValue) error {
	_, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &c.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}

// Get fetches a single item by key; returns nil when absent
func (c *TableClient) Get(ctx context.Context, key Key) (map[string]types.AttributeValue, error) {
	result, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &c.tableName,
		Key:       marshalKey(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}
	return result.Item, nil
}

// Delete removes a single item by key
func (c *TableClient) Delete(ctx context.Context, key Key) error {
	_, err := c.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &c.tableName,
		Key:       marshalKey(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// Query fetches one page of items in a partition
func (c *TableClient) Query(ctx context.Context, pk string, opts QueryOptions) (*QueryPage, error) {
	expr, err := buildKeyCondition(pk, opts)
	if err != nil {
		return nil, err
	}

	input := &dynamodb.QueryInput{
		TableName:                 &c.tableName,
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ExclusiveStartKey:         opts.StartKey,
	}
	if opts.Limit > 0 {
		input.Limit = &opts.Limit
	}
	if opts.Descending {
		scanForward := false
		input.ScanIndexForward = &scanForward
	}

	result, err := c.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query partition %s: %w", pk, err)
	}

	return &QueryPage{
		Items:   result.Items,
		LastKey: result.LastEvaluatedKey,
	}, nil
}

// BatchGet fetches up to 100 items by key in one round trip
func (c *TableClient) BatchGet(ctx context.Context, keys []Key) ([]map[string]types.AttributeValue, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	if len(keys) > batchGetLimit {
		return nil, fmt.Errorf("batch get supports at most %d keys, got %d", batchGetLimit, len(keys))
	}

	requestKeys := make([]map[string]types.AttributeValue, 0, len(keys))
	for _, key := range keys {
		requestKeys = append(requestKeys, marshalKey(key))
	}

	result, err := c.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
		RequestItems: map[string]types.KeysAndAttributes{
			c.tableName: {Keys: requestKeys},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to batch get items: %w", err)
	}

	return result.Responses[c.tableName], nil
}

// buildKeyCondition assembles the key condition expression for a query
func buildKeyCondition(pk string, opts QueryOptions) (expression.Expression, error) {
	keyCond := expression.Key(partitionKey).Equal(expression.Value(pk))

	if opts.SortValue != "" {
		var sortCond expression.KeyConditionBuilder
		switch opts.Condition {
		case SortEqual:
			sortCond = expression.Key(sortKey).Equal(expression.Value(opts.SortValue))
		case SortGreater:
			sortCond = expression.Key(sortKey).GreaterThan(expression.Value(opts.SortValue))
		case SortGreaterEqual:
			sortCond = expression.Key(sortKey).GreaterThanEqual(expression.Value(opts.SortValue))
		case SortBetween:
			sortCond = expression.Key(sortKey).Between(expression.Value(opts.SortValue), expression.Value(opts.SortUpper))
		default:
			sortCond = expression.Key(sortKey).BeginsWith(opts.SortValue)
		}
		keyCond = keyCond.And(sortCond)
	}

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return expression.Expression{}, fmt.Errorf("failed to build key condition: %w", err)
	}
	return expr, nil
}

func marshalKey(key Key) map[string]types.AttributeValue {
	pk, _ := attributevalue.Marshal(key.PK)
	sk, _ := attributevalue.Marshal(key.SK)
	return map[string]types.AttributeValue{
		partitionKey: pk,
		sortKey:      sk,
	}
}
