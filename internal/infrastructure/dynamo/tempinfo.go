package dynamo

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/vanity-address-api/internal/domain"
	"github.com/vanity-address-api/internal/pkg/id"
)

// TempInfoRepo is a generic staging store for short-lived documents of an
// arbitrary payload type T. Records are created once, read back by id or by
// attribute equality, and deleted by the consumer once used.
type TempInfoRepo[T any] struct {
	client    *dynamodb.Client
	tableName string
}

func NewTempInfoRepo[T any](client *dynamodb.Client, tableName string) *TempInfoRepo[T] {
	return &TempInfoRepo[T]{client: client, tableName: tableName}
}

// Save stores the payload under a fresh ULID and returns it.
func (r *TempInfoRepo[T]) Save(ctx context.Context, payload T) (string, error) {
	item, err := attributevalue.MarshalMap(payload)
	if err != nil {
		return "", fmt.Errorf("marshal temp info: %w", err)
	}
	tempID := id.New()
	item["temp_id"] = &types.AttributeValueMemberS{Value: tempID}
	item["created"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(nowMillis(), 10)}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return "", err
	}
	return tempID, nil
}

// Get returns the payload stored under tempID, or ErrNotFound.
func (r *TempInfoRepo[T]) Get(ctx context.Context, tempID string) (*T, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("temp_id", tempID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("temp info not found: %w", domain.ErrNotFound)
	}
	var payload T
	if err := attributevalue.UnmarshalMap(out.Item, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FindFirst scans for the first record whose attributes equal the filter
// values. The table is small and short-lived, so a filtered scan is fine.
func (r *TempInfoRepo[T]) FindFirst(ctx context.Context, filter map[string]string) (*T, error) {
	names := make(map[string]string)
	values := make(map[string]types.AttributeValue)
	expr := ""
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		n := fmt.Sprintf("#f%d", i)
		v := fmt.Sprintf(":v%d", i)
		names[n] = k
		values[v] = &types.AttributeValueMemberS{Value: filter[k]}
		if i > 0 {
			expr += " AND "
		}
		expr += fmt.Sprintf("%s = %s", n, v)
	}
	if expr == "" {
		return nil, fmt.Errorf("empty temp info filter: %w", domain.ErrBadRequest)
	}
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("temp info not found: %w", domain.ErrNotFound)
	}
	var payload T
	if err := attributevalue.UnmarshalMap(out.Items[0], &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Delete removes a consumed record. Missing records are not an error.
func (r *TempInfoRepo[T]) Delete(ctx context.Context, tempID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("temp_id", tempID),
	})
	return err
}
