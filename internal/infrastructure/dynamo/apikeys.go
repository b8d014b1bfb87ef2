package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/vanity-address-api/internal/domain"
)

// APIKeyRepo reads the application API secret table.
type APIKeyRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAPIKeyRepo(client *dynamodb.Client, tableName string) *APIKeyRepo {
	return &APIKeyRepo{client: client, tableName: tableName}
}

// All returns every application key. The table holds one row per application,
// so a single unpaginated scan is enough.
func (r *APIKeyRepo) All(ctx context.Context) ([]domain.ApplicationKey, error) {
	res, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, fmt.Errorf("scan api keys: %w", err)
	}
	var keys []domain.ApplicationKey
	if err := attributevalue.UnmarshalListOfMaps(res.Items, &keys); err != nil {
		return nil, fmt.Errorf("unmarshal api keys: %w", err)
	}
	return keys, nil
}
