package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/vanity-address-api/internal/domain"
)

// OriginRepo reads the per-application origin configuration table.
// The table is tiny and read in bulk; the origin cache holds the snapshot.
type OriginRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOriginRepo(client *dynamodb.Client, tableName string) *OriginRepo {
	return &OriginRepo{client: client, tableName: tableName}
}

// All returns every origin configuration via a full table scan.
func (r *OriginRepo) All(ctx context.Context) ([]domain.OriginConfig, error) {
	var out []domain.OriginConfig
	var startKey map[string]types.AttributeValue
	for {
		res, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scan origins: %w", err)
		}
		var page []domain.OriginConfig
		if err := attributevalue.UnmarshalListOfMaps(res.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal origins: %w", err)
		}
		out = append(out, page...)
		if res.LastEvaluatedKey == nil {
			return out, nil
		}
		startKey = res.LastEvaluatedKey
	}
}
