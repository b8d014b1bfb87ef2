package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// StatisticsRepo keeps per-origin/per-application transaction counters.
// PK: stats_id (origin#application_id), SK: type. Counters are flat numeric
// attributes named stats_<transaction type>.
type StatisticsRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewStatisticsRepo(client *dynamodb.Client, tableName string) *StatisticsRepo {
	return &StatisticsRepo{client: client, tableName: tableName}
}

// Increment atomically bumps the counter for txType, upserting the statistics
// record on first use. ADD on a number attribute is atomic server-side.
func (r *StatisticsRepo) Increment(ctx context.Context, origin, applicationID, txType string) error {
	attr := statPrefix + strings.ToLower(strings.TrimSpace(txType))
	ue := counterUpdateExpr(attr, nowMillis())
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       compositeKey("stats_id", origin+keySep+applicationID, "type", statsTypeTransactions),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		return fmt.Errorf("increment statistics: %w", err)
	}
	return nil
}

// Totals returns the counter per transaction type, or an empty map when the
// record does not exist yet.
func (r *StatisticsRepo) Totals(ctx context.Context, origin, applicationID string) (map[string]int64, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("stats_id", origin+keySep+applicationID, "type", statsTypeTransactions),
	})
	if err != nil {
		return nil, err
	}
	totals := make(map[string]int64)
	for name, av := range out.Item {
		if !strings.HasPrefix(name, statPrefix) {
			continue
		}
		n, ok := av.(*types.AttributeValueMemberN)
		if !ok {
			continue
		}
		v, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			continue
		}
		totals[strings.TrimPrefix(name, statPrefix)] = v
	}
	return totals, nil
}
