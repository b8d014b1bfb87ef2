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

// PurchaseRepo tracks purchased vanity addresses per buyer account.
// PK: account, SK: owner_key (origin#application_id).
type PurchaseRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPurchaseRepo(client *dynamodb.Client, tableName string) *PurchaseRepo {
	return &PurchaseRepo{client: client, tableName: tableName}
}

// AddPurchase unions vanityAddress into the buyer's purchased set,
// creating the record on first purchase. Append-only by construction.
func (r *PurchaseRepo) AddPurchase(ctx context.Context, origin, applicationID, buyerAccount, vanityAddress string) error {
	ue := purchaseUpdateExpr(origin, applicationID, vanityAddress, nowMillis())
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       compositeKey("account", buyerAccount, "owner_key", origin+keySep+applicationID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		return fmt.Errorf("add purchase: %w", err)
	}
	return nil
}

// ByAccount returns all purchase records for one buyer account.
func (r *PurchaseRepo) ByAccount(ctx context.Context, account string) ([]domain.PurchaseRecord, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("account = :a"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":a": &types.AttributeValueMemberS{Value: account},
		},
	})
	if err != nil {
		return nil, err
	}
	return unmarshalPurchases(out.Items)
}

// ByApplication returns all purchase records under one application via GSI.
func (r *PurchaseRepo) ByApplication(ctx context.Context, applicationID string) ([]domain.PurchaseRecord, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("application_id-index"),
		KeyConditionExpression: aws.String("application_id = :a"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":a": &types.AttributeValueMemberS{Value: applicationID},
		},
	})
	if err != nil {
		return nil, err
	}
	return unmarshalPurchases(out.Items)
}

// All returns every purchase record.
func (r *PurchaseRepo) All(ctx context.Context) ([]domain.PurchaseRecord, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}
	return unmarshalPurchases(out.Items)
}

// purchaseUpdateExpr builds the purchase upsert. The SET clause carries only
// non-key attributes: account and owner_key are the table's key schema and
// UpdateItem rejects any expression that assigns a key attribute. The Key map
// already writes them, and key attributes unmarshal as plain attributes on read.
func purchaseUpdateExpr(origin, applicationID, vanityAddress string, now int64) updateExpr {
	return unionUpdateExpr("vanity_addresses", vanityAddress, now, map[string]string{
		fieldOrigin:        origin,
		fieldApplicationID: applicationID,
	})
}

func unmarshalPurchases(items []map[string]types.AttributeValue) ([]domain.PurchaseRecord, error) {
	var recs []domain.PurchaseRecord
	if err := attributevalue.UnmarshalListOfMaps(items, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
