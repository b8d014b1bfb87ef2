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

// LinkageRepo provides the payload-linkage operations shared by the
// wallet-user and ledger-account tables. Both use PK scope_id
// (application_id#subject) and SK origin_referer (origin#referer).
type LinkageRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewLinkageRepo(client *dynamodb.Client, tableName string) *LinkageRepo {
	return &LinkageRepo{client: client, tableName: tableName}
}

// AddPayload unions payloadID into the category set of the record identified
// by key, creating the record if absent. The whole merge is one UpdateItem,
// so concurrent callers on the same scope key cannot overwrite each other.
// walletUserID, when non-empty, is stamped onto the record (account variant).
func (r *LinkageRepo) AddPayload(ctx context.Context, key domain.ScopeKey, walletUserID string, cat domain.PayloadCategory, payloadID string) error {
	set := map[string]string{
		fieldOrigin:        key.Origin,
		fieldReferer:       key.Referer,
		fieldApplicationID: key.ApplicationID,
		fieldSubject:       key.Subject,
	}
	if walletUserID != "" {
		set[fieldWalletUserID] = walletUserID
	}
	ue := unionUpdateExpr(string(cat), payloadID, nowMillis(), set)
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       compositeKey("scope_id", scopeID(key.ApplicationID, key.Subject), "origin_referer", refererKey(key)),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		return fmt.Errorf("add payload: %w", err)
	}
	return nil
}

// Get returns the single record for an exact scope key,
// or ErrNotFound when no record exists.
func (r *LinkageRepo) Get(ctx context.Context, key domain.ScopeKey) (*domain.LinkageRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("scope_id", scopeID(key.ApplicationID, key.Subject), "origin_referer", refererKey(key)),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("linkage record not found: %w", domain.ErrNotFound)
	}
	var rec domain.LinkageRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListBySubject returns all records for one (application, subject) pair
// across every origin/referer combination.
func (r *LinkageRepo) ListBySubject(ctx context.Context, applicationID, subject string) ([]domain.LinkageRecord, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("scope_id = :sid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sid": &types.AttributeValueMemberS{Value: scopeID(applicationID, subject)},
		},
	})
	if err != nil {
		return nil, err
	}
	var recs []domain.LinkageRecord
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func scopeID(applicationID, subject string) string {
	return applicationID + keySep + subject
}

func refererKey(key domain.ScopeKey) string {
	return key.Origin + keySep + key.Referer
}
