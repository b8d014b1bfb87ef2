package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/vanity-address-api/internal/domain"
)

// SearchTermRepo remembers in-flight vanity searches per wallet user so an
// interrupted purchase can pick up where it left off.
type SearchTermRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSearchTermRepo(client *dynamodb.Client, tableName string) *SearchTermRepo {
	return &SearchTermRepo{client: client, tableName: tableName}
}

// Save inserts the search-term record if absent; duplicates are ignored.
func (r *SearchTermRepo) Save(ctx context.Context, rec *domain.SearchTermRecord) error {
	rec.SearchID = searchID(rec.ApplicationID, rec.WalletUserID, rec.SearchTerm)
	rec.Created = nowMillis()
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal search term: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(search_id)"),
	})
	var ccfe *types.ConditionalCheckFailedException
	if errors.As(err, &ccfe) {
		return nil
	}
	return err
}

// Delete removes a consumed search-term record. Missing records are not an error.
func (r *SearchTermRepo) Delete(ctx context.Context, applicationID, walletUserID, term string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("search_id", searchID(applicationID, walletUserID, term)),
	})
	return err
}

func searchID(applicationID, walletUserID, term string) string {
	return strings.Join([]string{applicationID, walletUserID, term}, keySep)
}
