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

// RegistrationRepo stores immutable user registrations. Uniqueness is on the
// full (origin, application, frontend user, wallet user) tuple, encoded as
// the partition key; duplicate inserts are silently ignored.
type RegistrationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRegistrationRepo(client *dynamodb.Client, tableName string) *RegistrationRepo {
	return &RegistrationRepo{client: client, tableName: tableName}
}

// Save inserts the registration if absent. A conditional put keeps the
// insert-if-absent atomic; a ConditionalCheckFailedException means the tuple
// already exists and is treated as success.
func (r *RegistrationRepo) Save(ctx context.Context, reg *domain.UserRegistration) error {
	reg.RegistrationID = registrationID(reg)
	reg.Created = nowMillis()
	item, err := attributevalue.MarshalMap(reg)
	if err != nil {
		return fmt.Errorf("marshal registration: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(registration_id)"),
	})
	var ccfe *types.ConditionalCheckFailedException
	if errors.As(err, &ccfe) {
		return nil
	}
	return err
}

func registrationID(reg *domain.UserRegistration) string {
	return strings.Join([]string{reg.Origin, reg.ApplicationID, reg.FrontendUserID, reg.WalletUserID}, keySep)
}
