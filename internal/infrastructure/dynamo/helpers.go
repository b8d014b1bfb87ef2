package dynamo

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// keySep joins compound key parts. None of the joined values (origins,
// application ids, ledger accounts, wallet user ids) may contain it.
const keySep = "#"

// updateExpr bundles a DynamoDB update expression with its attribute maps.
type updateExpr struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// compositeKey builds a DynamoDB primary key with two string attributes (PK + SK).
func compositeKey(pkName, pkValue, skName, skValue string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		pkName: &types.AttributeValueMemberS{Value: pkValue},
		skName: &types.AttributeValueMemberS{Value: skValue},
	}
}

// unionUpdateExpr builds a single upsert expression that unions member into
// the string set named setAttr, stamps the updated attribute, and SETs the
// given plain string attributes. Because ADD on a string set is atomic and
// UpdateItem creates the item when absent, concurrent writers on the same key
// can never lose each other's member.
func unionUpdateExpr(setAttr, member string, now int64, set map[string]string) updateExpr {
	names := map[string]string{
		"#set": setAttr,
		"#upd": fieldUpdated,
	}
	values := map[string]types.AttributeValue{
		":m":   &types.AttributeValueMemberSS{Value: []string{member}},
		":upd": &types.AttributeValueMemberN{Value: strconv.FormatInt(now, 10)},
	}
	expr := "ADD #set :m SET #upd = :upd"

	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		n := fmt.Sprintf("#f%d", i)
		v := fmt.Sprintf(":v%d", i)
		names[n] = k
		values[v] = &types.AttributeValueMemberS{Value: set[k]}
		expr += fmt.Sprintf(", %s = %s", n, v)
	}
	return updateExpr{Expr: expr, Names: names, Values: values}
}

// counterUpdateExpr builds an upsert expression that atomically increments
// one numeric counter attribute and stamps updated.
func counterUpdateExpr(counterAttr string, now int64) updateExpr {
	return updateExpr{
		Expr: "ADD #ctr :one SET #upd = :upd",
		Names: map[string]string{
			"#ctr": counterAttr,
			"#upd": fieldUpdated,
		},
		Values: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
			":upd": &types.AttributeValueMemberN{Value: strconv.FormatInt(now, 10)},
		},
	}
}

// nowMillis is the updated/created stamp used across all repos.
// Epoch milliseconds sort correctly as DynamoDB numbers.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}
