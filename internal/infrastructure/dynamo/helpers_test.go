package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnionUpdateExpr_NoExtraAttributes(t *testing.T) {
	ue := unionUpdateExpr("signin", "payload-1", 1700000000000, nil)
	assert.Equal(t, "ADD #set :m SET #upd = :upd", ue.Expr)
	assert.Equal(t, "signin", ue.Names["#set"])
	assert.Equal(t, "updated", ue.Names["#upd"])

	member, ok := ue.Values[":m"].(*types.AttributeValueMemberSS)
	require.True(t, ok)
	assert.Equal(t, []string{"payload-1"}, member.Value)

	upd, ok := ue.Values[":upd"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "1700000000000", upd.Value)
}

func TestUnionUpdateExpr_ExtraAttributes_Deterministic(t *testing.T) {
	set := map[string]string{
		"referer":        "mobile-app",
		"origin":         "https://a.example",
		"application_id": "app-1",
	}
	ue1 := unionUpdateExpr("others", "p", 1, set)
	ue2 := unionUpdateExpr("others", "p", 1, set)
	assert.Equal(t, ue1.Expr, ue2.Expr)

	// Keys must be sorted: application_id < origin < referer
	assert.Equal(t, "application_id", ue1.Names["#f0"])
	assert.Equal(t, "origin", ue1.Names["#f1"])
	assert.Equal(t, "referer", ue1.Names["#f2"])
	assert.Equal(t, "ADD #set :m SET #upd = :upd, #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)

	v, ok := ue1.Values[":v1"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "https://a.example", v.Value)
}

func TestCounterUpdateExpr(t *testing.T) {
	ue := counterUpdateExpr("stats_signin", 42)
	assert.Equal(t, "ADD #ctr :one SET #upd = :upd", ue.Expr)
	assert.Equal(t, "stats_signin", ue.Names["#ctr"])

	one, ok := ue.Values[":one"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "1", one.Value)
}

func TestCompositeKey(t *testing.T) {
	key := compositeKey("scope_id", "app-1#user-1", "origin_referer", "https://a.example#web")
	pk, ok := key["scope_id"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "app-1#user-1", pk.Value)
	sk, ok := key["origin_referer"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "https://a.example#web", sk.Value)
}
