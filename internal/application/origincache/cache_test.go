package origincache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vanity-address-api/internal/domain"
)

type fakeLoader struct {
	origins     []domain.OriginConfig
	keys        []domain.ApplicationKey
	originCalls int
	keyCalls    int
	err         error
}

func (f *fakeLoader) AllOrigins(context.Context) ([]domain.OriginConfig, error) {
	f.originCalls++
	return f.origins, f.err
}

func (f *fakeLoader) AllApplicationKeys(context.Context) ([]domain.ApplicationKey, error) {
	f.keyCalls++
	return f.keys, f.err
}

func testLoader() *fakeLoader {
	return &fakeLoader{
		origins: []domain.OriginConfig{
			{
				ApplicationID: "app-1",
				Origin:        "https://a.example,https://b.example",
				ReturnURLs: []domain.ReturnURLRule{
					{From: "web-frontend", ToWeb: "https://a.example/done", ToApp: "myapp://done"},
					{From: "mobile-app", ToWeb: "https://a.example/m", ToApp: "myapp://m"},
				},
			},
			{ApplicationID: "app-2", Origin: "https://c.example"},
		},
		keys: []domain.ApplicationKey{
			{ApplicationID: "app-1", APISecret: "secret-1"},
			{ApplicationID: "app-2", APISecret: "secret-2"},
		},
	}
}

func TestLoadOnce_SubsequentCallsHitSnapshot(t *testing.T) {
	f := testLoader()
	c := New(f)
	ctx := context.Background()

	_ = c.AllOrigins(ctx)
	_ = c.ApplicationIDForOrigin(ctx, "https://a.example")
	_ = c.APISecret(ctx, "app-1")

	assert.Equal(t, 1, f.originCalls)
	assert.Equal(t, 1, f.keyCalls)
}

func TestReset_ForcesReload(t *testing.T) {
	f := testLoader()
	c := New(f)
	ctx := context.Background()

	_ = c.AllOrigins(ctx)
	c.Reset()
	_ = c.AllOrigins(ctx)

	assert.Equal(t, 2, f.originCalls)
}

func TestApplicationIDForOrigin_CommaListMembership(t *testing.T) {
	c := New(testLoader())
	ctx := context.Background()

	assert.Equal(t, "app-1", c.ApplicationIDForOrigin(ctx, "https://a.example"))
	assert.Equal(t, "app-1", c.ApplicationIDForOrigin(ctx, "https://b.example"))
	assert.Equal(t, "app-2", c.ApplicationIDForOrigin(ctx, "https://c.example"))
	// substring of an allowed origin is not a match
	assert.Equal(t, "", c.ApplicationIDForOrigin(ctx, "https://a.example.evil"))
	// case-sensitive
	assert.Equal(t, "", c.ApplicationIDForOrigin(ctx, "https://A.example"))
}

func TestAllowedOriginStrings_Flattened(t *testing.T) {
	c := New(testLoader())
	got := c.AllowedOriginStrings(context.Background())
	assert.Equal(t, []string{"https://a.example", "https://b.example", "https://c.example"}, got)
}

func TestReturnURL_SelectsRuleAndChannel(t *testing.T) {
	c := New(testLoader())
	ctx := context.Background()

	assert.Equal(t, "myapp://m", c.ReturnURL(ctx, "https://a.example", "app-1", "mobile-app", false))
	assert.Equal(t, "https://a.example/m", c.ReturnURL(ctx, "https://a.example", "app-1", "mobile-app", true))
	// no rule for this referer
	assert.Equal(t, "", c.ReturnURL(ctx, "https://a.example", "app-1", "unknown-referer", false))
	// origin not in the app's allow-list
	assert.Equal(t, "", c.ReturnURL(ctx, "https://c.example", "app-1", "mobile-app", false))
}

func TestByApplicationID(t *testing.T) {
	c := New(testLoader())
	ctx := context.Background()

	cfg := c.ByApplicationID(ctx, "app-2")
	require.NotNil(t, cfg)
	assert.Equal(t, "https://c.example", cfg.Origin)
	assert.Nil(t, c.ByApplicationID(ctx, "nope"))
}

func TestAPISecret(t *testing.T) {
	c := New(testLoader())
	ctx := context.Background()

	assert.Equal(t, "secret-2", c.APISecret(ctx, "app-2"))
	assert.Equal(t, "", c.APISecret(ctx, "nope"))
}

func TestLoaderFailure_DegradesToEmptyWithoutCaching(t *testing.T) {
	f := testLoader()
	f.err = errors.New("store down")
	c := New(f)
	ctx := context.Background()

	assert.Empty(t, c.AllOrigins(ctx))
	assert.Equal(t, "", c.ApplicationIDForOrigin(ctx, "https://a.example"))

	// recovery: once the store is back the next call loads fresh data
	f.err = nil
	assert.Equal(t, "app-1", c.ApplicationIDForOrigin(ctx, "https://a.example"))
}
