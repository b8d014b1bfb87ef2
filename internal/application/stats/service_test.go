package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vanity-address-api/internal/domain"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) Increment(ctx context.Context, origin, applicationID, txType string) error {
	return m.Called(ctx, origin, applicationID, txType).Error(0)
}

func (m *mockStore) Totals(ctx context.Context, origin, applicationID string) (map[string]int64, error) {
	args := m.Called(ctx, origin, applicationID)
	if t, _ := args.Get(0).(map[string]int64); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRecord_DelegatesToStore(t *testing.T) {
	s := &mockStore{}
	s.On("Increment", mock.Anything, "https://a.example", "app-1", "payment").Return(nil)

	NewRecorder(s).Record(context.Background(), "https://a.example", "app-1", "payment")

	s.AssertExpectations(t)
}

func TestRecord_StoreFailureIsSwallowed(t *testing.T) {
	s := &mockStore{}
	s.On("Increment", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("table missing"))

	assert.NotPanics(t, func() {
		NewRecorder(s).Record(context.Background(), "https://a.example", "app-1", "payment")
	})
}

func TestTotals(t *testing.T) {
	s := &mockStore{}
	s.On("Totals", mock.Anything, "https://a.example", "app-1").
		Return(map[string]int64{"payment": 3, "trustset": 1}, nil)

	got, err := NewRecorder(s).Totals(context.Background(), "https://a.example", "app-1")

	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"payment": 3, "trustset": 1}, got)
}

func TestTotals_StoreFailureWrapsUnavailable(t *testing.T) {
	s := &mockStore{}
	s.On("Totals", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("throttled"))

	_, err := NewRecorder(s).Totals(context.Background(), "https://a.example", "app-1")

	assert.ErrorIs(t, err, domain.ErrUnavailable)
}
