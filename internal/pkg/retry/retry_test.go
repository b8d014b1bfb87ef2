package retry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttempt_FirstTrySucceeds(t *testing.T) {
	calls := 0
	err := Attempt(2, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestAttempt_SecondTrySucceeds(t *testing.T) {
	calls := 0
	err := Attempt(2, func() error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestAttempt_BudgetExhausted(t *testing.T) {
	calls := 0
	wantErr := errors.New("persistent")
	err := Attempt(2, func() error {
		calls++
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 2, calls)
}

func TestAttempt_ZeroAttemptsStillRunsOnce(t *testing.T) {
	calls := 0
	_ = Attempt(0, func() error {
		calls++
		return errors.New("x")
	})
	assert.Equal(t, 1, calls)
}
