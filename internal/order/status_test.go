package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/cod-storefront/internal/apperror"
)

func TestNext(t *testing.T) {
	tests := []struct {
		from    Status
		action  Action
		want    Status
		invalid bool
	}{
		{StatusRequested, ActionDispatch, StatusShipping, false},
		{StatusRequested, ActionCancel, StatusCancelled, false},
		{StatusShipping, ActionDeliver, StatusDelivered, false},
		{StatusRequested, ActionDeliver, StatusRequested, true},
		{StatusShipping, ActionCancel, StatusShipping, true},
		{StatusShipping, ActionDispatch, StatusShipping, true},
		{StatusDelivered, ActionCancel, StatusDelivered, true},
		{StatusDelivered, ActionDispatch, StatusDelivered, true},
		{StatusCancelled, ActionDispatch, StatusCancelled, true},
		{StatusCancelled, ActionDeliver, StatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.action), func(t *testing.T) {
			got, err := Next(tt.from, tt.action)
			assert.Equal(t, tt.want, got)
			if tt.invalid {
				var te *apperror.InvalidTransitionError
				require.ErrorAs(t, err, &te)
				assert.Equal(t, string(tt.from), te.From)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestActions(t *testing.T) {
	assert.Equal(t, []Action{ActionDispatch, ActionCancel}, Actions(StatusRequested))
	assert.Equal(t, []Action{ActionDeliver}, Actions(StatusShipping))
	assert.Empty(t, Actions(StatusDelivered))
	assert.Empty(t, Actions(StatusCancelled))
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusShipping.Terminal())
}

func TestParse(t *testing.T) {
	a, err := ParseAction(" Cancel ")
	require.NoError(t, err)
	assert.Equal(t, ActionCancel, a)

	_, err = ParseAction("refund")
	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)

	s, err := ParseStatus("SHIPPING")
	require.NoError(t, err)
	assert.Equal(t, StatusShipping, s)

	_, err = ParseStatus("lost")
	require.ErrorAs(t, err, &ve)
}
