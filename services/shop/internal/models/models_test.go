package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to string
		want     bool
	}{
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusOutForDelivery, true},
		{OrderStatusOutForDelivery, OrderStatusDelivered, true},
		{OrderStatusProcessing, OrderStatusDelivered, false},
		{OrderStatusDelivered, OrderStatusProcessing, false},
		{OrderStatusShipped, OrderStatusShipped, false},
		{"cancelled", OrderStatusShipped, false},
		{OrderStatusDelivered, "returned", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestOwnerKeys(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	assert.Equal(t, "user:11111111-1111-1111-1111-111111111111", UserOwner(id))
	assert.Equal(t, "guest:abc", GuestOwner("abc"))
	assert.NotEqual(t, UserOwner(id), GuestOwner(id.String()))
}
