package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSettableStatus(t *testing.T) {
	cases := map[string]struct {
		raw     string
		want    OrderStatus
		wantErr bool
	}{
		"pending":         {raw: "pending", want: StatusPending},
		"in making":       {raw: "in making", want: StatusInMaking},
		"ready":           {raw: "ready", want: StatusReady},
		"cancelled":       {raw: "cancelled", wantErr: true},
		"unknown":         {raw: "bogus", wantErr: true},
		"empty":           {raw: "", wantErr: true},
		"case sensitive":  {raw: "Ready", wantErr: true},
		"underscore form": {raw: "in_making", wantErr: true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseSettableStatus(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.True(t, StatusCancelled.Terminal())
	for _, s := range ActiveStatuses {
		assert.False(t, s.Terminal(), s)
		assert.True(t, s.Settable(), s)
	}
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleCustomer.Valid())
	assert.True(t, RoleKitchen.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("chef").Valid())
}
