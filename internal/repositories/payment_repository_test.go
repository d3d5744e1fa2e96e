package repositories

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestMergeGatewayData(t *testing.T) {
	t.Parallel()

	t.Run("overlays incoming keys onto the stored payload", func(t *testing.T) {
		t.Parallel()
		existing := datatypes.JSON(`{"sessionkey":"sess-1","status":"SUCCESS"}`)
		incoming := datatypes.JSON(`{"status":"VALID","card_type":"VISA"}`)

		var merged map[string]interface{}
		require.NoError(t, json.Unmarshal(MergeGatewayData(existing, incoming), &merged))

		assert.Equal(t, "sess-1", merged["sessionkey"])
		assert.Equal(t, "VALID", merged["status"])
		assert.Equal(t, "VISA", merged["card_type"])
	})

	t.Run("empty sides pass through", func(t *testing.T) {
		t.Parallel()
		payload := datatypes.JSON(`{"a":1}`)
		assert.Equal(t, payload, MergeGatewayData(nil, payload))
		assert.Equal(t, payload, MergeGatewayData(payload, nil))
	})

	t.Run("malformed stored payload is replaced, not corrupted", func(t *testing.T) {
		t.Parallel()
		incoming := datatypes.JSON(`{"status":"VALID"}`)
		assert.Equal(t, incoming, MergeGatewayData(datatypes.JSON(`not json`), incoming))
	})
}

func TestPaymentOrderClause(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "payments.created_at DESC", paymentOrderClause("", true))
	assert.Equal(t, "payments.created_at ASC", paymentOrderClause("", false))
	assert.Equal(t, "payments.amount ASC", paymentOrderClause("amount", false))
	assert.Equal(t, "payments.status DESC", paymentOrderClause("status", true))

	// Unknown columns fall back to created_at, keeping the direction.
	assert.Equal(t, "payments.created_at ASC", paymentOrderClause("user_id", false))
}
