package settlement

import (
	"encoding/json"
	"testing"

	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeFromCode(t *testing.T) {
	assert.Equal(t, OutcomeAccepted, outcomeFromCode(200))
	assert.Equal(t, OutcomeRejected, outcomeFromCode(400))
	assert.Equal(t, OutcomeRejected, outcomeFromCode(404))
	assert.Equal(t, OutcomeAnomaly, outcomeFromCode(500))
	assert.Equal(t, OutcomeAnomaly, outcomeFromCode(201))
}

func TestResponseEnvelopeDecode(t *testing.T) {
	body := `{"code": 200, "message": "ok", "error": null, "data": {"transactionId": "id-7"}}`

	var resp Response[retryData]
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, OutcomeAccepted, resp.Outcome())
	require.NotNil(t, resp.Data)
	assert.Equal(t, "id-7", resp.Data.TransactionID)
}

func TestResponseEnvelopeDecode_Error(t *testing.T) {
	body := `{"code": 400, "message": "bad request", "error": "no matching transaction"}`

	var resp Response[json.RawMessage]
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, OutcomeRejected, resp.Outcome())
	require.NotNil(t, resp.Error)
	assert.Nil(t, resp.Data)
}

func TestWithdrawableString(t *testing.T) {
	assert.Equal(t, "", WithdrawableString(uint128.Zero))
	assert.Equal(t, "150", WithdrawableString(uint128.From64(150)))
}
