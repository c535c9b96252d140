package settlement

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/internal/config"
	"github.com/gari-network/staking-indexer/pkg/httpclient"
	"github.com/gaze-network/uint128"
)

// Outcome classifies the settlement service's response code space.
type Outcome int

const (
	// OutcomeAccepted is code 200: the settlement record was accepted.
	OutcomeAccepted Outcome = iota
	// OutcomeRejected is code 400/404: the record was rejected and may be
	// retried once through RetryTransaction.
	OutcomeRejected
	// OutcomeAnomaly is any other code: logged by the caller, never retried.
	OutcomeAnomaly
)

func outcomeFromCode(code int) Outcome {
	switch code {
	case 200:
		return OutcomeAccepted
	case 400, 404:
		return OutcomeRejected
	default:
		return OutcomeAnomaly
	}
}

// Response is the settlement service's envelope: {code, message, error?, data?}.
type Response[T any] struct {
	Code    int     `json:"code"`
	Error   *string `json:"error"`
	Message string  `json:"message"`
	Data    *T      `json:"data"`
}

func (r Response[T]) Outcome() Outcome {
	return outcomeFromCode(r.Code)
}

// Client talks to the settlement (Gari) service that owns in-process
// transactions.
type Client struct {
	client *httpclient.Client
}

func NewClient(conf config.Settlement) (*Client, error) {
	userAgent := conf.UserAgent
	if userAgent == "" {
		userAgent = "Staking Polling Service"
	}
	client, err := httpclient.New(conf.BaseURL, httpclient.Config{
		Headers: map[string]string{
			"X-STAKING-API-KEY": conf.APIKey,
			"User-Agent":        userAgent,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't create settlement http client")
	}
	return &Client{client: client}, nil
}

// WithdrawableString renders the amount the way the settlement service
// expects: empty string when zero, plain decimal otherwise.
func WithdrawableString(amount uint128.Uint128) string {
	if amount.IsZero() {
		return ""
	}
	return amount.String()
}

type updateRequest struct {
	TransactionID      string `json:"transactionId"`
	Signature          string `json:"signature"`
	WithdrawableAmount string `json:"withdrawableAmount"`
}

// UpdateTransaction reports a resolved ledger transaction for an existing
// settlement id, carrying the FIFO-computed withdrawable amount.
func (c *Client) UpdateTransaction(ctx context.Context, settlementID, signature string, withdrawable uint128.Uint128) (Response[json.RawMessage], error) {
	body, err := json.Marshal(updateRequest{
		TransactionID:      settlementID,
		Signature:          signature,
		WithdrawableAmount: WithdrawableString(withdrawable),
	})
	if err != nil {
		return Response[json.RawMessage]{}, errors.WithStack(err)
	}

	resp, err := c.client.Post(ctx, "/updateStakingTransaction", httpclient.RequestOptions{Body: body})
	if err != nil {
		return Response[json.RawMessage]{}, errors.Wrapf(err, "update failed for signature %s", signature)
	}

	var result Response[json.RawMessage]
	if err := resp.UnmarshalBody(&result); err != nil {
		return Response[json.RawMessage]{}, errors.Wrapf(err, "can't decode update response for signature %s", signature)
	}
	return result, nil
}

type retryRequest struct {
	TransactionCase    string `json:"transactionCase"`
	Amount             string `json:"amount"`
	Signature          string `json:"signature"`
	PublicKey          string `json:"publicKey"`
	WithdrawableAmount string `json:"withdrawableAmount"`
}

type retryData struct {
	TransactionID string `json:"transactionId"`
}

// RetryTransaction creates a fresh settlement record after a rejection. On
// code 200 the new settlement id is returned.
func (c *Client) RetryTransaction(ctx context.Context, signature, owner string, amount uint128.Uint128, kind string, withdrawable uint128.Uint128) (newSettlementID string, outcome Outcome, err error) {
	body, err := json.Marshal(retryRequest{
		TransactionCase:    kind,
		Amount:             amount.String(),
		Signature:          signature,
		PublicKey:          owner,
		WithdrawableAmount: WithdrawableString(withdrawable),
	})
	if err != nil {
		return "", OutcomeAnomaly, errors.WithStack(err)
	}

	resp, err := c.client.Post(ctx, "/retryStakingTransaction", httpclient.RequestOptions{Body: body})
	if err != nil {
		return "", OutcomeAnomaly, errors.Wrapf(err, "retry failed for signature %s", signature)
	}

	var result Response[retryData]
	if err := resp.UnmarshalBody(&result); err != nil {
		return "", OutcomeAnomaly, errors.Wrapf(err, "can't decode retry response for signature %s", signature)
	}
	if result.Outcome() == OutcomeAccepted && result.Data != nil {
		return result.Data.TransactionID, OutcomeAccepted, nil
	}
	return "", result.Outcome(), nil
}

// DailyPollingRecord is one recomputed withdrawable pushed by the nightly
// metrics job.
type DailyPollingRecord struct {
	TransactionCase    string `json:"transactionCase"`
	Amount             string `json:"amount"`
	Signature          string `json:"signature"`
	PublicKey          string `json:"publicKey"`
	WithdrawableAmount string `json:"withdrawableAmount"`
}

type dailyPollingRequest struct {
	StakingData []DailyPollingRecord `json:"stakingData"`
}

// InsertDailyPollingData pushes a batch of nightly recomputed records.
func (c *Client) InsertDailyPollingData(ctx context.Context, records []DailyPollingRecord) (Response[json.RawMessage], error) {
	body, err := json.Marshal(dailyPollingRequest{StakingData: records})
	if err != nil {
		return Response[json.RawMessage]{}, errors.WithStack(err)
	}

	resp, err := c.client.Post(ctx, "/insertDailyPollingData", httpclient.RequestOptions{Body: body})
	if err != nil {
		return Response[json.RawMessage]{}, errors.Wrap(err, "daily polling data push failed")
	}

	var result Response[json.RawMessage]
	if err := resp.UnmarshalBody(&result); err != nil {
		return Response[json.RawMessage]{}, errors.Wrap(err, "can't decode daily polling data response")
	}
	return result, nil
}
