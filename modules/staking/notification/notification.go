package notification

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/internal/config"
	"github.com/gari-network/staking-indexer/pkg/httpclient"
	"github.com/gaze-network/uint128"
	"github.com/shopspring/decimal"
)

// Client is the best-effort notification channel. Failures are logged by the
// caller and never block a state transition.
type Client struct {
	client   *httpclient.Client
	disabled bool
}

func NewClient(conf config.Notification) (*Client, error) {
	if conf.Disabled || conf.URL == "" {
		return &Client{disabled: true}, nil
	}
	client, err := httpclient.New(conf.URL)
	if err != nil {
		return nil, errors.Wrap(err, "can't create notification http client")
	}
	return &Client{client: client}, nil
}

// data field names follow the established wire contract, including the
// "recevier_user_id" spelling.
type data struct {
	RecevierUserID    string `json:"recevier_user_id"`
	Coins             string `json:"coins"`
	TransactionCase   string `json:"transaction_case"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	MutableContent    uint8  `json:"mutable_content"`
}

type payload struct {
	Data data `json:"data"`
}

type request struct {
	Type    string  `json:"type"`
	Payload payload `json:"payload"`
}

const tokenDecimals = 9

// Notify fires a staking notification for a resolved transaction. The raw
// amount is scaled to whole coins for display.
func (c *Client) Notify(ctx context.Context, owner string, amount uint128.Uint128, kind, transactionID, status string) error {
	if c.disabled {
		return nil
	}

	coins := decimal.NewFromBigInt(amount.Big(), -tokenDecimals)
	body, err := json.Marshal(request{
		Type: "STAKING",
		Payload: payload{
			Data: data{
				RecevierUserID:    owner,
				Coins:             coins.String(),
				TransactionCase:   kind,
				TransactionID:     transactionID,
				TransactionStatus: status,
				MutableContent:    1,
			},
		},
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if _, err := c.client.Post(ctx, "", httpclient.RequestOptions{Body: body}); err != nil {
		return errors.Wrap(err, "failed to send notification")
	}
	return nil
}
