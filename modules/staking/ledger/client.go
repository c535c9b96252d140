package ledger

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/internal/config"
	"github.com/gari-network/staking-indexer/pkg/httpclient"
	"github.com/valyala/fasthttp"
)

// Client talks to the on-chain staking web API.
type Client struct {
	client *httpclient.Client
}

func NewClient(conf config.Ledger) (*Client, error) {
	client, err := httpclient.New(conf.BaseURL, httpclient.Config{
		Debug: conf.Debug,
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't create ledger http client")
	}
	return &Client{client: client}, nil
}

// ListResult is one page of ledger history. The web API returns it as a
// positional JSON tuple: [accounts_map, count, last_signature, unparsed].
type ListResult struct {
	Accounts      map[string]UserAccountBatch
	Count         int
	LastSignature string
	Unparsed      []string
}

func (r *ListResult) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return errors.WithStack(err)
	}
	if len(parts) != 4 {
		return errors.Errorf("expected 4-element tuple, got %d elements", len(parts))
	}
	if err := json.Unmarshal(parts[0], &r.Accounts); err != nil {
		return errors.Wrap(err, "accounts map")
	}
	if err := json.Unmarshal(parts[1], &r.Count); err != nil {
		return errors.Wrap(err, "count")
	}
	if err := json.Unmarshal(parts[2], &r.LastSignature); err != nil {
		return errors.Wrap(err, "last signature")
	}
	if err := json.Unmarshal(parts[3], &r.Unparsed); err != nil {
		return errors.Wrap(err, "unparsed signatures")
	}
	return nil
}

// ListTransactions pulls a page of parsed transactions older than `before`
// (or newer than `until` on the first page of a round), grouped per user.
func (c *Client) ListTransactions(ctx context.Context, before, until string, limit int) (ListResult, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if before != "" {
		query.Set("before", before)
	}
	if until != "" {
		query.Set("until", until)
	}

	resp, err := c.client.Get(ctx, "/get_transactions_and_account_info", httpclient.RequestOptions{
		Query: query,
	})
	if err != nil {
		return ListResult{}, errors.Wrap(err, "failed to list ledger transactions")
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return ListResult{}, errors.Errorf("ledger returned status %d", resp.StatusCode())
	}

	var result ListResult
	if err := resp.UnmarshalBody(&result); err != nil {
		return ListResult{}, errors.Wrap(err, "failed to decode ledger transactions page")
	}
	return result, nil
}

// GetPoolState re-reads the raw on-chain pool account. The web API wraps the
// body in a Rust-style result: {"Ok": {...}} or {"Err": "..."}.
func (c *Client) GetPoolState(ctx context.Context, poolAddress string) (PoolState, error) {
	resp, err := c.client.Get(ctx, "/get_staking_data_account_info", httpclient.RequestOptions{
		Query: url.Values{"staking_account": {poolAddress}},
	})
	if err != nil {
		return PoolState{}, errors.Wrapf(err, "failed to get pool state for %s", poolAddress)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return PoolState{}, errors.Errorf("ledger returned status %d for pool %s", resp.StatusCode(), poolAddress)
	}

	var envelope struct {
		Ok  *PoolState `json:"Ok"`
		Err *string    `json:"Err"`
	}
	if err := resp.UnmarshalBody(&envelope); err != nil {
		return PoolState{}, errors.Wrapf(err, "failed to decode pool state for %s", poolAddress)
	}
	if envelope.Err != nil {
		return PoolState{}, errors.Errorf("ledger error for pool %s: %s", poolAddress, *envelope.Err)
	}
	if envelope.Ok == nil {
		return PoolState{}, errors.Errorf("empty pool state for %s", poolAddress)
	}
	return *envelope.Ok, nil
}

// ResolveResult mirrors ListResult for signature-bounded resolution calls.
type ResolveResult struct {
	Accounts map[string]UserAccountBatch
	Unparsed []string
}

func (r *ResolveResult) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return errors.WithStack(err)
	}
	if len(parts) != 2 {
		return errors.Errorf("expected 2-element tuple, got %d elements", len(parts))
	}
	if err := json.Unmarshal(parts[0], &r.Accounts); err != nil {
		return errors.Wrap(err, "accounts map")
	}
	if err := json.Unmarshal(parts[1], &r.Unparsed); err != nil {
		return errors.Wrap(err, "unparsed signatures")
	}
	return nil
}

// ResolveSignatures asks the ledger for a bounded list of signatures instead
// of a paging cursor. Used by the retry sweep for stuck transactions.
func (c *Client) ResolveSignatures(ctx context.Context, signatures []string, toRetry bool) (ResolveResult, error) {
	body, err := json.Marshal(signatures)
	if err != nil {
		return ResolveResult{}, errors.WithStack(err)
	}

	resp, err := c.client.Post(ctx, "/get_transactions_info", httpclient.RequestOptions{
		Query: url.Values{"to_retry": {strconv.FormatBool(toRetry)}},
		Body:  body,
	})
	if err != nil {
		return ResolveResult{}, errors.Wrap(err, "failed to resolve signatures")
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return ResolveResult{}, errors.Errorf("ledger returned status %d", resp.StatusCode())
	}

	var result ResolveResult
	if err := resp.UnmarshalBody(&result); err != nil {
		return ResolveResult{}, errors.Wrap(err, "failed to decode resolved signatures")
	}
	return result, nil
}

// AccrueInterest triggers the daily on-chain interest accrual.
func (c *Client) AccrueInterest(ctx context.Context) error {
	resp, err := c.client.Get(ctx, "/accrue_interest", httpclient.RequestOptions{})
	if err != nil {
		return errors.Wrap(err, "failed to trigger interest accrual")
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return errors.Errorf("ledger returned status %d", resp.StatusCode())
	}
	return nil
}
