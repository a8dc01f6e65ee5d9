package binance

import (
	"context"
	"encoding/json"
	"net/url"
)

// StartUserStream opens a user-data stream and returns its listen key.
// The endpoint authenticates by API key header alone; no signature.
func (c *Client) StartUserStream(ctx context.Context) (string, error) {
	if err := c.ValidateExchangeConfigured(); err != nil {
		return "", err
	}

	body, err := c.do(ctx, call{
		method: "POST",
		path:   "/api/v3/userDataStream",
		weight: 1,
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		ListenKey string `json:"listenKey"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &MalformedResponseError{Field: "listenKey", Err: err}
	}
	if resp.ListenKey == "" {
		return "", &MalformedResponseError{Field: "listenKey", Err: errMissing}
	}
	return resp.ListenKey, nil
}

// KeepAliveUserStream extends a listen key's validity. The exchange
// expires idle keys after 60 minutes.
func (c *Client) KeepAliveUserStream(ctx context.Context, listenKey string) error {
	if listenKey == "" {
		return &ValidationError{Field: "listenKey", Reason: "must not be empty"}
	}

	vals := url.Values{}
	vals.Set("listenKey", listenKey)

	_, err := c.do(ctx, call{
		method: "PUT",
		path:   "/api/v3/userDataStream",
		params: vals,
		weight: 1,
	})
	return err
}

// CloseUserStream terminates a user-data stream.
func (c *Client) CloseUserStream(ctx context.Context, listenKey string) error {
	if listenKey == "" {
		return &ValidationError{Field: "listenKey", Reason: "must not be empty"}
	}

	vals := url.Values{}
	vals.Set("listenKey", listenKey)

	_, err := c.do(ctx, call{
		method: "DELETE",
		path:   "/api/v3/userDataStream",
		params: vals,
		weight: 1,
	})
	return err
}
