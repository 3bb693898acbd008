// Package teller wraps the Teller HTTP API. The client maps logical
// operations to HTTPS calls and relays the raw status and body; it never
// interprets response semantics.
package teller

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Response is the raw upstream result: status code and body, unmodified.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client talks to the Teller API on behalf of one user. The access token
// is sent as the basic-auth username with an empty password.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	accessToken string
}

// NewClient builds the base client. certFile/keyFile configure a mutual-TLS
// client certificate and must be given together; outside the sandbox
// environment Teller requires them.
func NewClient(baseURL, certFile, keyFile string) (*Client, error) {
	httpClient := http.DefaultClient

	if certFile != "" && keyFile != "" {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		httpClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{Certificates: []tls.Certificate{cert}},
			},
		}
	}

	return &Client{baseURL: baseURL, httpClient: httpClient}, nil
}

// ForUser returns a copy of the client bound to the given access token.
func (c *Client) ForUser(accessToken string) *Client {
	return &Client{
		baseURL:     c.baseURL,
		httpClient:  c.httpClient,
		accessToken: accessToken,
	}
}

func (c *Client) ListAccounts(ctx context.Context) (*Response, error) {
	return c.get(ctx, "/accounts", nil)
}

func (c *Client) GetAccount(ctx context.Context, accountID string) (*Response, error) {
	return c.get(ctx, "/accounts/"+accountID, nil)
}

func (c *Client) GetAccountDetails(ctx context.Context, accountID string) (*Response, error) {
	return c.get(ctx, "/accounts/"+accountID+"/details", nil)
}

func (c *Client) GetAccountBalances(ctx context.Context, accountID string) (*Response, error) {
	return c.get(ctx, "/accounts/"+accountID+"/balances", nil)
}

// ListAccountTransactions fetches the account's transactions; count limits
// the result size when positive.
func (c *Client) ListAccountTransactions(ctx context.Context, accountID string, count int) (*Response, error) {
	var params url.Values
	if count > 0 {
		params = url.Values{"count": []string{strconv.Itoa(count)}}
	}
	return c.get(ctx, "/accounts/"+accountID+"/transactions", params)
}

func (c *Client) ListAccountPayees(ctx context.Context, accountID, scheme string) (*Response, error) {
	return c.get(ctx, "/accounts/"+accountID+"/payments/"+scheme+"/payees", nil)
}

func (c *Client) CreateAccountPayee(ctx context.Context, accountID, scheme string, body []byte) (*Response, error) {
	return c.post(ctx, "/accounts/"+accountID+"/payments/"+scheme+"/payees", body)
}

func (c *Client) CreateAccountPayment(ctx context.Context, accountID, scheme string, body []byte) (*Response, error) {
	return c.post(ctx, "/accounts/"+accountID+"/payments/"+scheme, body)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*Response, error) {
	return c.request(ctx, http.MethodGet, path, params, nil)
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*Response, error) {
	return c.request(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) request(ctx context.Context, method, path string, params url.Values, body []byte) (*Response, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.accessToken, "")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}
