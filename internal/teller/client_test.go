package teller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendsTokenAsBasicAuthUsername(t *testing.T) {
	var gotUser, gotPass string
	var gotOK bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotOK = r.BasicAuth()
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "", "")
	require.NoError(t, err)

	resp, err := client.ForUser("token_abc").ListAccounts(context.Background())
	require.NoError(t, err)

	assert.True(t, gotOK)
	assert.Equal(t, "token_abc", gotUser)
	assert.Equal(t, "", gotPass)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []byte(`[]`), resp.Body)
}

func TestClientPathsAndParams(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "", "")
	require.NoError(t, err)
	c := client.ForUser("t")
	ctx := context.Background()

	_, err = c.GetAccountBalances(ctx, "acc_1")
	require.NoError(t, err)
	assert.Equal(t, "/accounts/acc_1/balances", gotPath)

	_, err = c.ListAccountTransactions(ctx, "acc_1", 25)
	require.NoError(t, err)
	assert.Equal(t, "/accounts/acc_1/transactions", gotPath)
	assert.Equal(t, "count=25", gotQuery)

	_, err = c.ListAccountTransactions(ctx, "acc_1", 0)
	require.NoError(t, err)
	assert.Empty(t, gotQuery)

	_, err = c.ListAccountPayees(ctx, "acc_1", "zengin")
	require.NoError(t, err)
	assert.Equal(t, "/accounts/acc_1/payments/zengin/payees", gotPath)
}

func TestClientRelaysNon200Verbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"unauthorized"}}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "", "")
	require.NoError(t, err)

	resp, err := client.ForUser("bad").GetAccount(context.Background(), "acc_1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":{"code":"unauthorized"}}`, string(resp.Body))
}

func TestClientPostSendsJSONBody(t *testing.T) {
	var gotMethod, gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "", "")
	require.NoError(t, err)

	resp, err := client.ForUser("t").CreateAccountPayment(context.Background(), "acc_1", "zengin", []byte(`{"amount":"10.00"}`))
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"amount":"10.00"}`, gotBody)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}
