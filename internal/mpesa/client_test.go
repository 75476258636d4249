package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sandboxConfig(authURL, pushURL string) Config {
	return Config{
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		ShortCode:      "174379",
		Passkey:        "passkey",
		CallbackURL:    "https://example.com/callback",
		AuthURL:        authURL,
		PushURL:        pushURL,
	}
}

func TestAuthenticate_SendsBasicAuthAndReturnsToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodGet, r.Method)
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
	}))
	defer srv.Close()

	c := New(sandboxConfig(srv.URL, ""))
	token, err := c.Authenticate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("key:secret"))
	assert.Equal(t, want, gotAuth)
}

func TestAuthenticate_MissingCredentials(t *testing.T) {
	c := New(Config{})
	_, err := c.Authenticate(context.Background())
	require.ErrorIs(t, err, ErrAuthFailed)
}

func TestAuthenticate_TokenEndpointError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(sandboxConfig(srv.URL, ""))
	_, err := c.Authenticate(context.Background())
	require.ErrorIs(t, err, ErrAuthFailed)
}

func TestAuthenticate_EmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	c := New(sandboxConfig(srv.URL, ""))
	_, err := c.Authenticate(context.Background())
	require.ErrorIs(t, err, ErrAuthFailed)
}

func TestSubmitPush_BuildsPayload(t *testing.T) {
	var (
		gotAuth string
		got     pushPayload
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(PushResponse{
			MerchantRequestID: "mr-1",
			CheckoutRequestID: "cr-1",
			ResponseCode:      "0",
		})
	}))
	defer srv.Close()

	c := New(sandboxConfig("", srv.URL))
	fixed := time.Date(2025, 6, 10, 19, 30, 45, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	ack, err := c.SubmitPush(context.Background(), "tok-123", PushRequest{
		Phone:            "254712345678",
		Amount:           1,
		AccountReference: "42",
		Description:      "Dinemate Reservation",
	})

	require.NoError(t, err)
	assert.True(t, ack.Accepted())
	assert.Equal(t, "Bearer tok-123", gotAuth)

	ts := "20250610193045"
	assert.Equal(t, "174379", got.BusinessShortCode)
	assert.Equal(t, ts, got.Timestamp)
	wantPass := base64.StdEncoding.EncodeToString([]byte("174379" + "passkey" + ts))
	assert.Equal(t, wantPass, got.Password)
	assert.Equal(t, "CustomerPayBillOnline", got.TransactionType)
	assert.Equal(t, uint32(1), got.Amount)
	assert.Equal(t, "254712345678", got.PartyA)
	assert.Equal(t, "174379", got.PartyB)
	assert.Equal(t, "254712345678", got.PhoneNumber)
	assert.Equal(t, "https://example.com/callback", got.CallBackURL)
	assert.Equal(t, "42", got.AccountReference)
}

func TestSubmitPush_MissingShortCode(t *testing.T) {
	c := New(Config{ConsumerKey: "key", ConsumerSecret: "secret"})
	_, err := c.SubmitPush(context.Background(), "tok", PushRequest{})
	require.ErrorIs(t, err, ErrSubmitFailed)
}

func TestSubmitPush_EndpointError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(sandboxConfig("", srv.URL))
	_, err := c.SubmitPush(context.Background(), "tok", PushRequest{Phone: "254712345678", Amount: 1})
	require.ErrorIs(t, err, ErrSubmitFailed)
}

func TestSubmitPush_RejectedAckIsReturnedNotErrored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(PushResponse{ResponseCode: "1032", ResponseDescription: "Request cancelled by user"})
	}))
	defer srv.Close()

	c := New(sandboxConfig("", srv.URL))
	ack, err := c.SubmitPush(context.Background(), "tok", PushRequest{Phone: "254712345678", Amount: 1})

	require.NoError(t, err)
	assert.False(t, ack.Accepted())
	assert.Equal(t, "1032", ack.ResponseCode)
}

func TestPushResponseAccepted(t *testing.T) {
	assert.False(t, (*PushResponse)(nil).Accepted())
	assert.True(t, (&PushResponse{ResponseCode: "0"}).Accepted())
	assert.False(t, (&PushResponse{ResponseCode: "1"}).Accepted())
}

func TestDerivePassword(t *testing.T) {
	got := derivePassword("174379", "passkey", "20250610193045")
	want := base64.StdEncoding.EncodeToString([]byte("174379passkey20250610193045"))
	assert.Equal(t, want, got)
}

func TestTimestampFormat(t *testing.T) {
	got := timestamp(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	assert.Equal(t, "20250102030405", got)
}
