// Package mpesa implements a minimal client for the Safaricom Daraja
// API: OAuth credential exchange and the STK push request that
// triggers a payment prompt on the payer's phone.  The synchronous
// response only confirms that Daraja received the request; actual
// settlement happens asynchronously and is out of scope here.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ResponseAccepted is the ResponseCode Daraja returns when the push
// request was accepted for processing.
const ResponseAccepted = "0"

// Sentinel errors surfaced to the booking flow.
var (
	// ErrAuthFailed covers missing credentials and failed token exchanges.
	ErrAuthFailed = errors.New("mpesa: authentication failed")
	// ErrSubmitFailed covers transport errors and non-success push responses.
	ErrSubmitFailed = errors.New("mpesa: push submission failed")
)

// Config carries the Daraja app credentials and endpoints.  The
// sandbox URLs are the defaults; production swaps the base URL only.
type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	Passkey        string
	CallbackURL    string
	AuthURL        string // defaults to the sandbox OAuth endpoint
	PushURL        string // defaults to the sandbox STK push endpoint
}

const (
	defaultAuthURL = "https://sandbox.safaricom.co.ke/oauth/v1/generate?grant_type=client_credentials"
	defaultPushURL = "https://sandbox.safaricom.co.ke/mpesa/stkpush/v1/processrequest"
)

// Client talks to Daraja over HTTP.  Construct it once and pass it by
// reference; it is safe for concurrent use.
type Client struct {
	hc  *http.Client
	cfg Config
	now func() time.Time
}

// New returns a Client with a bounded request timeout.
func New(cfg Config) *Client {
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultAuthURL
	}
	if cfg.PushURL == "" {
		cfg.PushURL = defaultPushURL
	}
	return &Client{
		hc:  &http.Client{Timeout: 30 * time.Second},
		cfg: cfg,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Authenticate exchanges the consumer key/secret for a short-lived
// access token over a basic-auth challenge.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	if c.cfg.ConsumerKey == "" || c.cfg.ConsumerSecret == "" {
		return "", fmt.Errorf("%w: credentials not configured", ErrAuthFailed)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.AuthURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.cfg.ConsumerKey + ":" + c.cfg.ConsumerSecret))
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: token endpoint returned %d", ErrAuthFailed, resp.StatusCode)
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrAuthFailed)
	}
	return body.AccessToken, nil
}

// PushRequest is what the booking flow knows about a charge: who to
// prompt, how much, and what to reference.
type PushRequest struct {
	Phone            string // already normalized to 254... form
	Amount           uint32
	AccountReference string
	Description      string
}

// PushResponse is Daraja's synchronous acknowledgement.  ResponseCode
// "0" means the request was accepted; it does not mean the payment
// settled.
type PushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// Accepted reports whether the push request was accepted by the gateway.
func (r *PushResponse) Accepted() bool {
	return r != nil && r.ResponseCode == ResponseAccepted
}

// pushPayload is the wire format Daraja expects for an STK push.
type pushPayload struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            uint32 `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// SubmitPush sends an STK push request keyed by the timestamp-derived
// password.  Transport failures and non-2xx responses yield
// ErrSubmitFailed; a decoded body with a non-zero ResponseCode is
// returned as-is for the reconciler to act on.
func (c *Client) SubmitPush(ctx context.Context, token string, push PushRequest) (*PushResponse, error) {
	if c.cfg.ShortCode == "" || c.cfg.Passkey == "" {
		return nil, fmt.Errorf("%w: shortcode/passkey not configured", ErrSubmitFailed)
	}
	ts := timestamp(c.now())
	payload := pushPayload{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          derivePassword(c.cfg.ShortCode, c.cfg.Passkey, ts),
		Timestamp:         ts,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            push.Amount,
		PartyA:            push.Phone,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       push.Phone,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  push.AccountReference,
		TransactionDesc:   push.Description,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.PushURL, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: push endpoint returned %d", ErrSubmitFailed, resp.StatusCode)
	}
	var out PushResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}
	return &out, nil
}

// timestamp renders t in the yyyymmddhhmmss form Daraja requires.
func timestamp(t time.Time) string {
	return t.UTC().Format("20060102150405")
}

// derivePassword builds the push password: base64 of
// shortcode + passkey + timestamp.
func derivePassword(shortCode, passkey, ts string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortCode + passkey + ts))
}
