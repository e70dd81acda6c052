package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"fiesta/internal/txprocess"
)

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
}

// HTTPClient talks to the marketplace platform's integration API with
// client-credentials auth. The access token is cached and refreshed shortly
// before it expires.
type HTTPClient struct {
	cfg  Config
	http *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewHTTPClient(cfg Config) *HTTPClient {
	return &HTTPClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-30*time.Second)) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("scope", "integ")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("platform auth failed: status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	c.token = body.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	return c.token, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, payload any, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(raw)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("platform %s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type wireMoney struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type wireTransaction struct {
	ID         string `json:"id"`
	Attributes struct {
		ProcessName    string         `json:"processName"`
		LastTransition string         `json:"lastTransition"`
		PayinTotal     wireMoney      `json:"payinTotal"`
		PayoutTotal    wireMoney      `json:"payoutTotal"`
		ProtectedData  map[string]any `json:"protectedData"`
		Metadata       map[string]any `json:"metadata"`
		BookingStart   string         `json:"bookingStart"`
	} `json:"attributes"`
	Relationships struct {
		Customer struct {
			ID string `json:"id"`
		} `json:"customer"`
		Provider struct {
			ID              string `json:"id"`
			StripeAccountID string `json:"stripeAccountId"`
		} `json:"provider"`
	} `json:"relationships"`
}

func (w *wireTransaction) toTransaction() *Transaction {
	tx := &Transaction{
		ID:                      w.ID,
		ProcessName:             txprocess.Process(w.Attributes.ProcessName),
		LastTransition:          txprocess.Transition(w.Attributes.LastTransition),
		PayinTotalMinor:         w.Attributes.PayinTotal.Amount,
		PayoutTotalMinor:        w.Attributes.PayoutTotal.Amount,
		Currency:                w.Attributes.PayinTotal.Currency,
		ProtectedData:           w.Attributes.ProtectedData,
		Metadata:                w.Attributes.Metadata,
		CustomerID:              w.Relationships.Customer.ID,
		ProviderID:              w.Relationships.Provider.ID,
		ProviderStripeAccountID: w.Relationships.Provider.StripeAccountID,
	}
	if w.Attributes.BookingStart != "" {
		if t, err := time.Parse(time.RFC3339, w.Attributes.BookingStart); err == nil {
			tx.BookingStart = t
		}
	}
	return tx
}

func (c *HTTPClient) ShowTransaction(ctx context.Context, txID string) (*Transaction, error) {
	q := url.Values{}
	q.Set("id", txID)
	var body struct {
		Data wireTransaction `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/integration_api/transactions/show", q, nil, &body); err != nil {
		return nil, err
	}
	return body.Data.toTransaction(), nil
}

func (c *HTTPClient) InitiateTransaction(ctx context.Context, in InitiateInput) (*Transaction, error) {
	payload := map[string]any{
		"processAlias": in.ProcessAlias,
		"transition":   string(in.Transition),
		"params":       in.Params,
	}
	if in.ListingID != "" {
		payload["listingId"] = in.ListingID
	}
	var body struct {
		Data wireTransaction `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/integration_api/transactions/initiate", nil, payload, &body); err != nil {
		return nil, err
	}
	return body.Data.toTransaction(), nil
}

func (c *HTTPClient) Transition(ctx context.Context, txID string, t txprocess.Transition, params map[string]any) error {
	payload := map[string]any{
		"id":         txID,
		"transition": string(t),
		"params":     params,
	}
	return c.do(ctx, http.MethodPost, "/v1/integration_api/transactions/transition", nil, payload, nil)
}

func (c *HTTPClient) UpdateTransactionMetadata(ctx context.Context, txID string, metadata map[string]any) error {
	payload := map[string]any{
		"id":       txID,
		"metadata": metadata,
	}
	return c.do(ctx, http.MethodPost, "/v1/integration_api/transactions/update_metadata", nil, payload, nil)
}

func (c *HTTPClient) UpdateUserMetadata(ctx context.Context, userID string, metadata map[string]any) error {
	payload := map[string]any{
		"id":       userID,
		"metadata": metadata,
	}
	return c.do(ctx, http.MethodPost, "/v1/integration_api/users/update_profile", nil, payload, nil)
}

func (c *HTTPClient) QueryEvents(ctx context.Context, q EventQuery) ([]Event, error) {
	query := url.Values{}
	if len(q.Types) > 0 {
		query.Set("eventTypes", strings.Join(q.Types, ","))
	}
	if q.StartAfterSequenceID != nil {
		query.Set("startAfterSequenceId", strconv.FormatInt(*q.StartAfterSequenceID, 10))
	} else if !q.CreatedAtStart.IsZero() {
		query.Set("createdAtStart", q.CreatedAtStart.UTC().Format(time.RFC3339))
	}

	var body struct {
		Data []struct {
			Attributes struct {
				SequenceID int64  `json:"sequenceId"`
				EventType  string `json:"eventType"`
				CreatedAt  string `json:"createdAt"`
				Resource   struct {
					ID         string `json:"id"`
					Attributes struct {
						ProcessName    string `json:"processName"`
						LastTransition string `json:"lastTransition"`
					} `json:"attributes"`
				} `json:"resource"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/integration_api/events/query", query, nil, &body); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(body.Data))
	for _, d := range body.Data {
		a := d.Attributes
		process := txprocess.Process(a.Resource.Attributes.ProcessName)
		if q.ProcessName != "" && process != q.ProcessName {
			continue
		}
		ev := Event{
			SequenceID:     a.SequenceID,
			Type:           a.EventType,
			TxID:           a.Resource.ID,
			ProcessName:    process,
			LastTransition: txprocess.Transition(a.Resource.Attributes.LastTransition),
		}
		if t, err := time.Parse(time.RFC3339, a.CreatedAt); err == nil {
			ev.CreatedAt = t
		}
		events = append(events, ev)
	}
	return events, nil
}
