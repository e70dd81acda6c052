package utils

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// DepositWindow is how close to the booking start a security deposit may be
// authorized.
const DepositWindow = 24 * time.Hour

func NowUnixSeconds() int64 { return time.Now().Unix() }

// Clock abstracts "current UTC time" so the deposit window can be checked
// against a trusted source instead of whatever the caller claims.
type Clock interface {
	NowUTC(ctx context.Context) time.Time
}

// SystemClock is the process-local fallback.
type SystemClock struct{}

func (SystemClock) NowUTC(ctx context.Context) time.Time { return time.Now().UTC() }

// TrustedClock fetches the current UTC time from an external time API, falling
// back to the local clock when the API is unreachable. Client-supplied
// timestamps are never trusted for the deposit window.
type TrustedClock struct {
	URL    string
	Client *http.Client
}

func NewTrustedClock(url string) *TrustedClock {
	return &TrustedClock{
		URL:    url,
		Client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *TrustedClock) NowUTC(ctx context.Context) time.Time {
	if c.URL == "" {
		return time.Now().UTC()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return time.Now().UTC()
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		log.Printf("trusted clock unreachable, using local time: %v", err)
		return time.Now().UTC()
	}
	defer resp.Body.Close()

	var body struct {
		UTCDatetime string `json:"utc_datetime"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return time.Now().UTC()
	}
	parsed, err := time.Parse(time.RFC3339, body.UTCDatetime)
	if err != nil {
		return time.Now().UTC()
	}
	return parsed.UTC()
}

// DepositWindowOpen reports whether a deposit may be authorized now for a
// booking starting at bookingStart. The window opens exactly 24 hours before
// the start.
func DepositWindowOpen(now, bookingStart time.Time) bool {
	return bookingStart.Sub(now) <= DepositWindow
}
