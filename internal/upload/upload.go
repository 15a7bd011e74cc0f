// Package upload submits score records to the remote scoring API.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/choplin/scorerelay/internal/score"
)

// maxBodyBytes caps how much of a rejection body is kept for diagnostics.
const maxBodyBytes = 64 << 10

// Kind classifies the result of a single submission.
type Kind int

const (
	Accepted Kind = iota
	Rejected
	TransportFailure
)

func (k Kind) String() string {
	switch k {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case TransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of one Submit call.
// Status and Body are set for Rejected, Err for TransportFailure.
type Outcome struct {
	Kind   Kind
	Status int
	Body   string
	Err    error
}

func (o Outcome) String() string {
	switch o.Kind {
	case Accepted:
		return "accepted"
	case Rejected:
		return fmt.Sprintf("rejected: status %d: %s", o.Status, o.Body)
	case TransportFailure:
		return fmt.Sprintf("transport failure: %v", o.Err)
	default:
		return o.Kind.String()
	}
}

// Payload is the JSON body accepted by the scoring endpoint.
type Payload struct {
	GameName string `json:"game_name"`
	Player   string `json:"player"`
	Score    int64  `json:"score"`
	Cabinet  string `json:"cabinet"`
}

// Doer is the subset of *http.Client used by Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client posts records to a single endpoint. It performs no retries.
type Client struct {
	endpoint string
	http     Doer
}

// NewClient returns a Client for endpoint. A nil doer selects a client built
// with default HTTPOptions.
func NewClient(endpoint string, doer Doer) *Client {
	if doer == nil {
		c, _ := NewHTTPClient(HTTPOptions{})
		doer = c
	}
	return &Client{endpoint: endpoint, http: doer}
}

// Endpoint returns the URL records are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// Submit sends one record and classifies the response. Only 201 counts as
// Accepted.
func (c *Client) Submit(ctx context.Context, gameName string, rec score.Record, source string) Outcome {
	body, err := json.Marshal(Payload{
		GameName: gameName,
		Player:   rec.Player,
		Score:    rec.Score,
		Cabinet:  source,
	})
	if err != nil {
		return Outcome{Kind: TransportFailure, Err: fmt.Errorf("encode payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Outcome{Kind: TransportFailure, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Outcome{Kind: TransportFailure, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusCreated {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return Outcome{Kind: Accepted, Status: resp.StatusCode}
	}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	return Outcome{Kind: Rejected, Status: resp.StatusCode, Body: string(b)}
}
