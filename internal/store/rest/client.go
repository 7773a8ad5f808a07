// Package rest implements the transaction store ports against a
// PostgREST-style HTTP API with expenses and incomes sub-collections.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"jizhang/internal/core"
	"jizhang/internal/store"
)

// Client talks to the remote transaction store.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cal     core.Calendar
}

// New builds a client for the store at baseURL. Requests authenticate
// with the given API key.
func New(baseURL, apiKey string, cal core.Calendar) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		cal:     cal,
	}
}

// StatusError is a non-2xx response from the remote store.
type StatusError struct {
	Code     int
	Endpoint string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote store returned %d on %s", e.Code, e.Endpoint)
}

// rawRecord mirrors the remote schema. IDs arrive as numbers or
// strings depending on the collection, hence json.Number.
type rawRecord struct {
	ID        json.Number     `json:"id"`
	UserID    string          `json:"user_id"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Datetime  string          `json:"datetime"`
	Memo      string          `json:"memo"`
	IsFixed   bool            `json:"is_fixed"`
	Frequency string          `json:"frequency"`
	Interval  int             `json:"interval"`
}

type updatePayload struct {
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Datetime  string          `json:"datetime"`
	Memo      string          `json:"memo"`
	IsFixed   bool            `json:"is_fixed"`
	Frequency string          `json:"frequency,omitempty"`
	Interval  int             `json:"interval,omitempty"`
}

// FetchRange queries the expenses and incomes collections in parallel
// and merges the results. Either sub-query failing fails the whole
// fetch so callers never see a half-populated list.
func (c *Client) FetchRange(ctx context.Context, userID string, from, to time.Time) ([]core.Transaction, error) {
	var expenses, incomes []core.Transaction

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = c.fetchCollection(ctx, core.TypeExpense, userID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		incomes, err = c.fetchCollection(ctx, core.TypeIncome, userID, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return append(expenses, incomes...), nil
}

func (c *Client) fetchCollection(ctx context.Context, typ core.TxType, userID string, from, to time.Time) ([]core.Transaction, error) {
	q := url.Values{}
	q.Set("user_id", "eq."+userID)
	q.Add("datetime", "gte."+from.Format(time.RFC3339))
	q.Add("datetime", "lte."+to.Format(time.RFC3339))

	var records []rawRecord
	if err := c.get(ctx, typ.Collection(), q, &records); err != nil {
		return nil, err
	}

	txs := make([]core.Transaction, 0, len(records))
	for _, r := range records {
		txs = append(txs, c.normalize(r, typ, userID))
	}
	return txs, nil
}

// FetchByID looks a transaction up in the sub-collection owned by typ.
func (c *Client) FetchByID(ctx context.Context, id string, typ core.TxType) (core.Transaction, error) {
	q := url.Values{}
	q.Set("id", "eq."+id)

	var records []rawRecord
	if err := c.get(ctx, typ.Collection(), q, &records); err != nil {
		return core.Transaction{}, err
	}
	if len(records) == 0 {
		return core.Transaction{}, fmt.Errorf("%w: %s %s", store.ErrNotFound, typ, id)
	}
	return c.normalize(records[0], typ, records[0].UserID), nil
}

// Update issues a partial update scoped by id against the owning
// sub-collection.
func (c *Client) Update(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	day, err := core.ParseLocalDate(tx.Date)
	if err != nil {
		// Soft-fail convention: an unreadable date becomes today.
		day = c.cal.Today()
	}

	payload := updatePayload{
		Category: tx.Category,
		Amount:   storedAmount(tx),
		Datetime: c.cal.At(day).Format(time.RFC3339),
		Memo:     tx.Note,
		IsFixed:  tx.IsFixed,
	}
	if tx.IsFixed {
		payload.Frequency = string(tx.Frequency)
		payload.Interval = tx.Interval
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode update: %w", err)
	}

	q := url.Values{}
	q.Set("id", "eq."+tx.ID)
	return c.send(ctx, http.MethodPatch, tx.Type.Collection(), q, body)
}

// Delete removes the transaction with the given id from the
// sub-collection owned by typ.
func (c *Client) Delete(ctx context.Context, id string, typ core.TxType) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return c.send(ctx, http.MethodDelete, typ.Collection(), q, nil)
}

func (c *Client) get(ctx context.Context, collection string, q url.Values, out any) error {
	endpoint := c.baseURL + "/" + collection
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("query %s: %w", collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode, Endpoint: "/" + collection}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", collection, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, collection string, q url.Values, body []byte) error {
	endpoint := c.baseURL + "/" + collection
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint+"?"+q.Encode(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, collection, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Endpoint: "/" + collection}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")
}

// normalize converts a raw record into the unified shape: signed
// amount per type, fallback category, localized date.
func (c *Client) normalize(r rawRecord, typ core.TxType, userID string) core.Transaction {
	if r.UserID != "" {
		userID = r.UserID
	}

	tx := core.Transaction{
		ID:      r.ID.String(),
		UserID:  userID,
		Amount:  signedAmount(r.Amount, typ),
		Date:    c.localDate(r.Datetime),
		Type:    typ,
		Note:    r.Memo,
		IsFixed: r.IsFixed,
	}
	tx.Category = core.Transaction{Category: r.Category, Type: typ}.CategoryOrDefault()
	if r.IsFixed {
		tx.Frequency = core.Frequency(r.Frequency)
		tx.Interval = r.Interval
	}
	return tx
}

func (c *Client) localDate(datetime string) string {
	if t, err := time.Parse(time.RFC3339, datetime); err == nil {
		return core.FormatLocalDate(c.cal.DayOf(t))
	}
	if d, err := core.ParseLocalDate(datetime); err == nil {
		return core.FormatLocalDate(d)
	}
	return core.FormatLocalDate(c.cal.Today())
}

// signedAmount enforces the sign convention: expenses negative,
// incomes positive, whatever the store returned.
func signedAmount(amount decimal.Decimal, typ core.TxType) decimal.Decimal {
	abs := amount.Abs()
	if typ == core.TypeExpense {
		return abs.Neg()
	}
	return abs
}

// storedAmount maps the unified signed amount back to what the remote
// store expects, which is the same convention.
func storedAmount(tx core.Transaction) decimal.Decimal {
	return signedAmount(tx.Amount, tx.Type)
}
