// Package services wires the transaction store, the caches, and the
// aggregation logic into the read and mutation operations the HTTP
// layer exposes.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"jizhang/internal/cache"
	"jizhang/internal/core"
	"jizhang/internal/store"
)

// Analytics serves the read side: per-month overviews and the
// aggregated analytics views, both read-through cached.
type Analytics struct {
	source store.Source
	lists  *cache.Cache
	views  *cache.Cache
	cal    core.Calendar
	logger *slog.Logger
}

// NewAnalytics builds the read service. lists caches raw month lists
// and summaries; views caches the analytics view payloads. The two may
// share a backing store or use different ones.
func NewAnalytics(source store.Source, lists, views *cache.Cache, cal core.Calendar, logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{
		source: source,
		lists:  lists,
		views:  views,
		cal:    cal,
		logger: logger,
	}
}

// Overview is the per-month raw list plus its derived summary.
type Overview struct {
	Transactions []core.Transaction `json:"transactions"`
	Summary      core.Summary       `json:"summary"`
}

// ViewResult is the aggregated analytics payload for one tab+period.
type ViewResult struct {
	Summary         core.Summary          `json:"summary"`
	CategoryBuckets []core.CategoryBucket `json:"category_buckets"`
	TimeBuckets     []core.TimeBucket     `json:"time_buckets"`
}

// viewPayload is what the view cache stores: the fetched transactions
// and their summary. Aggregation is recomputed per request since the
// tab filter is not part of the key.
type viewPayload struct {
	Transactions []core.Transaction `json:"transactions"`
	Summary      core.Summary       `json:"summary"`
}

// MonthOverview returns the user's transactions and summary for one
// month, fetching from the remote store on cache miss.
func (a *Analytics) MonthOverview(ctx context.Context, userID string, year, month int) (Overview, error) {
	txKey := cache.TransactionsKey(userID, year, month)
	sumKey := cache.SummaryKey(userID, year, month)

	var overview Overview
	if a.lists.Get(ctx, txKey, &overview.Transactions) && a.lists.Get(ctx, sumKey, &overview.Summary) {
		a.logger.Debug("month overview served from cache", "user", userID, "year", year, "month", month)
		return overview, nil
	}

	from, to := a.cal.MonthBounds(year, month)
	txs, err := a.source.FetchRange(ctx, userID, from, to)
	if err != nil {
		return Overview{}, fmt.Errorf("fetch month transactions: %w", err)
	}

	overview.Transactions = txs
	overview.Summary = core.Summarize(txs, core.ViewMonth, a.cal, year, month)

	a.lists.Put(ctx, txKey, overview.Transactions)
	a.lists.Put(ctx, sumKey, overview.Summary)
	return overview, nil
}

// View returns the aggregated analytics for one tab and period. The
// fetched transactions and summary are cached per period and view
// type; the tab-dependent aggregation runs on every call.
func (a *Analytics) View(ctx context.Context, userID string, year, month int, tab core.Tab, view core.ViewType) (ViewResult, error) {
	if !tab.IsValid() {
		return ViewResult{}, fmt.Errorf("%w: %q", core.ErrInvalidTab, tab)
	}
	if !view.IsValid() {
		return ViewResult{}, fmt.Errorf("%w: %q", core.ErrInvalidView, view)
	}

	key := cache.YearlyViewKey(userID, year)
	if view == core.ViewMonth {
		key = cache.MonthlyViewKey(userID, year, month)
	}

	var payload viewPayload
	if !a.views.Get(ctx, key, &payload) {
		from, to := a.cal.YearBounds(year)
		if view == core.ViewMonth {
			from, to = a.cal.MonthBounds(year, month)
		}
		txs, err := a.source.FetchRange(ctx, userID, from, to)
		if err != nil {
			return ViewResult{}, fmt.Errorf("fetch analytics transactions: %w", err)
		}
		payload = viewPayload{
			Transactions: txs,
			Summary:      core.Summarize(txs, view, a.cal, year, month),
		}
		a.views.Put(ctx, key, payload)
	}

	agg := core.Aggregate(payload.Transactions, tab, view, a.cal, year, month)
	return ViewResult{
		Summary:         payload.Summary,
		CategoryBuckets: agg.CategoryBuckets,
		TimeBuckets:     agg.TimeBuckets,
	}, nil
}
