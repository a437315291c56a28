package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/learnify/learnify/internal/apperrors"
)

var llmEventColumns = []string{
	"id", "timestamp", "user_id", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success",
	"error_message", "request_body", "response_body",
}

// eventRepo implements EventRepo on the llm_request_events table.
type eventRepo struct {
	conn conn
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	query, args := r.conn.sql().Insert(LlmRequestEventsTable.Name).
		Columns(llmEventColumns[1:]...).
		Values(time.Now().UTC(), data.UserID, data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success,
			data.ErrorMessage, data.RequestBody, data.ResponseBody).
		Query()
	if _, err := r.conn.exec(ctx, query, args); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	sel := r.conn.sql().Select(llmEventColumns...).
		From(entsql.Table(LlmRequestEventsTable.Name)).
		OrderBy(entsql.Desc("id"))
	if p := opts.predicate(); p != nil {
		sel.Where(p)
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	var out []LLMRequestEvent
	if err := r.conn.scan(ctx, query, args, &out); err != nil {
		return nil, fmt.Errorf("query LLM request events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) GetLLMRequest(ctx context.Context, id int64) (*LLMRequestEvent, error) {
	query, args := r.conn.sql().Select(llmEventColumns...).
		From(entsql.Table(LlmRequestEventsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()
	var out []LLMRequestEvent
	if err := r.conn.scan(ctx, query, args, &out); err != nil {
		return nil, fmt.Errorf("query LLM request event: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("LLM request event %d: %w", id, apperrors.ErrNotFound)
	}
	return &out[0], nil
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context, opts QueryOpts) ([]LLMUsage, error) {
	return r.usage(ctx, opts, "model")
}

func (r *eventRepo) LLMUsageByUser(ctx context.Context, opts QueryOpts) ([]LLMUsage, error) {
	return r.usage(ctx, opts, "user_id", "model")
}

func (r *eventRepo) usage(ctx context.Context, opts QueryOpts, groupBy ...string) ([]LLMUsage, error) {
	columns := make([]string, 0, len(groupBy)+5)
	columns = append(columns, groupBy...)
	columns = append(columns,
		entsql.As(entsql.Count("*"), "requests"),
		entsql.As("SUM(CASE WHEN success THEN 0 ELSE 1 END)", "failures"),
		entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
		entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
		entsql.As(entsql.Sum("latency_ms"), "latency_ms"),
	)
	sel := r.conn.sql().Select(columns...).
		From(entsql.Table(LlmRequestEventsTable.Name)).
		GroupBy(groupBy...).
		OrderBy(groupBy...)
	if p := opts.predicate(); p != nil {
		sel.Where(p)
	}
	query, args := sel.Query()

	var out []LLMUsage
	if err := r.conn.scan(ctx, query, args, &out); err != nil {
		return nil, fmt.Errorf("aggregate LLM usage: %w", err)
	}
	return out, nil
}

// predicate builds the WHERE clause for opts, or nil when unfiltered.
func (o QueryOpts) predicate() *entsql.Predicate {
	var preds []*entsql.Predicate
	if o.UserID != "" {
		preds = append(preds, entsql.EQ("user_id", o.UserID))
	}
	if !o.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", o.From.UTC()))
	}
	if !o.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", o.To.UTC()))
	}
	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	default:
		return entsql.And(preds...)
	}
}
