package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fastjson"
	"go.uber.org/zap"

	"github.com/noah-isme/case-dashboard-api/internal/models"
	"github.com/noah-isme/case-dashboard-api/pkg/retry"
)

// Upstream actions understood by the spreadsheet API.
const (
	ActionPing  = "ping"
	ActionStats = "stats"
	ActionData  = "data"
)

const (
	defaultUpstreamTimeout = 20 * time.Second
	maxResponseBytes       = 32 << 20
)

// APIError is an error payload reported by the upstream itself. It is never retried.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream error: %s", e.Code)
	}
	return fmt.Sprintf("upstream error: %s - %s", e.Code, e.Message)
}

// StatusError reports a non-2xx HTTP answer.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream responded with status %d", e.StatusCode)
}

// UpstreamConfig configures the spreadsheet API client.
type UpstreamConfig struct {
	BaseURL     string
	Timeout     time.Duration
	PingPolicy  retry.Policy
	FetchPolicy retry.Policy
}

type fetchObserver interface {
	ObserveUpstreamFetch(action, outcome string, duration time.Duration)
	IncUpstreamRetry(action string)
}

// UpstreamRepository reads stats and case records from the spreadsheet API.
type UpstreamRepository struct {
	client  *http.Client
	cfg     UpstreamConfig
	metrics fetchObserver
	logger  *zap.Logger
	parsers fastjson.ParserPool
}

// NewUpstreamRepository constructs the client. A nil client gets a dedicated
// one so tests can intercept it without touching http.DefaultClient.
func NewUpstreamRepository(cfg UpstreamConfig, client *http.Client, metrics fetchObserver, logger *zap.Logger) *UpstreamRepository {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultUpstreamTimeout
	}
	if cfg.PingPolicy.MaxAttempts <= 0 {
		cfg.PingPolicy = retry.DefaultPolicy().WithAttempts(2)
	}
	if cfg.FetchPolicy.MaxAttempts <= 0 {
		cfg.FetchPolicy = retry.DefaultPolicy()
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpstreamRepository{client: client, cfg: cfg, metrics: metrics, logger: logger}
}

// Client exposes the underlying HTTP client.
func (r *UpstreamRepository) Client() *http.Client {
	return r.client
}

// Ping asks the upstream for its version.
func (r *UpstreamRepository) Ping(ctx context.Context) (*models.Ping, error) {
	var out models.Ping
	err := r.fetch(ctx, ActionPing, r.cfg.PingPolicy, func(v *fastjson.Value) error {
		out.OK = v.GetBool("ok")
		out.Version = string(v.GetStringBytes("version"))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats fetches the headline counters and filter breakdowns.
func (r *UpstreamRepository) Stats(ctx context.Context) (*models.StatsPayload, error) {
	var out *models.StatsPayload
	err := r.fetch(ctx, ActionStats, r.cfg.FetchPolicy, func(v *fastjson.Value) error {
		out = decodeStats(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Cases fetches every case record.
func (r *UpstreamRepository) Cases(ctx context.Context) (*models.CasesPayload, error) {
	var out models.CasesPayload
	err := r.fetch(ctx, ActionData, r.cfg.FetchPolicy, func(v *fastjson.Value) error {
		cases := v.Get("cases")
		if cases != nil && cases.Type() != fastjson.TypeArray && cases.Type() != fastjson.TypeNull {
			return fmt.Errorf("cases is %s, want array", cases.Type())
		}
		out.Cases = decodeRecords(v.GetArray("cases"))
		if v.Exists("stats") {
			out.Stats = decodeStats(v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UpstreamRepository) endpoint(action string) (string, error) {
	u, err := url.Parse(r.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse upstream url: %w", err)
	}
	q := u.Query()
	q.Set("action", action)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (r *UpstreamRepository) fetch(ctx context.Context, action string, policy retry.Policy, decode func(*fastjson.Value) error) error {
	endpoint, err := r.endpoint(action)
	if err != nil {
		return err
	}

	start := time.Now()
	err = retry.Do(ctx, policy, func(ctx context.Context, attempt int) error {
		return r.attempt(ctx, endpoint, decode)
	}, func(attempt int, err error, next time.Duration) {
		r.logger.Warn("upstream request failed, retrying",
			zap.String("action", action),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", policy.MaxAttempts),
			zap.Duration("next_delay", next),
			zap.Error(err),
		)
		if r.metrics != nil {
			r.metrics.IncUpstreamRetry(action)
		}
	})

	outcome := "success"
	if err != nil {
		outcome = "failure"
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			outcome = "api_error"
		}
	}
	if r.metrics != nil {
		r.metrics.ObserveUpstreamFetch(action, outcome, time.Since(start))
	}
	return err
}

func (r *UpstreamRepository) attempt(ctx context.Context, endpoint string, decode func(*fastjson.Value) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return retry.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read upstream body: %w", err)
	}

	p := r.parsers.Get()
	defer r.parsers.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return fmt.Errorf("decode upstream body: %w", err)
	}
	if v.Type() != fastjson.TypeObject {
		return fmt.Errorf("decode upstream body: got %s, want object", v.Type())
	}
	if apiErr := readAPIError(v); apiErr != nil {
		return retry.Permanent(apiErr)
	}
	return decode(v)
}

func readAPIError(v *fastjson.Value) *APIError {
	raw := v.Get("error")
	if raw == nil {
		return nil
	}
	switch raw.Type() {
	case fastjson.TypeNull, fastjson.TypeFalse:
		return nil
	case fastjson.TypeString:
		if len(raw.GetStringBytes()) == 0 {
			return nil
		}
	}
	code := models.Stringify(toValue(raw))
	return &APIError{Code: code, Message: string(v.GetStringBytes("message"))}
}

func decodeStats(v *fastjson.Value) *models.StatsPayload {
	out := &models.StatsPayload{
		Stats: models.Stats{
			Total:       v.GetInt("stats", "total"),
			Approved:    v.GetInt("stats", "approved"),
			Pending:     v.GetInt("stats", "pending"),
			OnHold:      v.GetInt("stats", "onhold"),
			NotApproved: v.GetInt("stats", "not_approved"),
		},
		LastUpdated:   models.Stringify(toValue(v.Get("lastUpdated"))),
		ResidentStats: decodeCounts(v.GetObject("residentStats")),
		FacultyStats:  decodeCounts(v.GetObject("facultyStats")),
	}
	if meta := v.Get("meta"); meta != nil && meta.Type() == fastjson.TypeObject {
		out.Meta = &models.UpstreamMeta{
			Version:      string(meta.GetStringBytes("version")),
			CacheSeconds: meta.GetInt("cacheSeconds"),
		}
	}
	return out
}

func decodeCounts(o *fastjson.Object) map[string]int {
	counts := map[string]int{}
	if o == nil {
		return counts
	}
	o.Visit(func(key []byte, v *fastjson.Value) {
		switch v.Type() {
		case fastjson.TypeNumber:
			counts[string(key)] = v.GetInt()
		case fastjson.TypeString:
			if n, err := strconv.Atoi(strings.TrimSpace(string(v.GetStringBytes()))); err == nil {
				counts[string(key)] = n
			}
		}
	})
	return counts
}

func decodeRecords(values []*fastjson.Value) []models.Record {
	records := make([]models.Record, 0, len(values))
	for _, v := range values {
		if v.Type() != fastjson.TypeObject {
			continue
		}
		if rec, ok := toValue(v).(models.Record); ok {
			records = append(records, rec)
		}
	}
	return records
}

// toValue copies a parsed value out of the parser's arena. Nulls become nil
// and are dropped from objects and arrays.
func toValue(v *fastjson.Value) any {
	if v == nil {
		return nil
	}
	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		return v.GetFloat64()
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	case fastjson.TypeArray:
		items := v.GetArray()
		out := make([]any, 0, len(items))
		for _, item := range items {
			if converted := toValue(item); converted != nil {
				out = append(out, converted)
			}
		}
		return out
	case fastjson.TypeObject:
		out := models.Record{}
		v.GetObject().Visit(func(key []byte, item *fastjson.Value) {
			if converted := toValue(item); converted != nil {
				out[string(key)] = converted
			}
		})
		return out
	default:
		return nil
	}
}
