package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"time"

	"CycleSentinel/internal/model"
)

// RESTFetcher implements Fetcher against a generic JSON bar API:
// GET {base}/api/v1/bars/{daily|weekly}?symbol=..&from=..&to=..
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bar API.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// FetchBars fetches daily bars, or weekly bars with a fallback to
// aggregating daily bars when the API has no weekly endpoint.
func (f *RESTFetcher) FetchBars(ctx context.Context, req BarRequest) ([]model.OHLCV, error) {
	switch req.Interval {
	case "", IntervalDaily:
		return f.fetchBars(ctx, f.endpoint("daily", req))
	case IntervalWeekly:
		bars, err := f.fetchBars(ctx, f.endpoint("weekly", req))
		if err == nil {
			return bars, nil
		}
		log.Printf("[WARN] rest weekly endpoint failed, aggregating daily bars: %v", err)
		dailyBars, dailyErr := f.fetchBars(ctx, f.endpoint("daily", req))
		if dailyErr != nil {
			return nil, fmt.Errorf("weekly fetch failed: %w; daily fallback also failed: %w", err, dailyErr)
		}
		return aggregateDailyToWeekly(dailyBars), nil
	default:
		return nil, fmt.Errorf("rest: unsupported interval %q", req.Interval)
	}
}

func (f *RESTFetcher) endpoint(kind string, req BarRequest) string {
	q := url.Values{}
	q.Set("symbol", req.Symbol)
	q.Set("from", req.Start.Format("2006-01-02"))
	q.Set("to", endOrNow(req.End).Format("2006-01-02"))
	return fmt.Sprintf("%s/api/v1/bars/%s?%s", f.BaseURL, kind, q.Encode())
}

func (f *RESTFetcher) fetchBars(ctx context.Context, endpoint string) ([]model.OHLCV, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var raw []restBar
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	bars := make([]model.OHLCV, len(raw))
	for i, rb := range raw {
		bars[i] = model.OHLCV{
			Time:   time.Unix(rb.Timestamp, 0).UTC(),
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: rb.Volume,
		}
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
