package collector

import (
	"context"
	"fmt"

	"CycleSentinel/internal/model"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// alpacaBarSource is the slice of the Alpaca market data client we use.
type alpacaBarSource interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaFetcher implements Fetcher using Alpaca's historical bars endpoint.
// Weekly bars are aggregated from daily bars.
type AlpacaFetcher struct {
	Client alpacaBarSource
}

// NewAlpacaFetcher creates a fetcher backed by the Alpaca market data API.
func NewAlpacaFetcher(apiKey, apiSecret, baseURL string) *AlpacaFetcher {
	return &AlpacaFetcher{
		Client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

func (f *AlpacaFetcher) FetchBars(ctx context.Context, req BarRequest) ([]model.OHLCV, error) {
	if req.Interval != "" && req.Interval != IntervalDaily && req.Interval != IntervalWeekly {
		return nil, fmt.Errorf("alpaca: unsupported interval %q", req.Interval)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := f.Client.GetBars(req.Symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     req.Start,
		End:       endOrNow(req.End),
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca fetch bars: %w", err)
	}
	bars := make([]model.OHLCV, len(raw))
	for i, b := range raw {
		bars[i] = model.OHLCV{
			Time:   b.Timestamp.UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		}
	}
	if req.Interval == IntervalWeekly {
		return aggregateDailyToWeekly(bars), nil
	}
	return bars, nil
}
