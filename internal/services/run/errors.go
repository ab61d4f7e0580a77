package run

import (
	"errors"
	"fmt"
)

// ErrNonTradingDay is returned by a gated run on weekends and market
// holidays. It marks a skipped run, not a failure.
var ErrNonTradingDay = errors.New("non-trading day")

// TotalDataError indicates the run produced no usable market data at all:
// the watchlist could not be loaded, or no quote could be fetched for any
// ticker. A run with partial data proceeds; a run with none is retried.
type TotalDataError struct {
	Tickers int
	Err     error
}

func (e *TotalDataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no usable market data: %v", e.Err)
	}
	return fmt.Sprintf("no quotes fetched for any of %d tickers", e.Tickers)
}

func (e *TotalDataError) Unwrap() error {
	return e.Err
}

// DeliveryError indicates the assembled report could not be sent. The report
// itself was fine, so the whole run is retried.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("report delivery failed: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// isRetryable reports whether a run failure is worth another whole-run
// attempt.
func isRetryable(err error) bool {
	var total *TotalDataError
	var delivery *DeliveryError
	return errors.As(err, &total) || errors.As(err, &delivery)
}
