package domain

import "time"

// Kline represents a single OHLCV candle. Series of klines are ordered by
// ascending OpenTime and are never mutated after they are fetched.
type Kline struct {
	OpenTime  time.Time `json:"open_time"`  // Start time of the interval
	CloseTime time.Time `json:"close_time"` // End time of the interval
	Symbol    string    `json:"symbol"`     // Trading symbol
	Interval  string    `json:"interval"`   // Kline interval (e.g., "15m", "1h")
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	IsFinal   bool      `json:"is_final"` // Whether this kline is the final one for the interval
}

// Body returns the absolute open-to-close distance.
func (k *Kline) Body() float64 {
	if k.Close >= k.Open {
		return k.Close - k.Open
	}
	return k.Open - k.Close
}

// Range returns the full high-to-low distance.
func (k *Kline) Range() float64 {
	return k.High - k.Low
}

// IsBullish reports whether the candle closed above its open.
func (k *Kline) IsBullish() bool {
	return k.Close > k.Open
}

// IsBearish reports whether the candle closed below its open.
func (k *Kline) IsBearish() bool {
	return k.Close < k.Open
}

// LowerWick returns the distance between the low and the lower end of the body.
func (k *Kline) LowerWick() float64 {
	if k.Close >= k.Open {
		return k.Open - k.Low
	}
	return k.Close - k.Low
}

// UpperWick returns the distance between the high and the upper end of the body.
func (k *Kline) UpperWick() float64 {
	if k.Close >= k.Open {
		return k.High - k.Close
	}
	return k.High - k.Open
}
