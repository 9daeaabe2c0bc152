package session

import "time"

type (
	// Clock abstracts the parts of package time the controller uses so tests
	// can control the apparent time and the tick cadence.
	Clock interface {
		Now() time.Time
		NewTicker(d time.Duration) Ticker
	}

	// Ticker abstracts time.Ticker.
	Ticker interface {
		C() <-chan time.Time
		Stop()
	}

	wallClock struct{}

	ticker struct {
		*time.Ticker
	}
)

// WallClock is the Clock backed by package time.
var WallClock Clock = wallClock{}

// Now indirects time.Now.
func (wallClock) Now() time.Time {
	return time.Now()
}

// NewTicker indirects time.NewTicker.
func (wallClock) NewTicker(d time.Duration) Ticker {
	return ticker{Ticker: time.NewTicker(d)}
}

// C indirects time.Ticker.C.
func (t ticker) C() <-chan time.Time {
	return t.Ticker.C
}
