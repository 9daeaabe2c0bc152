package frame

import (
	"context"
	"fmt"
)

// Static always reports the same brightness.
type Static float64

// Acquire implements Source.
func (s Static) Acquire(context.Context) (Handle, error) {
	return s, nil
}

// Brightness implements Handle.
func (s Static) Brightness(int, int) float64 {
	return float64(s)
}

// Close implements Handle.
func (Static) Close() error {
	return nil
}

// Denied is a source whose acquisition always fails, as when the user
// refuses camera access.
type Denied struct {
	Reason string
}

// Acquire implements Source.
func (d Denied) Acquire(context.Context) (Handle, error) {
	if d.Reason == "" {
		return nil, ErrDenied
	}
	return nil, fmt.Errorf("%w: %s", ErrDenied, d.Reason)
}
