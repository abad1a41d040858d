// ABOUTME: Placeholder thumbnail generator for the console
// ABOUTME: Produces frame locators instead of decoding video

package console

import (
	"context"
	"fmt"
	"time"
)

// PlaceholderGenerator answers thumbnail requests with media fragment
// locators ("<locator>#frame=<i>") after an optional delay.
type PlaceholderGenerator struct {
	Delay time.Duration
}

// Generate implements timeline.Generator
func (g PlaceholderGenerator) Generate(ctx context.Context, locator string, count int) ([]string, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid frame count: %d", count)
	}
	if g.Delay > 0 {
		select {
		case <-time.After(g.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	frames := make([]string, count)
	for i := range frames {
		frames[i] = fmt.Sprintf("%s#frame=%d", locator, i)
	}
	return frames, nil
}
