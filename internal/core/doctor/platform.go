package doctor

import (
	"context"
	"fmt"
	"time"
)

// PlatformCheck verifies the review platform answers its health endpoint.
type PlatformCheck struct {
	baseURL string
	health  func(ctx context.Context) error
	timeout time.Duration
}

// NewPlatformCheck creates a check calling health with the given timeout.
func NewPlatformCheck(baseURL string, health func(ctx context.Context) error, timeout time.Duration) *PlatformCheck {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PlatformCheck{baseURL: baseURL, health: health, timeout: timeout}
}

func (c *PlatformCheck) Name() string {
	return "Platform"
}

func (c *PlatformCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	if err := c.health(ctx); err != nil {
		result.add(c.baseURL, StatusFail, err.Error())
		return result
	}

	result.add(c.baseURL, StatusPass, fmt.Sprintf("healthy in %s", time.Since(start).Round(time.Millisecond)))
	return result
}
