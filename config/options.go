package config

import (
	"fmt"
	"time"
)

// ThreadCount is the validated worker-pool size (spec §5: default 64).
type ThreadCount int

// DefaultThreadCount is the --threads flag's default; an explicit zero is
// rejected by ParseThreadCount rather than replaced by this value.
const DefaultThreadCount ThreadCount = 64

// ParseThreadCount validates n as a usable pool size.
func ParseThreadCount(n int) (ThreadCount, error) {
	if n <= 0 {
		return 0, fmt.Errorf("thread count must be positive, got %d", n)
	}
	return ThreadCount(n), nil
}

func (t ThreadCount) String() string { return fmt.Sprintf("%d", int(t)) }

// ThreadDelay is the pause taken before each oracle call (spec §5: default
// 0ms — no delay unless the target needs rate-limit avoidance).
type ThreadDelay time.Duration

// DefaultThreadDelay is the zero-delay default.
const DefaultThreadDelay ThreadDelay = 0

func (d ThreadDelay) String() string { return time.Duration(d).String() }

// RequestTimeout bounds a single HTTP oracle request (spec §5: default 10s).
type RequestTimeout time.Duration

// DefaultRequestTimeout matches original_source's RequestTimeout::default().
const DefaultRequestTimeout RequestTimeout = RequestTimeout(10 * time.Second)

func (r RequestTimeout) String() string { return time.Duration(r).String() }
