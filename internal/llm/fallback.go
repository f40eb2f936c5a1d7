package llm

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Outcome classifies one model invocation attempt so callers can decide
// between falling back to another model, waiting out a quota window, or
// giving up.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeQuotaExhausted
	OutcomeFailed
)

type Attempt struct {
	Outcome    Outcome
	RetryAfter time.Duration
	Err        error
}

const (
	minRetryWait = time.Second
	maxRetryWait = 5 * time.Minute
)

var (
	retryInPattern    = regexp.MustCompile(`retry in ([0-9.]+)s`)
	retryDelayPattern = regexp.MustCompile(`retryDelay[^0-9]*([0-9]+)s`)
)

// Classify inspects an invocation error. Quota exhaustion is detected from
// the 429 status, the RESOURCE_EXHAUSTED status string, or a "quota" mention,
// with the suggested wait pulled from the error details or message and
// clamped to a sane range.
func Classify(err error) Attempt {
	if err == nil {
		return Attempt{Outcome: OutcomeOK}
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Status == "RESOURCE_EXHAUSTED" || strings.Contains(apiErr.Message, "quota") {
			wait := apiErr.RetryDelay
			if wait == 0 {
				wait = parseRetryDelay(apiErr.Message)
			}
			return Attempt{Outcome: OutcomeQuotaExhausted, RetryAfter: clampWait(wait), Err: err}
		}
	}
	return Attempt{Outcome: OutcomeFailed, Err: err}
}

func parseRetryDelay(msg string) time.Duration {
	if m := retryInPattern.FindStringSubmatch(msg); m != nil {
		if secs, err := strconv.ParseFloat(m[1], 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
	}
	if m := retryDelayPattern.FindStringSubmatch(msg); m != nil {
		if secs, err := strconv.Atoi(m[1]); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

func clampWait(d time.Duration) time.Duration {
	if d < minRetryWait {
		return minRetryWait
	}
	if d > maxRetryWait {
		return maxRetryWait
	}
	return d
}

// ModelCursor is an explicit position over an ordered fallback list of model
// identifiers. The caller owns the cursor; there is no process-global model
// state.
type ModelCursor struct {
	models []string
	pos    int
}

func NewModelCursor(models []string) *ModelCursor {
	return &ModelCursor{models: models}
}

// Current returns the model the cursor points at, or "" for an empty list.
func (c *ModelCursor) Current() string {
	if c.pos >= len(c.models) {
		return ""
	}
	return c.models[c.pos]
}

// Advance moves to the next fallback model, reporting false once the list is
// exhausted.
func (c *ModelCursor) Advance() bool {
	if c.pos+1 >= len(c.models) {
		return false
	}
	c.pos++
	return true
}

// Reset rewinds to the primary model.
func (c *ModelCursor) Reset() {
	c.pos = 0
}
