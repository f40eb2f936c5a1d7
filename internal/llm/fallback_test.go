package llm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_OK(t *testing.T) {
	attempt := Classify(nil)
	assert.Equal(t, OutcomeOK, attempt.Outcome)
	assert.NoError(t, attempt.Err)
}

func TestClassify_Quota(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want time.Duration
	}{
		{
			name: "status 429 with retryDelay detail",
			err:  &APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota exceeded", RetryDelay: 22 * time.Second},
			want: 22 * time.Second,
		},
		{
			name: "resource exhausted without detail falls back to message",
			err:  &APIError{Code: 400, Status: "RESOURCE_EXHAUSTED", Message: "please retry in 7.5s"},
			want: 7500 * time.Millisecond,
		},
		{
			name: "quota mention, retryDelay inside the message body",
			err:  &APIError{Code: 429, Message: `quota hit, "retryDelay": "40s"`},
			want: 40 * time.Second,
		},
		{
			name: "no hint clamps up to the minimum",
			err:  &APIError{Code: 429, Message: "too many requests"},
			want: time.Second,
		},
		{
			name: "absurd hint clamps down to the maximum",
			err:  &APIError{Code: 429, Message: "retry in 86400s"},
			want: 5 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempt := Classify(tt.err)
			require.Equal(t, OutcomeQuotaExhausted, attempt.Outcome)
			assert.Equal(t, tt.want, attempt.RetryAfter)
			assert.Error(t, attempt.Err)
		})
	}
}

func TestClassify_WrappedAPIError(t *testing.T) {
	wrapped := errors.Join(errors.New("generate content"), &APIError{Code: 429, Message: "quota"})
	attempt := Classify(wrapped)
	assert.Equal(t, OutcomeQuotaExhausted, attempt.Outcome)
}

func TestClassify_Failed(t *testing.T) {
	attempt := Classify(errors.New("connection refused"))
	assert.Equal(t, OutcomeFailed, attempt.Outcome)

	attempt = Classify(&APIError{Code: 500, Status: "INTERNAL", Message: "server error"})
	assert.Equal(t, OutcomeFailed, attempt.Outcome)
}

func TestParseRetryDelay(t *testing.T) {
	assert.Equal(t, 30*time.Second, parseRetryDelay("please retry in 30s"))
	assert.Equal(t, 2500*time.Millisecond, parseRetryDelay("retry in 2.5s"))
	assert.Equal(t, 12*time.Second, parseRetryDelay(`"retryDelay": "12s"`))
	assert.Equal(t, time.Duration(0), parseRetryDelay("no hint here"))
}

func TestModelCursor(t *testing.T) {
	cursor := NewModelCursor([]string{"models/a", "models/b", "models/c"})

	assert.Equal(t, "models/a", cursor.Current())

	require.True(t, cursor.Advance())
	assert.Equal(t, "models/b", cursor.Current())

	require.True(t, cursor.Advance())
	assert.Equal(t, "models/c", cursor.Current())

	assert.False(t, cursor.Advance())
	assert.Equal(t, "models/c", cursor.Current())

	cursor.Reset()
	assert.Equal(t, "models/a", cursor.Current())
}

func TestModelCursor_Empty(t *testing.T) {
	cursor := NewModelCursor(nil)
	assert.Equal(t, "", cursor.Current())
	assert.False(t, cursor.Advance())
}
