package aiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type ReportType string

const (
	ReportInitial ReportType = "initial"
	ReportDaily   ReportType = "daily"
)

// Options carries the birth input and report variant for one
// generation call.
type Options struct {
	Name      string
	BirthDate string // YYYY-MM-DD
	BirthTime string // HH:MM, optional
	Gender    string // male | female
	Type      ReportType
	Today     string // YYYY-MM-DD, daily reports only

	// PreviousAnalysis is optional reference material for daily reports.
	PreviousAnalysis string
}

// Result is the raw markdown body plus the structured JSON block the
// model is instructed to emit at the end of its output.
type Result struct {
	Markdown string
	JSON     map[string]interface{}
}

// Client is implemented per provider (gemini, openai).
type Client interface {
	Generate(ctx context.Context, opts Options) (*Result, error)
	ModelName(t ReportType) string
}

// RetryConfig bounds the retry loop around a generation call.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Timeout        time.Duration
}

func DefaultRetryConfig(maxRetries int, timeout time.Duration) RetryConfig {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return RetryConfig{
		MaxRetries:     maxRetries,
		InitialBackoff: time.Second,
		MaxBackoff:     8 * time.Second,
		Timeout:        timeout,
	}
}

// GenerateWithRetry runs the generation call under exponential backoff
// and a hard wall-clock deadline shared by all attempts.
func GenerateWithRetry(ctx context.Context, c Client, opts Options, rc RetryConfig) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, rc.Timeout)
	defer cancel()

	var lastErr error
	backoff := rc.InitialBackoff

	for attempt := 0; attempt < rc.MaxRetries; attempt++ {
		result, err := c.Generate(ctx, opts)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == rc.MaxRetries-1 {
			break
		}

		logrus.Warnf("generation attempt %d failed, retrying in %s: %v", attempt+1, backoff, err)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("generation timed out: %w", ctx.Err())
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > rc.MaxBackoff {
			backoff = rc.MaxBackoff
		}
	}

	return nil, lastErr
}

var jsonBlockRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// ExtractJSONBlock pulls the fenced ```json block out of the model's
// textual response. Returns nil if absent or malformed.
func ExtractJSONBlock(text string) map[string]interface{} {
	match := jsonBlockRe.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(match[1]), &parsed); err != nil {
		return nil
	}
	return parsed
}

// ValidateReportJSON checks the type-specific required fields of the
// structured block before anything is persisted.
func ValidateReportJSON(j map[string]interface{}, t ReportType) bool {
	if j == nil {
		return false
	}

	if !hasNumber(j, "overall_score") {
		return false
	}
	for _, aspect := range []string{"career", "wealth", "health", "relationship"} {
		if !hasNumber(j, "fortune_aspects", aspect, "score") {
			return false
		}
	}
	if !hasArray(j, "lucky_elements") || !hasArray(j, "warnings") {
		return false
	}

	if t == ReportDaily {
		if !hasString(j, "date") {
			return false
		}
		for _, slot := range []string{"morning", "afternoon", "evening"} {
			if !hasNumber(j, "time_slots", slot, "score") {
				return false
			}
		}
	}

	return true
}

var excessNewlinesRe = regexp.MustCompile(`\n{3,}`)

// Sanitize collapses runs of 3+ newlines to one blank line and trims.
func Sanitize(text string) string {
	return strings.TrimSpace(excessNewlinesRe.ReplaceAllString(text, "\n\n"))
}

func dig(j map[string]interface{}, path ...string) (interface{}, bool) {
	var cur interface{} = j
	for _, key := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func hasNumber(j map[string]interface{}, path ...string) bool {
	v, ok := dig(j, path...)
	if !ok {
		return false
	}
	_, ok = v.(float64)
	return ok
}

func hasString(j map[string]interface{}, path ...string) bool {
	v, ok := dig(j, path...)
	if !ok {
		return false
	}
	s, ok := v.(string)
	return ok && s != ""
}

func hasArray(j map[string]interface{}, path ...string) bool {
	v, ok := dig(j, path...)
	if !ok {
		return false
	}
	_, ok = v.([]interface{})
	return ok
}
