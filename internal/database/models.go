package database

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TestResult is one submitted and accepted questionnaire
type TestResult struct {
	ID         int64     `json:"id" db:"id"`
	UID        string    `json:"uid" db:"uid"`
	Email      string    `json:"email,omitempty" db:"email"`
	FullName   string    `json:"fullName" db:"full_name"`
	TestResult string    `json:"testResult" db:"test_result"`
	DurationMs int64     `json:"duration" db:"duration_ms"`
	Tags       []string  `json:"tags" db:"tags"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// NewTestResult creates a result with a generated uid
func NewTestResult(email, fullName, encoded string, duration time.Duration, tags []string) *TestResult {
	now := time.Now().UTC()
	return &TestResult{
		UID:        uuid.New().String(),
		Email:      email,
		FullName:   fullName,
		TestResult: encoded,
		DurationMs: duration.Milliseconds(),
		Tags:       tags,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Duration returns the time spent on the questionnaire
func (r *TestResult) Duration() time.Duration {
	return time.Duration(r.DurationMs) * time.Millisecond
}

func joinTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return strings.Join(cleaned, ",")
}

func splitTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return strings.Split(raw, ",")
}
