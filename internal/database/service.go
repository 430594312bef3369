package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ZanzyTHEbar/teamconstructor/internal/encoding"
	apperrors "github.com/ZanzyTHEbar/teamconstructor/internal/errors"
	"github.com/ZanzyTHEbar/teamconstructor/internal/psychology"
)

// ResultService ties stored results to the scoring engine
type ResultService struct {
	repo      *Repository
	threshold float64
	diff      float64
}

// NewResultService creates a new result service
func NewResultService(repo *Repository, threshold, diff float64) *ResultService {
	return &ResultService{
		repo:      repo,
		threshold: threshold,
		diff:      diff,
	}
}

// Repository exposes the underlying repository
func (s *ResultService) Repository() *Repository {
	return s.repo
}

// Submission is a finished questionnaire ready to be stored
type Submission struct {
	Email    string
	FullName string
	Data     psychology.DecodedData
	Duration time.Duration
	Tags     []string
}

// SubmitResult is the outcome of Submit
type SubmitResult struct {
	Passed  bool
	Encoded string
	Stored  *TestResult
}

// Submit encodes the data and stores it when the test is passed.
// Failed tests are reported but never persisted.
func (s *ResultService) Submit(ctx context.Context, sub Submission) (*SubmitResult, error) {
	encoded, err := encoding.Encode(sub.Data)
	if err != nil {
		return nil, err
	}

	out := &SubmitResult{
		Passed:  psychology.IsTestPassed(sub.Data.Matrix, s.threshold),
		Encoded: encoded,
	}
	if !out.Passed {
		return out, nil
	}

	result := NewTestResult(sub.Email, sub.FullName, encoded, sub.Duration, sub.Tags)
	if err := s.repo.SaveTestResult(ctx, result); err != nil {
		return nil, apperrors.NewInternalError("failed to store test result", err)
	}
	out.Stored = result

	return out, nil
}

// DecodedResult is a stored result run back through the codec and scorer
type DecodedResult struct {
	*TestResult
	Data   *psychology.DecodedData `json:"data"`
	Result *psychology.UserResult  `json:"result"`
	Passed bool                    `json:"passed"`
}

// Decode scores a stored result. Undecodable payloads leave Data and Result nil.
func (s *ResultService) Decode(result *TestResult) DecodedResult {
	decoded := DecodedResult{TestResult: result}

	payload := encoding.Decode(result.TestResult)
	if !payload.Valid() {
		return decoded
	}

	userResult := psychology.NewUserResult(payload.Data.Matrix, s.diff)
	decoded.Data = payload.Data
	decoded.Result = &userResult
	decoded.Passed = psychology.IsTestPassed(payload.Data.Matrix, s.threshold)
	return decoded
}

// ListDecoded lists stored results newest first, decoded
func (s *ResultService) ListDecoded(ctx context.Context, limit, offset int) ([]DecodedResult, error) {
	results, err := s.repo.ListTestResults(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	decoded := make([]DecodedResult, 0, len(results))
	for _, result := range results {
		decoded = append(decoded, s.Decode(result))
	}
	return decoded, nil
}

// Member loads a stored result as a roster entry
func (s *ResultService) Member(ctx context.Context, id int64) (psychology.Member, error) {
	result, err := s.repo.GetTestResult(ctx, id)
	if err != nil {
		return psychology.Member{}, err
	}

	payload := encoding.Decode(result.TestResult)
	if !payload.Valid() {
		return psychology.Member{}, apperrors.NewValidationError(
			fmt.Sprintf("stored test result %d cannot be decoded", id))
	}

	return psychology.Member{
		ID:      result.UID,
		Name:    result.FullName,
		DecData: *payload.Data,
		BaseID:  int(result.ID),
	}, nil
}

// Members loads several stored results, preserving order
func (s *ResultService) Members(ctx context.Context, ids []int64) ([]psychology.Member, error) {
	members := make([]psychology.Member, 0, len(ids))
	for _, id := range ids {
		member, err := s.Member(ctx, id)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, nil
}

// Purge removes results older than the retention window. Zero keeps everything.
func (s *ResultService) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	return s.repo.PurgeOlderThan(ctx, time.Now().Add(-retention))
}

// ParseID parses a stored result id from a path parameter
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("id must be a positive integer", raw)
	}
	return id, nil
}
