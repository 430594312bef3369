package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/teamconstructor/internal/encoding"
	apperrors "github.com/ZanzyTHEbar/teamconstructor/internal/errors"
	"github.com/ZanzyTHEbar/teamconstructor/internal/psychology"
)

// SubjectInput is one scored person, given either as a matrix or as an
// encoded payload.
type SubjectInput struct {
	Matrix  *psychology.Matrix `json:"matrix,omitempty"`
	Encoded string             `json:"encoded,omitempty"`
}

// AnswersRequest carries one completed questionnaire
type AnswersRequest struct {
	Answers      []psychology.RawAnswer `json:"answers" binding:"required"`
	PersonalInfo []int                  `json:"personalInfo,omitempty"`
	Diff         *float64               `json:"diff,omitempty" binding:"omitempty,gte=0"`
}

// AnswersResponse is the scored questionnaire
type AnswersResponse struct {
	Matrix     psychology.Matrix     `json:"matrix"`
	Result     psychology.UserResult `json:"result"`
	Passed     bool                  `json:"passed"`
	Encoded    string                `json:"encoded,omitempty"`
	EncodedURL string                `json:"encodedURL,omitempty"`
}

// SubmitRequest is a finished questionnaire sent for storage. Start and End
// are epoch milliseconds. TestData may replace Answers.
type SubmitRequest struct {
	Teammate     string                 `json:"teammate"`
	Email        string                 `json:"email" binding:"omitempty,email"`
	FullName     string                 `json:"fullName"`
	PersonalInfo []int                  `json:"personalInfo" binding:"required,min=1"`
	Answers      []psychology.RawAnswer `json:"answers,omitempty"`
	TestData     *psychology.Matrix     `json:"testData,omitempty"`
	Start        int64                  `json:"start" binding:"gte=0"`
	End          int64                  `json:"end" binding:"gte=0"`
	Tags         []string               `json:"tags,omitempty"`
}

// SubmitResponse reports what happened to a submission
type SubmitResponse struct {
	ID        int64  `json:"id,omitempty"`
	UID       string `json:"uid,omitempty"`
	Passed    bool   `json:"passed"`
	Stored    bool   `json:"stored"`
	Journaled bool   `json:"journaled"`
	Encoded   string `json:"encoded"`
}

// ResultsRequest scores one subject
type ResultsRequest struct {
	SubjectInput
	Diff *float64 `json:"diff,omitempty" binding:"omitempty,gte=0"`
}

// ResultsResponse is a single scored subject
type ResultsResponse struct {
	Data   *psychology.DecodedData `json:"data,omitempty"`
	Result psychology.UserResult   `json:"result"`
	Passed bool                    `json:"passed"`
}

// EncodeRequest is the data to put into a transport payload
type EncodeRequest struct {
	PersonalInfo []int             `json:"personalInfo" binding:"required"`
	Matrix       psychology.Matrix `json:"matrix"`
}

// EncodeResponse holds both payload renderings
type EncodeResponse struct {
	Encoded    string `json:"encoded"`
	EncodedURL string `json:"encodedURL"`
}

// PairRequest names the two partners
type PairRequest struct {
	Partner1 SubjectInput `json:"partner1"`
	Partner2 SubjectInput `json:"partner2"`
}

// MemberInput is a roster entry given inline or by stored result id
type MemberInput struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Position string             `json:"position"`
	Matrix   *psychology.Matrix `json:"matrix,omitempty"`
	Encoded  string             `json:"encoded,omitempty"`
	BaseID   int64              `json:"baseID,omitempty"`
}

// TeamRequest describes a roster and an optional candidate pool of stored ids
type TeamRequest struct {
	Members []MemberInput `json:"members" binding:"required,min=1"`
	PoolIDs []int64       `json:"poolIds,omitempty"`
}

// SpecializationCandidates lists who could reinforce one specialization
type SpecializationCandidates struct {
	Specialization int                 `json:"specialization"`
	Codes          []string            `json:"codes"`
	Needed         bool                `json:"needed"`
	Candidates     []psychology.Member `json:"candidates"`
}

// TeamResponse is the full team analysis
type TeamResponse struct {
	Summary    psychology.TeamSummary     `json:"summary"`
	Members    []psychology.Member        `json:"members"`
	Unwanted   []psychology.Member        `json:"unwanted"`
	Candidates []SpecializationCandidates `json:"candidates"`
}

// bindJSON binds the body and records a validation error on failure
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var ebErr *errbuilder.ErrBuilder
		if errors.As(err, &ebErr) {
			_ = c.Error(err)
		} else {
			_ = c.Error(apperrors.NewValidationError("invalid request body", err.Error()))
		}
		return false
	}
	return true
}

func (s *Server) diff(override *float64) float64 {
	if override != nil {
		return *override
	}
	return s.opts.Diff
}

// resolve returns the subject's data. Inline matrices carry no personal info.
func (s *Server) resolve(field string, in SubjectInput) (psychology.DecodedData, error) {
	switch {
	case in.Matrix != nil:
		return psychology.DecodedData{Matrix: *in.Matrix}, nil
	case in.Encoded != "":
		payload := encoding.Decode(in.Encoded)
		if !payload.Valid() {
			s.metrics.IncrementDecodeFailure()
			return psychology.DecodedData{}, apperrors.NewValidationErrorWithMap(map[string]string{
				field: "encoded payload cannot be decoded",
			})
		}
		return *payload.Data, nil
	default:
		return psychology.DecodedData{}, apperrors.NewValidationErrorWithMap(map[string]string{
			field: "either matrix or encoded is required",
		})
	}
}

// resolveMember turns a roster entry into a Member, loading stored ids
func (s *Server) resolveMember(ctx context.Context, i int, in MemberInput) (psychology.Member, error) {
	if in.Matrix == nil && in.Encoded == "" && in.BaseID > 0 {
		if s.results == nil {
			return psychology.Member{}, apperrors.NewConfigurationError("result storage is not configured", nil)
		}
		member, err := s.results.Member(ctx, in.BaseID)
		if err != nil {
			return psychology.Member{}, err
		}
		if in.ID != "" {
			member.ID = in.ID
		}
		if in.Name != "" {
			member.Name = in.Name
		}
		member.Position = in.Position
		return member, nil
	}

	data, err := s.resolve(fmt.Sprintf("members[%d]", i), SubjectInput{Matrix: in.Matrix, Encoded: in.Encoded})
	if err != nil {
		return psychology.Member{}, err
	}
	return psychology.Member{
		ID:       in.ID,
		Name:     in.Name,
		Position: in.Position,
		DecData:  data,
		BaseID:   int(in.BaseID),
	}, nil
}
