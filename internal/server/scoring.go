package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/teamconstructor/internal/database"
	"github.com/ZanzyTHEbar/teamconstructor/internal/encoding"
	apperrors "github.com/ZanzyTHEbar/teamconstructor/internal/errors"
	"github.com/ZanzyTHEbar/teamconstructor/internal/journal"
	"github.com/ZanzyTHEbar/teamconstructor/internal/psychology"
)

// handleAnswers scores a raw questionnaire
//
//	@Summary	Score raw answers
//	@Tags		scoring
//	@Accept		json
//	@Produce	json
//	@Param		body	body		AnswersRequest	true	"75 answers"
//	@Success	200		{object}	AnswersResponse
//	@Failure	400		{object}	map[string]interface{}
//	@Router		/v1/answers [post]
func (s *Server) handleAnswers(c *gin.Context) {
	start := time.Now()

	var req AnswersRequest
	if !bindJSON(c, &req) {
		return
	}

	matrix, err := s.reduce(req.Answers)
	if err != nil {
		_ = c.Error(err)
		return
	}

	result := psychology.NewUserResult(matrix, s.diff(req.Diff))
	resp := AnswersResponse{
		Matrix: matrix,
		Result: result,
		Passed: psychology.IsTestPassed(matrix, s.opts.TestThreshold),
	}

	if len(req.PersonalInfo) > 0 {
		data := psychology.DecodedData{PersonalInfo: req.PersonalInfo, Matrix: matrix}
		if resp.Encoded, err = encoding.Encode(data); err != nil {
			_ = c.Error(err)
			return
		}
		if resp.EncodedURL, err = encoding.EncodeForURL(data); err != nil {
			_ = c.Error(err)
			return
		}
	}

	s.metrics.IncrementResultsScored()
	s.logger.ScoringLogger("answers", 1, result.MainOctant.Code, time.Since(start))

	c.JSON(http.StatusOK, resp)
}

func (s *Server) reduce(answers []psychology.RawAnswer) (psychology.Matrix, error) {
	if idx := psychology.FirstUnanswered(answers); idx >= 0 {
		return psychology.Matrix{}, apperrors.NewValidationErrorWithMap(map[string]string{
			fmt.Sprintf("answers[%d]", idx): fmt.Sprintf("question %d is not answered", idx+1),
		})
	}
	return psychology.ReduceAnswers(answers)
}

// handleSubmit stores a passed questionnaire and journals every submission
//
//	@Summary	Submit a finished questionnaire
//	@Tags		scoring
//	@Accept		json
//	@Produce	json
//	@Param		body	body		SubmitRequest	true	"Questionnaire"
//	@Success	201		{object}	SubmitResponse	"stored"
//	@Success	200		{object}	SubmitResponse	"not passed, not stored"
//	@Failure	400		{object}	map[string]interface{}
//	@Failure	429		{object}	map[string]interface{}
//	@Router		/v1/submit [post]
func (s *Server) handleSubmit(c *gin.Context) {
	var req SubmitRequest
	if !bindJSON(c, &req) {
		return
	}

	if s.results == nil {
		_ = c.Error(apperrors.NewConfigurationError("result storage is not configured", nil))
		return
	}

	var matrix psychology.Matrix
	switch {
	case req.TestData != nil:
		matrix = *req.TestData
	case len(req.Answers) > 0:
		reduced, err := s.reduce(req.Answers)
		if err != nil {
			_ = c.Error(err)
			return
		}
		matrix = reduced
	default:
		_ = c.Error(apperrors.NewValidationError("either answers or testData is required"))
		return
	}

	if req.End < req.Start {
		_ = c.Error(apperrors.NewValidationError("end must not be before start"))
		return
	}
	startedAt := time.UnixMilli(req.Start)
	endedAt := time.UnixMilli(req.End)

	data := psychology.DecodedData{PersonalInfo: req.PersonalInfo, Matrix: matrix}
	fullName := s.security.SanitizeInput(req.FullName)
	teammate := s.security.SanitizeInput(req.Teammate)
	if teammate == "" {
		teammate = fullName
	}

	tags := make([]string, 0, len(req.Tags))
	for _, tag := range req.Tags {
		if tag = s.security.SanitizeInput(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	out, err := s.results.Submit(c.Request.Context(), database.Submission{
		Email:    s.security.SanitizeInput(req.Email),
		FullName: fullName,
		Data:     data,
		Duration: endedAt.Sub(startedAt),
		Tags:     tags,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := SubmitResponse{Passed: out.Passed, Encoded: out.Encoded}

	if s.journal != nil {
		if _, err := s.journal.Append(journal.Entry{
			Teammate: teammate,
			Data:     data,
			Start:    startedAt,
			End:      endedAt,
		}); err != nil {
			s.logger.Error("Failed to append staff journal", "error", err)
		} else {
			resp.Journaled = true
		}
	}

	status := http.StatusOK
	var storedID int64
	if out.Stored != nil {
		resp.ID = out.Stored.ID
		resp.UID = out.Stored.UID
		resp.Stored = true
		storedID = out.Stored.ID
		status = http.StatusCreated
	}

	s.metrics.RecordSubmission(out.Passed)
	s.logger.SubmissionLogger(storedID, out.Passed, endedAt.Sub(startedAt).Milliseconds())

	c.JSON(status, resp)
}

// handleResults scores one subject
//
//	@Summary	Score a matrix or payload
//	@Tags		scoring
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ResultsRequest	true	"Subject"
//	@Success	200		{object}	ResultsResponse
//	@Failure	400		{object}	map[string]interface{}
//	@Router		/v1/results [post]
func (s *Server) handleResults(c *gin.Context) {
	start := time.Now()

	var req ResultsRequest
	if !bindJSON(c, &req) {
		return
	}

	data, err := s.resolve("subject", req.SubjectInput)
	if err != nil {
		_ = c.Error(err)
		return
	}

	result := psychology.NewUserResult(data.Matrix, s.diff(req.Diff))
	resp := ResultsResponse{
		Result: result,
		Passed: psychology.IsTestPassed(data.Matrix, s.opts.TestThreshold),
	}
	if req.Encoded != "" && req.Matrix == nil {
		resp.Data = &data
	}

	s.metrics.IncrementResultsScored()
	s.logger.ScoringLogger("result", 1, result.MainOctant.Code, time.Since(start))

	c.JSON(http.StatusOK, resp)
}

// handleDecode runs the boundary decoder. Invalid input yields nulls, not an error.
//
//	@Summary	Decode a payload
//	@Tags		codec
//	@Produce	json
//	@Param		data	query		string	true	"base64 payload"
//	@Success	200		{object}	encoding.Payload
//	@Router		/v1/decode [get]
func (s *Server) handleDecode(c *gin.Context) {
	payload := encoding.Decode(c.Query("data"))
	if !payload.Valid() {
		s.metrics.IncrementDecodeFailure()
	}
	c.JSON(http.StatusOK, payload)
}

// handleEncode builds a payload
//
//	@Summary	Encode a payload
//	@Tags		codec
//	@Accept		json
//	@Produce	json
//	@Param		body	body		EncodeRequest	true	"Personal info and matrix"
//	@Success	200		{object}	EncodeResponse
//	@Failure	400		{object}	map[string]interface{}
//	@Router		/v1/encode [post]
func (s *Server) handleEncode(c *gin.Context) {
	var req EncodeRequest
	if !bindJSON(c, &req) {
		return
	}

	data := psychology.DecodedData{PersonalInfo: req.PersonalInfo, Matrix: req.Matrix}
	encoded, err := encoding.Encode(data)
	if err != nil {
		_ = c.Error(err)
		return
	}
	encodedURL, err := encoding.EncodeForURL(data)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, EncodeResponse{Encoded: encoded, EncodedURL: encodedURL})
}

// handlePair compares two partners
//
//	@Summary	Analyze a pair
//	@Tags		scoring
//	@Accept		json
//	@Produce	json
//	@Param		body	body		PairRequest	true	"Partners"
//	@Success	200		{object}	psychology.PairSummary
//	@Failure	400		{object}	map[string]interface{}
//	@Router		/v1/pair [post]
func (s *Server) handlePair(c *gin.Context) {
	start := time.Now()

	var req PairRequest
	if !bindJSON(c, &req) {
		return
	}

	first, err := s.resolve("partner1", req.Partner1)
	if err != nil {
		_ = c.Error(err)
		return
	}
	second, err := s.resolve("partner2", req.Partner2)
	if err != nil {
		_ = c.Error(err)
		return
	}

	pair := psychology.NewPair(first.Matrix, second.Matrix)
	summary := pair.Summary()

	s.metrics.IncrementPairsAnalyzed()
	s.logger.ScoringLogger("pair", 2, pair.LeadSegment1().Code, time.Since(start))

	c.JSON(http.StatusOK, summary)
}

// handleTeam analyzes a roster and looks for candidates among stored results
//
//	@Summary	Analyze a team
//	@Tags		scoring
//	@Accept		json
//	@Produce	json
//	@Param		body	body		TeamRequest	true	"Roster"
//	@Success	200		{object}	TeamResponse
//	@Failure	400		{object}	map[string]interface{}
//	@Failure	404		{object}	map[string]interface{}
//	@Router		/v1/team [post]
func (s *Server) handleTeam(c *gin.Context) {
	start := time.Now()

	var req TeamRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	members := make([]psychology.Member, 0, len(req.Members))
	matrices := make([]psychology.Matrix, 0, len(req.Members))
	for i, in := range req.Members {
		member, err := s.resolveMember(ctx, i, in)
		if err != nil {
			_ = c.Error(err)
			return
		}
		members = append(members, member)
		matrices = append(matrices, member.DecData.Matrix)
	}

	var pool []psychology.Member
	if len(req.PoolIDs) > 0 {
		if s.results == nil {
			_ = c.Error(apperrors.NewConfigurationError("result storage is not configured", nil))
			return
		}
		stored, err := s.results.Members(ctx, req.PoolIDs)
		if err != nil {
			_ = c.Error(err)
			return
		}
		pool = psychology.AllCandidates(stored, members)
	}

	team, err := psychology.NewTeam(matrices)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := TeamResponse{
		Summary:    team.Summary(),
		Members:    members,
		Unwanted:   team.Unwanted(members),
		Candidates: make([]SpecializationCandidates, 0, len(psychology.SpecializationGroups)),
	}

	for i, codes := range psychology.SpecializationGroups {
		candidates, needed, err := team.Candidates(psychology.Specialization(i), pool)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if candidates == nil {
			candidates = []psychology.Member{}
		}
		resp.Candidates = append(resp.Candidates, SpecializationCandidates{
			Specialization: i,
			Codes:          codes,
			Needed:         needed,
			Candidates:     candidates,
		})
	}

	mainOctant := ""
	if majors := team.MajorOctants(); len(majors) > 0 {
		mainOctant = majors[0].Code
	}
	s.metrics.IncrementTeamsAnalyzed()
	s.logger.ScoringLogger("team", team.Size(), mainOctant, time.Since(start))

	c.JSON(http.StatusOK, resp)
}
