package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/teamconstructor/internal/database"
	apperrors "github.com/ZanzyTHEbar/teamconstructor/internal/errors"
	"github.com/ZanzyTHEbar/teamconstructor/internal/export"
)

// exportLimit bounds the XLSX export to one listing page
const exportLimit = database.MaxPageSize

func queryInt(c *gin.Context, key string, defaultValue int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("%s must be a non-negative integer", key), raw)
	}
	return v, nil
}

func (s *Server) requireResults(c *gin.Context) bool {
	if s.results == nil {
		_ = c.Error(apperrors.NewConfigurationError("result storage is not configured", nil))
		return false
	}
	return true
}

// handleAdminResults lists stored results, newest first
//
//	@Summary	List stored results
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		limit	query		int	false	"Page size (default 50)"
//	@Param		offset	query		int	false	"Offset"
//	@Success	200		{object}	map[string]interface{}
//	@Failure	401		{object}	map[string]interface{}
//	@Router		/admin/results [get]
func (s *Server) handleAdminResults(c *gin.Context) {
	if !s.requireResults(c) {
		return
	}

	limit, err := queryInt(c, "limit", database.DefaultPageSize)
	if err != nil {
		_ = c.Error(err)
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctx := c.Request.Context()
	results, err := s.results.ListDecoded(ctx, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	total, err := s.results.Repository().CountTestResults(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// handleAdminResult returns one stored result, decoded
//
//	@Summary	Get a stored result
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"Result id"
//	@Success	200	{object}	database.DecodedResult
//	@Failure	404	{object}	map[string]interface{}
//	@Router		/admin/results/{id} [get]
func (s *Server) handleAdminResult(c *gin.Context) {
	if !s.requireResults(c) {
		return
	}

	id, err := database.ParseID(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	result, err := s.results.Repository().GetTestResult(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, s.results.Decode(result))
}

// handleAdminDelete removes one stored result
//
//	@Summary	Delete a stored result
//	@Tags		admin
//	@Security	BearerAuth
//	@Param		id	path	int	true	"Result id"
//	@Success	204
//	@Failure	404	{object}	map[string]interface{}
//	@Router		/admin/results/{id} [delete]
func (s *Server) handleAdminDelete(c *gin.Context) {
	if !s.requireResults(c) {
		return
	}

	id, err := database.ParseID(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := s.results.Repository().DeleteTestResult(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	s.logger.SecurityLogger("result_deleted", c.ClientIP(), c.GetHeader("User-Agent"), map[string]interface{}{"id": id})
	c.Status(http.StatusNoContent)
}

// handleAdminExport streams the listing as an XLSX workbook
//
//	@Summary	Export stored results
//	@Tags		admin
//	@Produce	application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Security	BearerAuth
//	@Success	200
//	@Router		/admin/results/export [get]
func (s *Server) handleAdminExport(c *gin.Context) {
	if !s.requireResults(c) {
		return
	}

	results, err := s.results.ListDecoded(c.Request.Context(), exportLimit, 0)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, results); err != nil {
		_ = c.Error(apperrors.NewInternalError("failed to build export", err))
		return
	}

	filename := fmt.Sprintf("results-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// handleAdminJournal returns the staff journal lines
//
//	@Summary	Staff journal
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string]interface{}
//	@Router		/admin/journal [get]
func (s *Server) handleAdminJournal(c *gin.Context) {
	if s.journal == nil {
		_ = c.Error(apperrors.NewConfigurationError("journal is not configured", nil))
		return
	}

	records, err := s.journal.Records()
	if err != nil {
		_ = c.Error(apperrors.NewInternalError("failed to read journal", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"total":   len(records),
	})
}
