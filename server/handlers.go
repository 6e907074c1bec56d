package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"agrodash/normalization"
	"agrodash/server/services"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

func (s *Server) handleWeeks(c *gin.Context) {
	weeks := s.reconciliation.Weeks(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"weeks": weeks})
}

func (s *Server) handleLabors(c *gin.Context) {
	labors := s.reconciliation.Labors(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"labors": labors})
}

// parseReconcileRequest reads week, weight and lot from the query
// string. week is required; weight falls back to the configured
// default.
func (s *Server) parseReconcileRequest(c *gin.Context) (services.ReconcileRequest, error) {
	var req services.ReconcileRequest

	weekParam := c.Query("week")
	if weekParam == "" {
		return req, fmt.Errorf("week query parameter is required")
	}
	week, err := strconv.Atoi(weekParam)
	if err != nil {
		return req, fmt.Errorf("week must be an integer: %q", weekParam)
	}
	req.Week = week

	req.QualityWeight = s.defaultWeight
	if weightParam := c.Query("weight"); weightParam != "" {
		weight, err := strconv.ParseFloat(weightParam, 64)
		if err != nil {
			return req, fmt.Errorf("weight must be a number: %q", weightParam)
		}
		if weight < 0 || weight > 1 {
			return req, fmt.Errorf("weight must be between 0 and 1: %v", weight)
		}
		req.QualityWeight = weight
	}

	if lot := c.Query("lot"); lot != "" {
		req.LotFilter = normalization.CanonicalLotID(lot)
	}
	return req, nil
}

func (s *Server) handleReconcile(c *gin.Context) {
	req, err := s.parseReconcileRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	result := s.reconciliation.Reconcile(c.Request.Context(), req)
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleReconcileExport(c *gin.Context) {
	req, err := s.parseReconcileRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	filename := fmt.Sprintf("reconciliation_week_%d.csv", req.Week)
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := s.reconciliation.ExportCSV(c.Request.Context(), req, c.Writer); err != nil {
		s.logger.Error("csv export failed", "error", err, "week", req.Week)
	}
}

func (s *Server) handleProductionSummary(c *gin.Context) {
	var from, to time.Time
	var err error

	if fromParam := c.Query("from"); fromParam != "" {
		from, err = time.Parse("2006-01-02", fromParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("from must be YYYY-MM-DD: %q", fromParam)})
			return
		}
	}
	if toParam := c.Query("to"); toParam != "" {
		to, err = time.Parse("2006-01-02", toParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("to must be YYYY-MM-DD: %q", toParam)})
			return
		}
	}

	summary := s.reconciliation.ProductionSummary(c.Request.Context(), from, to, c.Query("labor"))
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleRefresh(c *gin.Context) {
	s.reconciliation.Refresh()
	c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
}
