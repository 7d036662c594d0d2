package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sahoo-ansu/I-MED/internal/recommend"
	"github.com/sahoo-ansu/I-MED/internal/storage"
)

const (
	userIDHeader            = "X-User-ID"
	detectedConditionHeader = "X-Detected-Condition"
	defaultHistoryLimit     = 50
)

// flexString accepts a JSON string or number. Clients send age both ways.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

type medicineRequest struct {
	Prompt     string                `json:"prompt"`
	Age        flexString            `json:"age"`
	Gender     flexString            `json:"gender"`
	UserID     string                `json:"userId"`
	AISettings *recommend.AISettings `json:"aiSettings"`
}

// bindRequest writes the error response itself and reports whether the
// handler should continue.
func (s *Server) bindRequest(c *gin.Context) (recommend.Request, bool) {
	var payload medicineRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return recommend.Request{}, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return recommend.Request{}, false
	}

	userID := strings.TrimSpace(payload.UserID)
	if userID == "" {
		userID = strings.TrimSpace(c.GetHeader(userIDHeader))
	}

	return recommend.Request{
		Prompt:     payload.Prompt,
		Age:        string(payload.Age),
		Gender:     string(payload.Gender),
		UserID:     userID,
		AISettings: payload.AISettings,
	}, true
}

func (s *Server) handleMedicine(c *gin.Context) {
	if s.opts.Strategy == recommend.StrategyGenerative {
		s.handleGenerative(c)
		return
	}
	s.handleStatic(c)
}

func (s *Server) handleStatic(c *gin.Context) {
	req, ok := s.bindRequest(c)
	if !ok {
		return
	}

	res, err := s.static.Recommend(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if !res.Matched {
		c.JSON(http.StatusOK, gin.H{
			"message":     res.Response,
			"isEmergency": res.IsEmergency,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response":            res.Response,
		"condition":           res.Condition.Name,
		"isEmergency":         res.IsEmergency,
		"requiresDoctorVisit": res.RequiresDoctorVisit,
	})
}

func (s *Server) handleGenerative(c *gin.Context) {
	req, ok := s.bindRequest(c)
	if !ok {
		return
	}

	res, err := s.generative.Recommend(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.Header(detectedConditionHeader, res.DetectedCondition.Condition)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(res.Text))
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := recommend.StatusCode(err)
	if status != http.StatusBadRequest {
		s.logger.Error("Recommendation failed", zap.Error(err), zap.Int("status", status))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": recommend.PublicMessage(err)})
}

func (s *Server) handleListMedicines(c *gin.Context) {
	meds, err := s.store.ListMedicines(c.Request.Context())
	if err != nil {
		s.internalError(c, "Failed to list medicines", err)
		return
	}
	c.JSON(http.StatusOK, meds)
}

func (s *Server) handleGetMedicine(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid medicine id"})
		return
	}

	med, err := s.store.GetMedicine(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "medicine not found"})
		return
	}
	if err != nil {
		s.internalError(c, "Failed to get medicine", err)
		return
	}
	c.JSON(http.StatusOK, med)
}

func (s *Server) handleListConditions(c *gin.Context) {
	conditions, err := s.store.ListConditions(c.Request.Context())
	if err != nil {
		s.internalError(c, "Failed to list conditions", err)
		return
	}
	c.JSON(http.StatusOK, conditions)
}

func (s *Server) handleListRecommendations(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("userId"))
	if userID == "" {
		userID = strings.TrimSpace(c.GetHeader(userIDHeader))
	}
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	recs, err := s.store.ListRecommendationsByUser(c.Request.Context(), userID, limit)
	if err != nil {
		s.internalError(c, "Failed to list recommendations", err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"db":     "unhealthy",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
}

func (s *Server) internalError(c *gin.Context, msg string, err error) {
	s.logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": recommend.MessageInternal})
}
