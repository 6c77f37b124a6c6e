package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"permasnap/internal/archive"
	"permasnap/internal/logging"
	"permasnap/internal/publisher"
	"permasnap/internal/ratelimit"
	"permasnap/internal/services"
)

type archiveRequest struct {
	URL         string               `json:"url"`
	AccessToken publisher.Credential `json:"accessToken"`
	Address     string               `json:"address"`
}

type archiveData struct {
	TxID       string `json:"txID"`
	Title      string `json:"title"`
	Timestamp  int64  `json:"timestamp"`
	Webpage    string `json:"webpage,omitempty"`
	Screenshot string `json:"screenshot,omitempty"`
}

type successResponse struct {
	Status string      `json:"status"`
	Data   archiveData `json:"data"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// callerMessages are the only failure texts returned over HTTP. The archiver
// logs the full chain, including stage and renderer output.
var callerMessages = map[string]string{
	"validation":       "invalid url: only http and https pages can be archived",
	"configuration":    "archiver is not configured correctly",
	"capture":          "page capture failed",
	"read":             "captured page could not be read",
	"transport":        "storage gateway unreachable",
	"publish_rejected": "storage gateway did not accept the upload",
	"manifest":         "manifest could not be built",
}

func callerMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "archive timed out"
	}
	if message, ok := callerMessages[services.Category(err)]; ok {
		return message
	}
	return "archive failed"
}

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Status: "error", Message: message})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleArchive(c *gin.Context) {
	if !s.allow(c) {
		return
	}
	if s.archiver == nil {
		writeError(c, http.StatusInternalServerError, "archiver unavailable")
		return
	}

	var req archiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := c.Request.Context()
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	result, err := s.archiver.Archive(ctx, archive.Request{
		URL:        req.URL,
		Credential: req.AccessToken,
		Address:    req.Address,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if services.IsClientError(err) {
			status = http.StatusBadRequest
		}
		writeError(c, status, callerMessage(err))
		return
	}

	c.JSON(http.StatusOK, successResponse{
		Status: "success",
		Data: archiveData{
			TxID:       result.ContentID,
			Title:      result.Title,
			Timestamp:  result.Timestamp,
			Webpage:    result.WebpageURL,
			Screenshot: result.ScreenshotURL,
		},
	})
}

// allow applies the per-client limit. A limiter failure lets the request
// through.
func (s *Server) allow(c *gin.Context) bool {
	if s.limiter == nil || s.limit <= 0 {
		return true
	}
	decision, err := s.limiter.Allow(c.Request.Context(), "archive:"+c.ClientIP(), s.limit, s.window)
	if err != nil {
		logging.WarnWithContext(s.logger, "rate limiter unavailable", "rate_limit_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check redis connectivity"),
			logging.String(logging.FieldImpact, "request served without rate limiting"),
		)
		return true
	}
	writeRateLimitHeaders(c, decision)
	if !decision.Allowed {
		writeError(c, http.StatusTooManyRequests, "rate limit exceeded")
		return false
	}
	return true
}

func writeRateLimitHeaders(c *gin.Context, decision ratelimit.Decision) {
	if decision.Limit > 0 {
		c.Header("RateLimit-Limit", strconv.Itoa(decision.Limit))
	}
	if decision.Remaining >= 0 {
		c.Header("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	}
	if decision.ResetAt.IsZero() {
		return
	}
	c.Header("RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
	if !decision.Allowed {
		retryAfter := max(int64(time.Until(decision.ResetAt).Seconds()), 0)
		c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
	}
}
