package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/bnema/growth-dashboard/internal/adapters/codec"
	"github.com/bnema/growth-dashboard/internal/application"
	"github.com/bnema/growth-dashboard/internal/domain"
	"github.com/bnema/growth-dashboard/internal/view"
	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type errorMapping struct {
	target   error
	status   int
	code     string
	// verbatim reports the sentinel's message instead of the wrapped chain.
	verbatim bool
}

// Order matters: the first matching sentinel wins.
var errorMappings = []errorMapping{
	{target: application.ErrNothingToUndo, status: http.StatusConflict, code: "NOTHING_TO_UNDO"},
	{target: application.ErrNothingToRedo, status: http.StatusConflict, code: "NOTHING_TO_REDO"},
	{target: domain.ErrInvalidDocument, status: http.StatusBadRequest, code: "INVALID_DOCUMENT"},
	{target: domain.ErrInvalidItem, status: http.StatusBadRequest, code: "INVALID_ITEM"},
	{target: domain.ErrUnknownKind, status: http.StatusNotFound, code: "UNKNOWN_KIND"},
	{target: application.ErrUnknownInsightKind, status: http.StatusBadRequest, code: "UNKNOWN_INSIGHT_KIND"},
	{target: view.ErrUnsupportedSortKey, status: http.StatusBadRequest, code: "INVALID_QUERY"},
	{target: view.ErrUnsupportedOrder, status: http.StatusBadRequest, code: "INVALID_QUERY"},
	{target: codec.ErrUnsupportedFormat, status: http.StatusBadRequest, code: "UNSUPPORTED_FORMAT"},
	{target: domain.ErrInsightRateLimited, status: http.StatusTooManyRequests, code: "RATE_LIMITED", verbatim: true},
	{target: domain.ErrInsightQuotaExhausted, status: http.StatusPaymentRequired, code: "CREDITS_EXHAUSTED", verbatim: true},
	{target: domain.ErrInsightNotConfigured, status: http.StatusServiceUnavailable, code: "INSIGHTS_NOT_CONFIGURED"},
	{target: domain.ErrInsightUnavailable, status: http.StatusServiceUnavailable, code: "AI_UNAVAILABLE", verbatim: true},
	{target: context.DeadlineExceeded, status: http.StatusGatewayTimeout, code: "TIMEOUT"},
}

func writeError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			message := err.Error()
			if m.verbatim {
				message = m.target.Error()
			}
			c.AbortWithStatusJSON(m.status, ErrorResponse{Error: message, Code: m.code})
			return
		}
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "INTERNAL"})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "BAD_REQUEST"})
}
