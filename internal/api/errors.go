package api

import (
	"errors"
	"net/http"

	"github.com/devnovate-blog-api/internal/apperr"
	"github.com/devnovate-blog-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// statusFor maps an error kind to its HTTP status
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}. Storage details stay in the log.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unclassified error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	status := statusFor(ae.Kind)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "storage failure, please retry"})
		return
	}

	body := gin.H{"error": ae.Message}
	if ae.Field != "" {
		body["field"] = ae.Field
	}
	c.JSON(status, body)
}

// respondBindError reports the first request binding failure
func respondBindError(c *gin.Context, err error) {
	errs := validation.Translate(err)
	first := errs[0]
	c.JSON(http.StatusBadRequest, gin.H{
		"error": first.Field + " " + first.Message,
		"field": first.Field,
	})
}
