package httpapi

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stemmahq/stemma/internal/errs"
)

// statusUnavailableForLegalReasons is RFC 7725; net/http has no constant for it.
const statusUnavailableForLegalReasons = 451

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps the service error taxonomy onto HTTP statuses:
// NotFound 404, DuplicateKey 409, invalid input 400, blocked 410/451.
func writeError(c *gin.Context, err error) {
	if voluntary, blocked := errs.IsBlocked(err); blocked {
		code := statusUnavailableForLegalReasons
		if voluntary {
			code = http.StatusGone
		}
		c.AbortWithStatusJSON(code, errorBody{Error: err.Error()})
		return
	}

	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, errs.ErrDuplicateKey):
		code = http.StatusConflict
	case errors.Is(err, errs.ErrInvalidID):
		code = http.StatusBadRequest
	case errors.Is(err, errs.ErrUnauthorized):
		code = http.StatusUnauthorized
	case strings.HasPrefix(err.Error(), "validation:"):
		code = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(code, errorBody{Error: err.Error()})
}

// requestLog emits one structured line per request; metadata only, no payloads.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("peer", c.ClientIP()),
		)
	}
}

// recovery converts panics into 500s instead of dropping the connection.
func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: "internal"})
			}
		}()
		c.Next()
	}
}
