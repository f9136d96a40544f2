// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package system

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// ReqLoggerKey is the context key used to store request-scoped logger in gin context.
	ReqLoggerKey = "reqLogger"
	// CorrelationIDKey is the gin context key holding the request's correlation ID.
	CorrelationIDKey = "cid"
	// CorrelationIDHeader is read from the request and echoed on the response.
	CorrelationIDHeader = "X-Correlation-ID"
)

// GetReqLogger returns the request-scoped sugared logger from gin.Context if present,
// otherwise returns the provided fallback.
func GetReqLogger(c *gin.Context, fallback *zap.SugaredLogger) *zap.SugaredLogger {
	if c == nil {
		return fallback
	}
	if v, ok := c.Get(ReqLoggerKey); ok {
		if l, ok2 := v.(*zap.SugaredLogger); ok2 {
			return l
		}
	}
	return fallback
}

// RequestLogger stores a logger carrying the correlation ID in the gin context.
// The ID is taken from the X-Correlation-ID header or generated.
func RequestLogger(base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader(CorrelationIDHeader)
		if cid == "" || len(cid) > 128 {
			cid = uuid.NewString()
		}
		c.Set(CorrelationIDKey, cid)
		c.Set(ReqLoggerKey, base.With("cid", cid))
		c.Header(CorrelationIDHeader, cid)
		c.Next()
	}
}
