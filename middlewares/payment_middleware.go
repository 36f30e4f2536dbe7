package middlewares

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/scan-order/utils"
)

var errTooManyRequests = errors.New("Too many requests, please wait before trying again")

// PaymentSecurityHeaders keeps bill and bank details out of shared caches.
func PaymentSecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Next()
	}
}

// LogPaymentRequest writes an audit line for every payment intent and settlement call.
func LogPaymentRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}
		if id := c.Param("bill_id"); id != "" {
			fields["bill"] = id
		}
		if id := c.Param("session_id"); id != "" {
			fields["session"] = id
		}
		if user := c.GetString(CtxUserID); user != "" {
			fields["user"] = user
		}
		switch {
		case c.Writer.Status() >= 500:
			utils.ErrorLogger.WithFields(fields).Error("Payment request failed")
		case c.Writer.Status() >= 400:
			utils.InfoLogger.WithFields(fields).Warn("Payment request rejected")
		default:
			utils.InfoLogger.WithFields(fields).Info("Payment request")
		}
	}
}
