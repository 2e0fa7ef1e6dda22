package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/respond"
)

const maxWebhookBody = 1 << 20

// Sign returns the hex HMAC-SHA256 of body, as sent in X-Signature
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// WebhookSignature verifies the X-Signature header against the raw body and restores the body
// for the handler
func WebhookSignature(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			respond.Error(c, http.StatusServiceUnavailable, "payment webhook is not configured")
			return
		}

		provided := strings.TrimPrefix(strings.TrimSpace(c.GetHeader("X-Signature")), "sha256=")
		if provided == "" {
			respond.Error(c, http.StatusForbidden, "missing webhook signature")
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "failed to read body")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		expected, err := hex.DecodeString(Sign(secret, body))
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "signature error")
			return
		}
		got, err := hex.DecodeString(strings.ToLower(provided))
		if err != nil || !hmac.Equal(expected, got) {
			respond.Error(c, http.StatusForbidden, "invalid webhook signature")
			return
		}
		c.Next()
	}
}
