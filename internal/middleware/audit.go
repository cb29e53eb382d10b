package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huangang/folio/backend/internal/services"
	"github.com/huangang/folio/backend/pkg/logger"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	maxAuditBody = 2000
	redacted     = "***"
)

var titleCaser = cases.Title(language.English)

var auditedMethods = map[string]string{
	http.MethodPost:   "Create",
	http.MethodPut:    "Update",
	http.MethodPatch:  "Update",
	http.MethodDelete: "Delete",
}

// AuditLog appends every authenticated write to the caller's activity log.
// It must run inside ErrorHandler so the recorded status is the final one.
func AuditLog(logs *services.SystemLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		action, audited := auditedMethods[c.Request.Method]
		if !audited {
			c.Next()
			return
		}

		var body string
		if c.Request.Body != nil {
			raw, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(raw))
			body = redactBody(raw)
		}

		c.Next()

		userID := GetUserID(c)
		route := c.FullPath()
		if userID == 0 || route == "" {
			return
		}

		status := c.Writer.Status()
		level := services.LogLevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = services.LogLevelError
		case status >= http.StatusBadRequest:
			level = services.LogLevelWarning
		}

		logs.Record(c.Request.Context(), &services.LogEntry{
			Level:     level,
			Module:    moduleOf(route),
			Action:    action,
			Message:   auditMessage(GetEmail(c), c.Request.Method, c.Request.URL.Path, status),
			Status:    status,
			RequestID: c.GetString(logger.RequestIDKey),
			UserID:    &userID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Extra: map[string]interface{}{
				"method": c.Request.Method,
				"route":  route,
				"body":   body,
			},
		})
	}
}

// moduleOf names the resource of a route pattern: "/api/slide-tags/:id"
// becomes "Slide Tags".
func moduleOf(route string) string {
	rest := strings.TrimPrefix(route, "/api/")
	name, _, _ := strings.Cut(rest, "/")
	if name == "" || strings.HasPrefix(name, ":") {
		return "Unknown"
	}
	return titleCaser.String(strings.ReplaceAll(name, "-", " "))
}

func auditMessage(email, method, path string, status int) string {
	outcome := "Failed"
	if status >= 200 && status < 300 {
		outcome = "OK"
	}
	return fmt.Sprintf("%s %s %s → %s", email, method, path, outcome)
}

// redactBody returns the request body with secret values replaced, cut to
// maxAuditBody. Bodies that are not JSON are summarized rather than stored.
func redactBody(raw []byte) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ""
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Sprintf("[%d bytes, not JSON]", len(raw))
	}
	out, err := json.Marshal(redact(doc))
	if err != nil {
		return ""
	}

	s := string(out)
	if len(s) > maxAuditBody {
		s = s[:maxAuditBody] + "...[truncated]"
	}
	return s
}

func redact(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			if isSecretKey(k) {
				t[k] = redacted
				continue
			}
			t[k] = redact(val)
		}
	case []interface{}:
		for i := range t {
			t[i] = redact(t[i])
		}
	}
	return v
}

func isSecretKey(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "password") || strings.Contains(k, "secret") || strings.Contains(k, "token")
}
