package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/lms-api/internal/models"
)

// ContextAuditDetailsKey is the gin context key holding handler-supplied
// audit details.
const ContextAuditDetailsKey = "auditDetails"

// SetAuditDetail attaches a key to the audit entry of the current request.
func SetAuditDetail(c *gin.Context, key string, value interface{}) {
	details, _ := c.Get(ContextAuditDetailsKey)
	extra, ok := details.(map[string]interface{})
	if !ok {
		extra = map[string]interface{}{}
		c.Set(ContextAuditDetailsKey, extra)
	}
	extra[key] = value
}

type auditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog)
}

// Audit records an audit entry after a successful request. The resource id
// is taken from the :id route parameter when present.
func Audit(recorder auditRecorder, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if recorder == nil || c.Writer.Status() >= 400 {
			return
		}

		var userID *string
		if identity := IdentityFrom(c); identity != nil {
			id := identity.UserID
			userID = &id
		}
		var resourceID *string
		if id := c.Param("id"); id != "" {
			resourceID = &id
		}

		fields := map[string]interface{}{}
		if extra, ok := c.Get(ContextAuditDetailsKey); ok {
			if m, ok := extra.(map[string]interface{}); ok {
				for k, v := range m {
					fields[k] = v
				}
			}
		}
		fields["path"] = c.FullPath()
		fields["method"] = c.Request.Method
		fields["status"] = c.Writer.Status()
		fields["latency"] = time.Since(start).Milliseconds()
		details, _ := json.Marshal(fields)

		recorder.Record(c.Request.Context(), &models.AuditLog{
			UserID:     userID,
			Action:     action,
			Resource:   resource,
			ResourceID: resourceID,
			Details:    types.JSONText(details),
			IPAddress:  c.ClientIP(),
			UserAgent:  c.GetHeader("User-Agent"),
		})
	}
}
