package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/response"
)

// ContextIdentityKey is the gin context key storing the resolved caller.
const ContextIdentityKey = "identity"

type identityResolver interface {
	Resolve(ctx context.Context, userID string) (*models.Identity, error)
}

// Identity resolves the token subject to a registered, approved account.
// It must run after JWT.
func Identity(resolver identityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}

		identity, err := resolver.Resolve(c.Request.Context(), claims.UserID())
		if err != nil {
			if appErrors.Is(err, appErrors.ErrNotFound) {
				response.Abort(c, appErrors.Clone(appErrors.ErrForbidden, "user not registered"))
				return
			}
			response.Abort(c, err)
			return
		}
		if !identity.Approved {
			response.Abort(c, appErrors.ErrPendingApproval)
			return
		}

		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// IdentityFrom returns the caller stored by Identity.
func IdentityFrom(c *gin.Context) *models.Identity {
	value, exists := c.Get(ContextIdentityKey)
	if !exists {
		return nil
	}
	identity, _ := value.(*models.Identity)
	return identity
}
