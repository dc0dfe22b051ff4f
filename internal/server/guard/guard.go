// Package guard implements the authenticate-then-authorize pipeline gating
// protected routes. The chain is an explicit ordered list of stages; each
// stage can short-circuit the request with a typed failure. Authorization
// never runs without a preceding successful authentication.
package guard

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/akarpovs/livegate/internal/common"
	"github.com/akarpovs/livegate/internal/logging"
	"github.com/akarpovs/livegate/internal/server/auth"
	"github.com/akarpovs/livegate/internal/server/config"
	"github.com/akarpovs/livegate/internal/server/users"
)

const userContextKey = "livegate/user"

// Guard resolves bearer tokens to identities and checks role requirements.
type Guard struct {
	repo      users.Repository
	jwtSecret []byte
	logger    logging.Logger
}

func New(repo users.Repository, cfg *config.Config, logger logging.Logger) *Guard {
	return &Guard{
		repo:      repo,
		jwtSecret: []byte(cfg.SecretKey),
		logger:    logger.With("module", "guard"),
	}
}

// Authenticate verifies the token and re-materializes the current user from
// the store, so role changes take effect without token revocation. Every
// failure to prove an identity yields common.ErrorUnauthorized; a store
// failure yields common.ErrorInternal.
func (g *Guard) Authenticate(ctx context.Context, token string) (*users.User, error) {
	if token == "" {
		return nil, common.ErrorUnauthorized
	}

	userID, err := auth.GetUserIDFromToken(token, g.jwtSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	user, err := g.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		g.logger.Error(ctx, "failed to get user", "error", err)
		return nil, common.ErrorInternal
	}

	if !user.IsActive {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}

// Authorize checks that the identity holds at least one of the required
// roles. It assumes Authenticate already succeeded; failure is
// common.ErrorForbidden, distinct from common.ErrorUnauthorized.
func (g *Guard) Authorize(user *users.User, required ...users.Role) error {
	if user == nil {
		return common.ErrorUnauthorized
	}
	if !user.HasAnyRole(required...) {
		return common.ErrorForbidden
	}
	return nil
}

// stage is one predicate of the chain. It either attaches state to the
// request context or returns a typed failure.
type stage func(c *gin.Context) error

// Protect builds the middleware for a route. With no required roles only
// the authenticate stage runs; otherwise the authorize stage follows it.
func (g *Guard) Protect(required ...users.Role) gin.HandlerFunc {
	stages := []stage{g.authenticateStage}
	if len(required) > 0 {
		stages = append(stages, g.authorizeStage(required))
	}

	return func(c *gin.Context) {
		for _, s := range stages {
			if err := s(c); err != nil {
				abortWithError(c, err)
				return
			}
		}
		c.Next()
	}
}

func (g *Guard) authenticateStage(c *gin.Context) error {
	user, err := g.Authenticate(c.Request.Context(), bearerToken(c.Request))
	if err != nil {
		return err
	}
	c.Set(userContextKey, user)
	return nil
}

func (g *Guard) authorizeStage(required []users.Role) stage {
	return func(c *gin.Context) error {
		return g.Authorize(UserFromContext(c), required...)
	}
}

// UserFromContext returns the identity attached by the authenticate stage,
// or nil when the route was not protected.
func UserFromContext(c *gin.Context) *users.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, ok := v.(*users.User)
	if !ok {
		return nil
	}
	return user
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": common.ErrorUnauthorized.Error()})
	case errors.Is(err, common.ErrorForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": common.ErrorForbidden.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": common.ErrorInternal.Error()})
	}
}
