// Package httpapi is the HTTP boundary of the server: it binds the auth
// flows, the protected routes, and the realtime gateway to a gin engine
// and translates domain errors into structured responses.
package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akarpovs/livegate/internal/common"
	"github.com/akarpovs/livegate/internal/logging"
	"github.com/akarpovs/livegate/internal/server/guard"
	"github.com/akarpovs/livegate/internal/server/realtime"
	"github.com/akarpovs/livegate/internal/server/users"
)

// Caller-visible messages for domain failures. Authentication failures are
// collapsed into one message so the API does not reveal whether an email
// is registered.
const (
	msgEmailAlreadyRegistered = "email already registered"
	msgInvalidCredentials     = "invalid credentials"
	msgInternalError          = "internal error"
)

type Handler struct {
	users   *users.Service
	guard   *guard.Guard
	gateway *realtime.Gateway
	logger  logging.Logger
}

func NewHandler(us *users.Service, g *guard.Guard, gw *realtime.Gateway, logger logging.Logger) *Handler {
	return &Handler{
		users:   us,
		guard:   g,
		gateway: gw,
		logger:  logger.With("module", "httpapi"),
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"required,min=1"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// identityResponse is the public view of an identity plus a freshly issued
// token. The password hash never appears here.
type identityResponse struct {
	ID       string       `json:"id"`
	Email    string       `json:"email"`
	FullName string       `json:"fullName"`
	IsActive bool         `json:"isActive"`
	Roles    []users.Role `json:"roles"`
	Token    string       `json:"token"`
}

func newIdentityResponse(res *users.AuthResult) identityResponse {
	return identityResponse{
		ID:       res.User.ID,
		Email:    res.User.Email,
		FullName: res.User.FullName,
		IsActive: res.User.IsActive,
		Roles:    res.User.Roles,
		Token:    res.Token,
	}
}

func newErrorResponse(c *gin.Context, statusCode int, errMessage string) {
	c.AbortWithStatusJSON(statusCode, errorResponse{Message: errMessage})
}

// InitRoutes builds the gin engine with all public and protected routes.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger())

	router.GET("/up", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.GET("/check-auth-status", h.guard.Protect(), h.checkAuthStatus)
		auth.GET("/private", h.guard.Protect(users.RoleSuperUser), h.privateRoute)
		auth.GET("/private-2", h.guard.Protect(users.RoleAdmin), h.privateRoute)
	}

	router.GET("/ws", gin.WrapH(h.gateway.Handler()))

	return router
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	res, err := h.users.Register(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			newErrorResponse(c, http.StatusConflict, msgEmailAlreadyRegistered)
			return
		}
		h.logger.Error(c.Request.Context(), "register failed", "error", err)
		newErrorResponse(c, http.StatusInternalServerError, msgInternalError)
		return
	}

	c.JSON(http.StatusCreated, newIdentityResponse(res))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	res, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			newErrorResponse(c, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		h.logger.Error(c.Request.Context(), "login failed", "error", err)
		newErrorResponse(c, http.StatusInternalServerError, msgInternalError)
		return
	}

	c.JSON(http.StatusOK, newIdentityResponse(res))
}

func (h *Handler) checkAuthStatus(c *gin.Context) {
	user := guard.UserFromContext(c)
	if user == nil {
		newErrorResponse(c, http.StatusUnauthorized, common.ErrorUnauthorized.Error())
		return
	}

	res, err := h.users.CheckStatus(c.Request.Context(), user)
	if err != nil {
		h.logger.Error(c.Request.Context(), "check status failed", "error", err)
		newErrorResponse(c, http.StatusInternalServerError, msgInternalError)
		return
	}

	c.JSON(http.StatusOK, newIdentityResponse(res))
}

func (h *Handler) privateRoute(c *gin.Context) {
	user := guard.UserFromContext(c)
	if user == nil {
		newErrorResponse(c, http.StatusUnauthorized, common.ErrorUnauthorized.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
