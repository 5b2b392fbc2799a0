package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserHandler serves sign-up, tokens, user profiles and subscriptions.
type UserHandler struct {
	auth          service.IAuthService
	users         service.IUserService
	subscriptions service.ISubscriptionService
	requireAuth   []gin.HandlerFunc
	baseURL       string
	pageSize      int
}

func NewUserHandler(auth service.IAuthService, users service.IUserService, subscriptions service.ISubscriptionService, requireAuth []gin.HandlerFunc, baseURL string, pageSize int) *UserHandler {
	return &UserHandler{
		auth:          auth,
		users:         users,
		subscriptions: subscriptions,
		requireAuth:   requireAuth,
		baseURL:       baseURL,
		pageSize:      pageSize,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	optional := middleware.OptionalAuth(h.auth)
	authed := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, h.requireAuth...), handler)
	}

	tokens := router.Group("/auth/token")
	{
		tokens.POST("/login", h.Login)
		tokens.POST("/logout", authed(h.Logout)...)
	}

	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", optional, h.ListUsers)
		users.GET("/me", authed(h.Me)...)
		users.POST("/set_password", authed(h.SetPassword)...)
		users.PUT("/me/avatar", authed(h.SetAvatar)...)
		users.DELETE("/me/avatar", authed(h.DeleteAvatar)...)
		users.GET("/subscriptions", authed(h.Subscriptions)...)
		users.GET("/:id", optional, h.GetUser)
		users.POST("/:id/subscribe", authed(h.Subscribe)...)
		users.DELETE("/:id/subscribe", authed(h.Unsubscribe)...)
	}
}

func pathUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, service.ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	user, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}
	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.TokenResponse{AuthToken: token})
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req service.SetPasswordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	userID, _ := middleware.UserID(c)
	if err := h.auth.SetPassword(c.Request.Context(), userID, &req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Logout is a no-op: tokens are stateless and expire on their own.
func (h *UserHandler) Logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page := pageFromQuery(c, h.pageSize)
	users, total, err := h.users.ListUsers(c.Request.Context(), middleware.Viewer(c), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, h.baseURL, page, total, users))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), middleware.Viewer(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	user, err := h.users.GetUser(c.Request.Context(), &userID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	var req types.AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	userID, _ := middleware.UserID(c)
	url, err := h.users.SetAvatar(c.Request.Context(), userID, req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.AvatarResponse{Avatar: url})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	if err := h.users.DeleteAvatar(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	page := pageFromQuery(c, h.pageSize)
	authors, total, err := h.subscriptions.ListFollowedAuthors(c.Request.Context(), userID, queryInt(c, "recipes_limit"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, h.baseURL, page, total, authors))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, ok := pathUUID(c)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)
	author, err := h.subscriptions.Subscribe(c.Request.Context(), userID, authorID, queryInt(c, "recipes_limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, author)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, ok := pathUUID(c)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)
	if err := h.subscriptions.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
