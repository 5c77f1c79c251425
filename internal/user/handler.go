package user

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"ringslot/internal/auth"
	"ringslot/internal/logger"
	"ringslot/internal/metrics"
)

const minPasswordLen = 6

type Handler struct {
	repo     Repository
	sessions auth.SessionRepository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{
		repo:     NewRepository(db),
		sessions: auth.NewSessionRepository(db),
	}
}

// Register godoc
// @Summary      Register new client
// @Description  Creates a client account and opens a 30-day session.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "Registration data"
// @Success      201      {object}  AuthResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email, password and full name are required"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	fullName := strings.TrimSpace(req.FullName)
	phone := strings.TrimSpace(req.Phone)

	if email == "" || fullName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email, password and full name are required"})
		return
	}

	if len(req.Password) < minPasswordLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 6 characters"})
		return
	}

	exists, err := h.repo.EmailExists(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	u, err := h.repo.Create(c.Request.Context(), email, passwordHash, fullName, phone, "client")
	if err != nil {
		logger.Errorf("failed to create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	token, err := h.openSession(c, u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	metrics.RecordRegistration()
	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: u.Public()})
}

// Login godoc
// @Summary      Login
// @Description  Verifies credentials and mints a new session token. Existing
// @Description  sessions for the user stay valid.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "Credentials"
// @Success      200      {object}  AuthResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	u, err := h.repo.FindByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			metrics.RecordLogin("failure")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		logger.Errorf("failed to look up user %s: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		metrics.RecordLogin("failure")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	token, err := h.openSession(c, u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	metrics.RecordLogin("success")
	c.JSON(http.StatusOK, AuthResponse{Token: token, User: u.Public()})
}

// Verify godoc
// @Summary      Verify session token
// @Description  Resolves the X-Auth-Token header to its user.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]PublicUser
// @Failure      401  {object}  api.ErrorResponse
// @Router       /auth/verify [post]
func (h *Handler) Verify(c *gin.Context) {
	token := c.GetHeader(auth.TokenHeader)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token not provided"})
		return
	}

	su, err := h.sessions.FindByTokenHash(c.Request.Context(), auth.HashToken(token))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": PublicUser{
		ID:       su.UserID,
		Email:    su.Email,
		FullName: su.FullName,
		Role:     su.Role,
	}})
}

// Logout godoc
// @Summary      Logout
// @Description  Expires the presented session token. Idempotent: an unknown
// @Description  or already expired token still yields 200.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  api.MessageResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	token := c.GetHeader(auth.TokenHeader)
	if token != "" {
		if err := h.sessions.Invalidate(c.Request.Context(), auth.HashToken(token)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) openSession(c *gin.Context, userID int) (string, error) {
	token, err := auth.GenerateToken()
	if err != nil {
		return "", err
	}

	_, err = h.sessions.CreateSession(
		c.Request.Context(),
		userID,
		auth.HashToken(token),
		time.Now().Add(auth.SessionTTL),
	)
	if err != nil {
		return "", err
	}

	return token, nil
}
