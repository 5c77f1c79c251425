package client

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"ringslot/internal/user"
	"ringslot/internal/validation"
)

type Handler struct {
	repo     Repository
	userRepo user.Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{
		repo:     NewRepository(db),
		userRepo: user.NewRepository(db),
	}
}

// List godoc
// @Summary      List clients
// @Description  Returns all clients with subscription counts. Admin only.
// @Tags         clients
// @Security     TokenAuth
// @Produce      json
// @Success      200  {object}  map[string][]ClientSummary
// @Failure      500  {object}  api.ErrorResponse
// @Router       /admin/clients [get]
func (h *Handler) List(c *gin.Context) {
	clients, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch clients"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

// Get godoc
// @Summary      Get client
// @Description  Returns a client with their current subscription. Admin only.
// @Tags         clients
// @Security     TokenAuth
// @Produce      json
// @Param        clientID  path      int  true  "Client ID"
// @Success      200       {object}  ClientWithSubscription
// @Failure      400       {object}  api.ErrorResponse
// @Failure      404       {object}  api.ErrorResponse
// @Failure      500       {object}  api.ErrorResponse
// @Router       /admin/clients/{clientID} [get]
func (h *Handler) Get(c *gin.Context) {
	clientID, err := strconv.Atoi(c.Param("clientID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client ID"})
		return
	}

	cl, err := h.repo.GetByID(c.Request.Context(), clientID)
	if err != nil {
		if errors.Is(err, ErrClientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, cl)
}

// Create godoc
// @Summary      Create client
// @Description  Registers a client record without credentials. The email is
// @Description  deduplicated against existing users. Admin only.
// @Tags         clients
// @Security     TokenAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateClientRequest  true  "Client data"
// @Success      201      {object}  user.PublicUser
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /admin/clients [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)

	if errs := validation.ValidateStruct(req); len(errs) > 0 {
		validation.RespondWithValidationErrors(c, errs)
		return
	}

	exists, err := h.userRepo.EmailExists(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	// Empty password hash disables login for admin-created records.
	u, err := h.userRepo.Create(c.Request.Context(), req.Email, "", req.FullName, req.Phone, "client")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create client"})
		return
	}

	c.JSON(http.StatusCreated, u.Public())
}
