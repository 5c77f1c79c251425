package subscription

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"ringslot/internal/metrics"
)

const dateLayout = "2006-01-02"

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// Create godoc
// @Summary      Issue subscription
// @Description  Creates a prepaid session bundle for a user. Admin only.
// @Tags         subscriptions
// @Security     TokenAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateSubscriptionRequest  true  "Subscription data"
// @Success      201      {object}  Subscription
// @Failure      400      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /admin/subscriptions [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date, use YYYY-MM-DD"})
		return
	}

	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date, use YYYY-MM-DD"})
		return
	}

	if endDate.Before(startDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must not be before start_date"})
		return
	}

	sub, err := h.repo.Create(c.Request.Context(), req.UserID, req.Type, req.TotalSessions, startDate, endDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create subscription"})
		return
	}

	metrics.RecordSubscription(sub.Type)
	c.JSON(http.StatusCreated, sub)
}

// ListByUser godoc
// @Summary      List user subscriptions
// @Description  Returns all subscriptions of a user with remaining session
// @Description  counts. Admin only.
// @Tags         subscriptions
// @Security     TokenAuth
// @Produce      json
// @Param        userID  path      int  true  "User ID"
// @Success      200     {array}   SubscriptionWithRemaining
// @Failure      400     {object}  api.ErrorResponse
// @Failure      500     {object}  api.ErrorResponse
// @Router       /admin/users/{userID}/subscriptions [get]
func (h *Handler) ListByUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	subs, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch subscriptions"})
		return
	}

	c.JSON(http.StatusOK, subs)
}
