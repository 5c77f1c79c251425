package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"ringslot/internal/auth"
	"ringslot/internal/email"
	"ringslot/internal/slot"
	"ringslot/internal/user"
)

const (
	dateLayout          = "2006-01-02"
	defaultCancelReason = "canceled by client"
)

type Handler struct {
	service Service
}

func NewHandler(db *sqlx.DB, emailService *email.Service) *Handler {
	return &Handler{
		service: NewService(
			NewRepository(db),
			slot.NewRepository(db),
			user.NewRepository(db),
			emailService,
		),
	}
}

// NewHandlerWithService wires an explicit service, used by tests.
func NewHandlerWithService(s Service) *Handler {
	return &Handler{service: s}
}

// BookSlot godoc
// @Summary      Book training slot
// @Description  Books the slot against the caller's subscription expiring
// @Description  soonest. Slot flip, booking insert and session decrement are
// @Description  one atomic unit.
// @Tags         bookings
// @Security     TokenAuth
// @Produce      json
// @Param        slotID  path      int  true  "Slot ID"
// @Success      201     {object}  BookSlotResponse
// @Failure      400     {object}  api.ErrorResponse
// @Failure      404     {object}  api.ErrorResponse
// @Failure      409     {object}  api.ErrorResponse
// @Failure      500     {object}  api.ErrorResponse
// @Router       /slots/{slotID}/book [post]
func (h *Handler) BookSlot(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot ID"})
		return
	}

	b, err := h.service.BookSlot(c.Request.Context(), userID, slotID)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, BookSlotResponse{Message: "booking created", Booking: b})
}

// Create godoc
// @Summary      Book by date and time
// @Description  Resolves the training slot at the given calendar position and
// @Description  books it.
// @Tags         bookings
// @Security     TokenAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateBookingRequest  true  "Calendar position"
// @Success      201      {object}  BookSlotResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) Create(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slot_date and slot_time are required"})
		return
	}

	date, err := time.Parse(dateLayout, req.SlotDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot_date, use YYYY-MM-DD"})
		return
	}

	b, err := h.service.BookByDateTime(c.Request.Context(), userID, date, req.SlotTime)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, BookSlotResponse{Message: "booking created", Booking: b})
}

// Cancel godoc
// @Summary      Cancel booking
// @Description  Cancels the caller's active booking, frees the slot and
// @Description  returns the session credit, atomically.
// @Tags         bookings
// @Security     TokenAuth
// @Accept       json
// @Produce      json
// @Param        bookingID  path      int                   true   "Booking ID"
// @Param        request    body      CancelBookingRequest  false  "Cancel reason"
// @Success      200        {object}  api.MessageResponse
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      500        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking ID"})
		return
	}

	var req CancelBookingRequest
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = defaultCancelReason
	}

	if err := h.service.Cancel(c.Request.Context(), userID, bookingID, req.Reason); err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel booking"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "booking canceled"})
}

// Reschedule godoc
// @Summary      Reschedule booking
// @Description  Moves an active booking to another available slot as
// @Description  cancel+rebook in a single transaction.
// @Tags         bookings
// @Security     TokenAuth
// @Accept       json
// @Produce      json
// @Param        bookingID  path      int                       true  "Booking ID"
// @Param        request    body      RescheduleBookingRequest  true  "Target slot"
// @Success      200        {object}  BookSlotResponse
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Failure      500        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/reschedule [post]
func (h *Handler) Reschedule(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking ID"})
		return
	}

	var req RescheduleBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slot_id is required"})
		return
	}

	b, err := h.service.Reschedule(c.Request.Context(), userID, bookingID, req.SlotID)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, BookSlotResponse{Message: "booking rescheduled", Booking: b})
}

// ListMine godoc
// @Summary      List my bookings
// @Tags         bookings
// @Security     TokenAuth
// @Produce      json
// @Success      200  {object}  map[string][]BookingWithSlot
// @Failure      500  {object}  api.ErrorResponse
// @Router       /bookings [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	bookings, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ListByUser godoc
// @Summary      List bookings of a user
// @Description  Admin only.
// @Tags         bookings
// @Security     TokenAuth
// @Produce      json
// @Param        userID  path      int  true  "User ID"
// @Success      200     {object}  map[string][]BookingWithSlot
// @Failure      400     {object}  api.ErrorResponse
// @Failure      500     {object}  api.ErrorResponse
// @Router       /admin/users/{userID}/bookings [get]
func (h *Handler) ListByUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	bookings, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ListUpcoming godoc
// @Summary      List upcoming bookings
// @Description  Active bookings from today on. Admin only.
// @Tags         bookings
// @Security     TokenAuth
// @Produce      json
// @Success      200  {object}  map[string][]BookingWithSlot
// @Failure      500  {object}  api.ErrorResponse
// @Router       /admin/bookings/upcoming [get]
func (h *Handler) ListUpcoming(c *gin.Context) {
	bookings, err := h.service.ListUpcoming(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// Analytics godoc
// @Summary      Booking analytics
// @Description  Bookings created and canceled per day. Admin only.
// @Tags         bookings
// @Security     TokenAuth
// @Produce      json
// @Param        from  query     string  true  "Start datetime (RFC3339)"
// @Param        to    query     string  true  "End datetime (RFC3339)"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  api.ErrorResponse
// @Failure      500   {object}  api.ErrorResponse
// @Router       /admin/analytics/bookings [get]
func (h *Handler) Analytics(c *gin.Context) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to query params are required"})
		return
	}

	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from format, use RFC3339"})
		return
	}

	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to format, use RFC3339"})
		return
	}

	stats, err := h.service.StatsByDay(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "data": stats})
}

func (h *Handler) respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSlotNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "training slot not found"})
	case errors.Is(err, ErrSlotUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "slot is not available"})
	case errors.Is(err, ErrNoBookableSubscription):
		c.JSON(http.StatusConflict, gin.H{"error": "no active subscription with remaining sessions"})
	case errors.Is(err, ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
