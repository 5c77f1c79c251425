package slot

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

const dateLayout = "2006-01-02"

// Hourly projection window of the studio calendar.
const (
	gridStartHour = 9
	gridEndHour   = 21
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// ListSlots godoc
// @Summary      List training slots
// @Description  Returns slots in a date range (default today .. +7 days),
// @Description  annotated with the active booking when booked.
// @Tags         slots
// @Produce      json
// @Param        start_date  query     string  false  "Range start (YYYY-MM-DD)"
// @Param        end_date    query     string  false  "Range end (YYYY-MM-DD)"
// @Success      200         {object}  map[string][]SlotWithBooking
// @Failure      400         {object}  api.ErrorResponse
// @Failure      500         {object}  api.ErrorResponse
// @Router       /slots [get]
func (h *Handler) ListSlots(c *gin.Context) {
	now := time.Now()
	startDate := now
	endDate := now.AddDate(0, 0, 7)

	if s := c.Query("start_date"); s != "" {
		parsed, err := time.Parse(dateLayout, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date, use YYYY-MM-DD"})
			return
		}
		startDate = parsed
	}

	if s := c.Query("end_date"); s != "" {
		parsed, err := time.Parse(dateLayout, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date, use YYYY-MM-DD"})
			return
		}
		endDate = parsed
	}

	slots, err := h.repo.ListRange(c.Request.Context(), startDate, endDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch slots"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// Schedule godoc
// @Summary      Hourly schedule for a day
// @Description  Projects one day onto the 09:00-21:00 hourly grid. An hour is
// @Description  available only when a training slot exists there and is open.
// @Tags         slots
// @Produce      json
// @Param        date  query     string  false  "Day (YYYY-MM-DD, default today)"
// @Success      200   {object}  map[string][]GridHour
// @Failure      400   {object}  api.ErrorResponse
// @Failure      500   {object}  api.ErrorResponse
// @Router       /schedule [get]
func (h *Handler) Schedule(c *gin.Context) {
	date := time.Now()
	if s := c.Query("date"); s != "" {
		parsed, err := time.Parse(dateLayout, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	slots, err := h.repo.ListByDate(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch slots"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedule": BuildDayGrid(slots)})
}

// BuildDayGrid folds a day's slots onto the hourly grid.
func BuildDayGrid(slots []TrainingSlot) []GridHour {
	byHour := make(map[string]TrainingSlot, len(slots))
	for _, s := range slots {
		if len(s.SlotTime) >= 5 {
			byHour[s.SlotTime[:5]] = s
		}
	}

	grid := make([]GridHour, 0, gridEndHour-gridStartHour+1)
	for hour := gridStartHour; hour <= gridEndHour; hour++ {
		label := fmt.Sprintf("%02d:00", hour)
		entry := GridHour{Hour: label}
		if s, ok := byHour[label]; ok {
			id := s.ID
			entry.SlotID = &id
			entry.Available = s.Status == StatusAvailable
		}
		grid = append(grid, entry)
	}

	return grid
}

// CreateSlot godoc
// @Summary      Create training slot
// @Description  Adds a slot to the calendar. Admin only.
// @Tags         slots
// @Security     TokenAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateSlotRequest  true  "Slot data"
// @Success      201      {object}  TrainingSlot
// @Failure      400      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /admin/slots [post]
func (h *Handler) CreateSlot(c *gin.Context) {
	var req CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slotDate, err := time.Parse(dateLayout, req.SlotDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot_date, use YYYY-MM-DD"})
		return
	}

	if _, err := time.Parse("15:04", req.SlotTime); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot_time, use HH:MM"})
		return
	}

	s, err := h.repo.Create(c.Request.Context(), slotDate, req.SlotTime, req.DurationMinutes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create slot"})
		return
	}

	c.JSON(http.StatusCreated, s)
}

// BlockSlot godoc
// @Summary      Block training slot
// @Description  Takes an available slot off the calendar with a reason. Admin only.
// @Tags         slots
// @Security     TokenAuth
// @Accept       json
// @Produce      json
// @Param        slotID   path      int               true  "Slot ID"
// @Param        request  body      BlockSlotRequest  true  "Block reason"
// @Success      200      {object}  api.MessageResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /admin/slots/{slotID}/block [post]
func (h *Handler) BlockSlot(c *gin.Context) {
	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot ID"})
		return
	}

	var req BlockSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason is required"})
		return
	}

	if err := h.repo.Block(c.Request.Context(), slotID, req.Reason); err != nil {
		if errors.Is(err, ErrSlotNotBlockable) {
			c.JSON(http.StatusConflict, gin.H{"error": "only available slots can be blocked"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to block slot"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "slot blocked"})
}

// UnblockSlot godoc
// @Summary      Unblock training slot
// @Description  Returns a blocked slot to the calendar. Admin only.
// @Tags         slots
// @Security     TokenAuth
// @Produce      json
// @Param        slotID  path      int  true  "Slot ID"
// @Success      200     {object}  api.MessageResponse
// @Failure      400     {object}  api.ErrorResponse
// @Failure      409     {object}  api.ErrorResponse
// @Failure      500     {object}  api.ErrorResponse
// @Router       /admin/slots/{slotID}/unblock [post]
func (h *Handler) UnblockSlot(c *gin.Context) {
	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot ID"})
		return
	}

	if err := h.repo.Unblock(c.Request.Context(), slotID); err != nil {
		if errors.Is(err, ErrSlotNotBlocked) {
			c.JSON(http.StatusConflict, gin.H{"error": "slot is not blocked"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unblock slot"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "slot unblocked"})
}
