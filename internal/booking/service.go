package booking

import (
	"context"
	"errors"
	"time"

	"ringslot/internal/email"
	"ringslot/internal/logger"
	"ringslot/internal/metrics"
	"ringslot/internal/slot"
	"ringslot/internal/user"
)

type Service interface {
	BookSlot(ctx context.Context, userID, slotID int) (*Booking, error)
	BookByDateTime(ctx context.Context, userID int, date time.Time, slotTime string) (*Booking, error)
	Cancel(ctx context.Context, userID, bookingID int, reason string) error
	Reschedule(ctx context.Context, userID, bookingID, newSlotID int) (*Booking, error)
	ListByUser(ctx context.Context, userID int) ([]BookingWithSlot, error)
	ListUpcoming(ctx context.Context) ([]BookingWithSlot, error)
	StatsByDay(ctx context.Context, from, to time.Time) ([]StatsByDay, error)
}

type service struct {
	repo     Repository
	slotRepo slot.Repository
	userRepo user.Repository
	email    *email.Service
}

func NewService(repo Repository, slotRepo slot.Repository, userRepo user.Repository, emailService *email.Service) Service {
	return &service{
		repo:     repo,
		slotRepo: slotRepo,
		userRepo: userRepo,
		email:    emailService,
	}
}

func (s *service) BookSlot(ctx context.Context, userID, slotID int) (*Booking, error) {
	b, err := s.repo.Book(ctx, userID, slotID)
	if err != nil {
		metrics.RecordBooking("rejected")
		return nil, err
	}

	metrics.RecordBooking("created")
	s.notify(ctx, b, "confirmation")

	return b, nil
}

// BookByDateTime resolves a calendar position to its training slot and books
// it through the same transactional path.
func (s *service) BookByDateTime(ctx context.Context, userID int, date time.Time, slotTime string) (*Booking, error) {
	ts, err := s.slotRepo.FindByDateTime(ctx, date, slotTime)
	if err != nil {
		if errors.Is(err, slot.ErrSlotNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	return s.BookSlot(ctx, userID, ts.ID)
}

func (s *service) Cancel(ctx context.Context, userID, bookingID int, reason string) error {
	if err := s.repo.Cancel(ctx, userID, bookingID, reason); err != nil {
		return err
	}

	metrics.RecordBookingCancellation()

	if b, err := s.repo.GetByID(ctx, bookingID); err == nil {
		s.notify(ctx, b, "cancellation")
	}

	return nil
}

func (s *service) Reschedule(ctx context.Context, userID, bookingID, newSlotID int) (*Booking, error) {
	b, err := s.repo.Reschedule(ctx, userID, bookingID, newSlotID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, b, "confirmation")
	return b, nil
}

func (s *service) ListByUser(ctx context.Context, userID int) ([]BookingWithSlot, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListUpcoming(ctx context.Context) ([]BookingWithSlot, error) {
	return s.repo.ListUpcoming(ctx)
}

func (s *service) StatsByDay(ctx context.Context, from, to time.Time) ([]StatsByDay, error) {
	return s.repo.GetStatsByDay(ctx, from, to)
}

// notify queues a booking email. Delivery problems never fail the booking.
func (s *service) notify(ctx context.Context, b *Booking, kind string) {
	if s.email == nil {
		return
	}

	u, err := s.userRepo.FindByID(ctx, b.UserID)
	if err != nil {
		logger.Errorf("booking %d: failed to load user for email: %v", b.ID, err)
		return
	}

	slotDate, slotTime, err := s.repo.SlotTimeOf(ctx, b.ID)
	if err != nil {
		logger.Errorf("booking %d: failed to load slot for email: %v", b.ID, err)
		return
	}

	when := slotDate.Format("Jan 2, 2006") + " " + slotTime

	switch kind {
	case "confirmation":
		err = s.email.SendBookingConfirmation(ctx, u.Email, u.FullName, when)
	case "cancellation":
		err = s.email.SendBookingCancellation(ctx, u.Email, u.FullName, when)
	}
	if err != nil {
		logger.Errorf("booking %d: failed to queue %s email: %v", b.ID, kind, err)
	}
}
