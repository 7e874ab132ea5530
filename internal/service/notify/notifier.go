package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"SchoolScan/entity"
	"SchoolScan/internal/lib/sl"
)

// Sender is the transport that actually delivers a text message. The
// WhatsApp bot implements it.
type Sender interface {
	SendMessage(recipientPhone, text string) error
}

// Service formats and dispatches guardian notifications. Strictly
// best-effort: callers treat a returned error as data, not as a fault.
type Service struct {
	sender Sender
	loc    *time.Location
	log    *slog.Logger
}

func NewService(loc *time.Location, logger *slog.Logger) *Service {
	return &Service{
		loc: loc,
		log: logger.With(sl.Module("notify")),
	}
}

func (s *Service) SetSender(sender Sender) {
	s.sender = sender
}

// NotifyGuardian sends one message about an attendance event. Never
// retried; the engine only logs the outcome.
func (s *Service) NotifyGuardian(_ context.Context, student *entity.Student, kind entity.EventKind, when time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.With(
				slog.Any("panic", r),
			).Error("notify guardian")
			err = fmt.Errorf("notify guardian panic: %v", r)
		}
	}()

	if s.sender == nil {
		return fmt.Errorf("notification sender not configured")
	}
	if student.GuardianPhone == "" {
		return fmt.Errorf("student %s has no guardian phone", student.IndexNumber)
	}

	stamp := when.In(s.loc).Format("15:04")
	day := when.In(s.loc).Format("02.01.2006")

	var text string
	switch kind {
	case entity.EventEntry:
		text = fmt.Sprintf("%s arrived at school at %s.", student.Name, stamp)
	case entity.EventExit:
		text = fmt.Sprintf("%s left school at %s.", student.Name, stamp)
	case entity.EventAutoCheckout:
		text = fmt.Sprintf("%s had no exit scan on %s and was checked out automatically at %s.", student.Name, day, stamp)
	default:
		return fmt.Errorf("unknown event kind: %s", kind)
	}

	if err := s.sender.SendMessage(student.GuardianPhone, text); err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}

	return nil
}
