package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/rajac/admission-portal/pkg/jobs"
	"github.com/rajac/admission-portal/pkg/mailer"
)

// NotificationService e-mails parents about their application.
type NotificationService struct {
	mailer  mailer.Mailer
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(m mailer.Mailer, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{mailer: m, metrics: metrics, logger: logger}
}

// Register installs the notification handlers on mux.
func (s *NotificationService) Register(mux *jobs.Mux) {
	mux.Handle(jobs.TypeNotifyAck, s.handle(jobs.TypeNotifyAck, ackMessage))
	mux.Handle(jobs.TypeNotifySlot, s.handle(jobs.TypeNotifySlot, slotMessage))
}

func (s *NotificationService) handle(jobType string, build func(NotificationPayload) mailer.Message) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(NotificationPayload)
		if !ok {
			s.metrics.RecordJob(jobType, fmt.Errorf("bad payload"))
			return fmt.Errorf("%s: unexpected payload %T", jobType, job.Payload)
		}
		if strings.TrimSpace(payload.Email) == "" {
			s.logger.Debug("skipping notification without recipient", zap.String("type", jobType), zap.String("form_id", payload.FormID))
			return nil
		}

		msg := build(payload)
		msg.To = []mail.Address{{Name: payload.ParentName, Address: payload.Email}}
		err := s.mailer.Send(ctx, msg)
		s.metrics.RecordJob(jobType, err)
		if err != nil {
			return fmt.Errorf("%s: %w", jobType, err)
		}
		return nil
	}
}

func ackMessage(p NotificationPayload) mailer.Message {
	text := fmt.Sprintf("Dear %s,\n\nWe have received the admission application for %s (%s). "+
		"Please book an entrance exam slot from your dashboard.\n", p.ParentName, p.StudentName, p.Grade)
	return mailer.Message{Subject: "Application received", TextContent: text}
}

func slotMessage(p NotificationPayload) mailer.Message {
	text := fmt.Sprintf("Dear %s,\n\nThe entrance exam for %s is booked on %s at %s. "+
		"Please complete the fee payment before the exam date.\n", p.ParentName, p.StudentName, p.TestDate, p.TestTime)
	return mailer.Message{Subject: "Entrance exam booked", TextContent: text}
}
