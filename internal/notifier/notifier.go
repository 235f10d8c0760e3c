package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"sound-service/internal/models"
	"sound-service/internal/repository"

	"github.com/segmentio/kafka-go"
)

// EmailSender delivers one email through an external provider.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender delivers one text message through an external provider.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// LogSender stands in for real providers in development: it logs the
// message instead of delivering it.
type LogSender struct{}

func (LogSender) SendEmail(_ context.Context, to, subject, _ string) error {
	log.Printf("email to %s: %s", to, subject)
	return nil
}

func (LogSender) SendSMS(_ context.Context, to, body string) error {
	log.Printf("sms to %s: %s", to, body)
	return nil
}

// Worker consumes notification events and fans them out to email and SMS.
// Delivery is best-effort per channel; a failed channel is logged and the
// event is still committed so one bad provider cannot wedge the topic.
type Worker struct {
	reader *kafka.Reader
	users  repository.UserRepository
	email  EmailSender
	sms    SMSSender
}

func NewWorker(brokers []string, topic, groupID string, users repository.UserRepository, email EmailSender, sms SMSSender) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 1e6,
	})
	return &Worker{
		reader: reader,
		users:  users,
		email:  email,
		sms:    sms,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer w.reader.Close()

	for {
		msg, err := w.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}
		w.handle(ctx, msg.Value)
	}
}

func (w *Worker) handle(ctx context.Context, payload []byte) {
	var event models.NotificationEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Printf("dropping malformed notification event: %v", err)
		return
	}

	recipient, err := w.users.FindByID(ctx, event.RecipientID)
	if err != nil {
		log.Printf("notification recipient %d not found: %v", event.RecipientID, err)
		return
	}
	actor, err := w.users.FindByID(ctx, event.ActorID)
	if err != nil {
		log.Printf("notification actor %d not found: %v", event.ActorID, err)
		return
	}

	subject, body := composeMessage(&event, actor)
	if subject == "" {
		log.Printf("unknown notification type %q, skipping", event.Type)
		return
	}

	if recipient.Email != "" {
		if err := w.email.SendEmail(ctx, recipient.Email, subject, body); err != nil {
			log.Printf("email delivery failed for user %d: %v", recipient.ID, err)
		}
	}
	if recipient.Phone != "" {
		if err := w.sms.SendSMS(ctx, recipient.Phone, body); err != nil {
			log.Printf("sms delivery failed for user %d: %v", recipient.ID, err)
		}
	}
}

func composeMessage(event *models.NotificationEvent, actor *models.User) (string, string) {
	switch event.Type {
	case models.NotificationConnectionRequest:
		return "New connection request",
			fmt.Sprintf("%s sent you a connection request", actor.Username)
	case models.NotificationConnectionAccepted:
		return "Connection accepted",
			fmt.Sprintf("%s accepted your connection request", actor.Username)
	case models.NotificationSoundShared:
		return "New sound shared",
			fmt.Sprintf("%s shared a sound with you", actor.Username)
	default:
		return "", ""
	}
}
