package worker

// notification_worker.go
// Processes notification jobs from QueueNotification.
// Sends low-stock emails to tenant owners via SMTP. Delivery is best-effort:
// failures are logged (and parked in the DLQ), never surfaced to the mutation
// that triggered them.

import (
	"context"
	"encoding/json"

	"novacrm/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NotificationJobPayload is the job envelope sent to QueueNotification.
type NotificationJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NotificationWorker processes notification jobs from QueueNotification.
type NotificationWorker struct {
	mailer *infra.Mailer
	rdb    *redis.Client
}

func NewNotificationWorker(mailer *infra.Mailer, rdb *redis.Client) *NotificationWorker {
	return &NotificationWorker{mailer: mailer, rdb: rdb}
}

// Process sends a single notification email.
func (w *NotificationWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload NotificationJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("notification_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("notification_worker: empty to_email — skipping")
		return
	}

	if err := w.mailer.Send(payload.ToEmail, payload.Subject, payload.Body); err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("notification_worker: failed to send email")
		SendToDLQ(ctx, w.rdb, QueueNotification, "notification", raw, err.Error(), 1)
		return
	}
	log.Info().Str("to", payload.ToEmail).Msg("notification_worker: email sent")
}
