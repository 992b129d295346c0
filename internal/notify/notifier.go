package notify

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mannaworks/manna-server/internal/models"
	"github.com/nats-io/nats.go"
	"gorm.io/gorm"
)

const subject = "manna.notifications"

// Notifier delivers best-effort user notifications: a row in the
// notifications table plus, when NATS is configured, a published event for
// realtime consumers. Failures are logged and swallowed; a notification must
// never fail the operation that produced it.
type Notifier struct {
	db *gorm.DB
	nc *nats.Conn
}

func New(db *gorm.DB, natsURL string) *Notifier {
	n := &Notifier{db: db}
	if natsURL == "" {
		return n
	}
	nc, err := nats.Connect(natsURL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		slog.Error("nats connect failed, notifications will be DB-only", "error", err)
		return n
	}
	n.nc = nc
	slog.Info("nats connected", "url", natsURL)
	return n
}

type event struct {
	UserID   uuid.UUID  `json:"user_id"`
	Kind     string     `json:"kind"`
	SeriesID *uuid.UUID `json:"series_id,omitempty"`
	Message  string     `json:"message"`
}

// Notify records and publishes a notification. Never returns an error.
func (n *Notifier) Notify(userID uuid.UUID, kind string, seriesID *uuid.UUID, message string) {
	record := models.Notification{
		ID:       uuid.New(),
		UserID:   userID,
		Kind:     kind,
		SeriesID: seriesID,
		Message:  message,
	}
	if n.db != nil {
		if err := n.db.Create(&record).Error; err != nil {
			slog.Error("notification write failed", "error", err, "user_id", userID.String(), "kind", kind)
		}
	}

	if n.nc == nil || !n.nc.IsConnected() {
		return
	}
	payload, err := json.Marshal(event{UserID: userID, Kind: kind, SeriesID: seriesID, Message: message})
	if err != nil {
		return
	}
	if err := n.nc.Publish(subject, payload); err != nil {
		slog.Error("notification publish failed", "error", err, "kind", kind)
	}
}

// ListForUser returns a user's notifications, newest first.
func (n *Notifier) ListForUser(userID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []models.Notification
	err := n.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (n *Notifier) Close() {
	if n.nc != nil {
		n.nc.Close()
	}
}
