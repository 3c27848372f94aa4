package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Subjects published by the progress engine.
const (
	SubjectLevelCompleted = "quest.progress.level_completed"
	SubjectBadgeAwarded   = "quest.progress.badge_awarded"
)

// LevelCompleted is emitted on a first-time completion transition.
type LevelCompleted struct {
	EventID    string    `json:"event_id"`
	UserID     uint      `json:"user_id"`
	LevelID    uint      `json:"level_id"`
	Points     int       `json:"points"`
	TotalScore int       `json:"total_score"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BadgeAwarded is emitted when a badge is newly added to a user.
type BadgeAwarded struct {
	EventID    string    `json:"event_id"`
	UserID     uint      `json:"user_id"`
	Badge      string    `json:"badge"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits progress events over NATS. A nil connection disables
// publishing; event delivery is best-effort and never fails a request.
type Publisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewPublisher constructs an event publisher. conn may be nil.
func NewPublisher(conn *nats.Conn, logger zerolog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// LevelCompleted publishes a level-completed event.
func (p *Publisher) LevelCompleted(userID, levelID uint, points, totalScore int) {
	p.publish(SubjectLevelCompleted, LevelCompleted{
		EventID:    uuid.NewString(),
		UserID:     userID,
		LevelID:    levelID,
		Points:     points,
		TotalScore: totalScore,
		OccurredAt: time.Now(),
	})
}

// BadgeAwarded publishes a badge-awarded event.
func (p *Publisher) BadgeAwarded(userID uint, badge string) {
	p.publish(SubjectBadgeAwarded, BadgeAwarded{
		EventID:    uuid.NewString(),
		UserID:     userID,
		Badge:      badge,
		OccurredAt: time.Now(),
	})
}

func (p *Publisher) publish(subject string, payload interface{}) {
	if p == nil || p.conn == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("failed to marshal event")
		return
	}

	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}
