package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Типы игровых событий. Имена не содержат точек: они становятся
// последним токеном NATS subject.
const (
	TypeSessionReset        = "session_reset"
	TypeTileDestroyed       = "tile_destroyed"
	TypeItemCollected       = "item_collected"
	TypeWormSpawned         = "worm_spawned"
	TypeWormKilled          = "worm_killed"
	TypePlayerHit           = "player_hit"
	TypePowerBlockActivated = "power_block_activated"
	TypeUpgradeOffered      = "upgrade_offered"
	TypeUpgradeSelected     = "upgrade_selected"
	TypeGameOver            = "game_over"
	TypeSnapshotSaved       = "snapshot_saved"
	TypeSnapshotLoaded      = "snapshot_loaded"
	TypeCues                = "cues"
)

// Приоритеты. Всё, что ниже PriorityHigh, может быть отброшено при переполнении.
const (
	PriorityLow      = 1
	PriorityNormal   = 3
	PriorityHigh     = 5
	PriorityCritical = 9
)

const (
	subjectPrefix = "events."
	subjectAll    = subjectPrefix + "*"
)

// Subject возвращает NATS subject для типа события.
func Subject(eventType string) string {
	return subjectPrefix + eventType
}

// NewEnvelope упаковывает payload в JSON и заполняет служебные поля.
func NewEnvelope(source, eventType string, priority int, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("payload %s: %w", eventType, err)
	}
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		Version:   1,
		Priority:  priority,
		Payload:   data,
	}, nil
}

// Decode разбирает JSON payload в v.
func (e *Envelope) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}
