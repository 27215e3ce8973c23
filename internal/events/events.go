package events

import (
	"context"
	"time"
)

// Event topic constants
const (
	TopicPlatformCreated     = "platform.created"
	TopicPlatformDestroyed   = "platform.destroyed"
	TopicConfigurationPushed = "platform.configuration.pushed"
	TopicConfigurationPulled = "platform.configuration.pulled"
)

// Publisher sends events to subscribers. Implementations must be safe to call
// after a failed connection attempt returns (see NoopPublisher).
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Event types

type PlatformCreated struct {
	OperationID string    `json:"operation_id"`
	Version     string    `json:"version"`
	At          time.Time `json:"at"`
}

type PlatformDestroyed struct {
	OperationID string    `json:"operation_id"`
	At          time.Time `json:"at"`
}

// ConfigurationSynced is published after a push or a pull completed.
type ConfigurationSynced struct {
	OperationID string         `json:"operation_id"`
	Folder      string         `json:"folder"`
	Defaults    bool           `json:"defaults,omitempty"` // push used the built-in defaults
	Records     int            `json:"records"`
	Categories  map[string]int `json:"categories"`
	Tenants     []int64        `json:"tenants,omitempty"`
	At          time.Time      `json:"at"`
}
