package services

import (
	"context"

	"greetops/internal/adapters/persistence/models"
)

// Storage is the external file storage collaborator. References are opaque;
// only the provider can turn them into fetchable URLs.
type Storage interface {
	GenerateUploadURL(ctx context.Context) (string, error)
	// ResolveURL returns "" (no error) when the reference does not resolve.
	ResolveURL(ctx context.Context, ref string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// EventSink receives lifecycle facts after they are committed, for live
// delivery (websocket hub, message broker). Implementations must not block;
// failures are their own to log. A nil sink disables delivery.
type EventSink interface {
	StatusChanged(mission *models.Mission, previousStatus, newStatus string, actorID uint)
	LocationDispatched(mission *models.Mission, sample *models.LocationLog)
}
