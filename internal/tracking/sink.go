package tracking

import (
	"encoding/json"
	"log"
	"time"

	"greetops/internal/adapters/persistence/models"
	"greetops/internal/notify"
)

// Sink pushes committed mission facts to websocket subscribers and,
// when configured, to the message broker. Implements services.EventSink.
type Sink struct {
	hub       *Hub
	publisher *notify.Publisher // nil when AMQP is disabled
}

// NewSink creates a sink over the hub and an optional broker publisher
func NewSink(hub *Hub, publisher *notify.Publisher) *Sink {
	return &Sink{hub: hub, publisher: publisher}
}

type statusMessage struct {
	Type           string    `json:"type"`
	MissionID      uint      `json:"mission_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	ActorID        uint      `json:"actor_id"`
	Timestamp      time.Time `json:"timestamp"`
}

type locationMessage struct {
	Type      string    `json:"type"`
	MissionID uint      `json:"mission_id"`
	AgentID   uint      `json:"agent_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusChanged broadcasts a committed status transition
func (s *Sink) StatusChanged(mission *models.Mission, previousStatus, newStatus string, actorID uint) {
	msg := statusMessage{
		Type:           "status_change",
		MissionID:      mission.ID,
		PreviousStatus: previousStatus,
		NewStatus:      newStatus,
		ActorID:        actorID,
		Timestamp:      time.Now(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("❌ Failed to marshal status message: %v", err)
		return
	}

	s.hub.Broadcast(mission.ID, payload)

	if s.publisher != nil {
		go s.publisher.PublishStatusChange(mission.ID, payload)
	}
}

// LocationDispatched broadcasts a committed location sample
func (s *Sink) LocationDispatched(mission *models.Mission, sample *models.LocationLog) {
	msg := locationMessage{
		Type:      "location",
		MissionID: mission.ID,
		AgentID:   sample.AgentID,
		Latitude:  sample.Lat,
		Longitude: sample.Lng,
		Timestamp: sample.Timestamp,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("❌ Failed to marshal location message: %v", err)
		return
	}

	s.hub.Broadcast(mission.ID, payload)

	if s.publisher != nil {
		go s.publisher.PublishLocation(mission.ID, payload)
	}
}
