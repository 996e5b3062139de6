package models

import (
	"time"
)

// ============================================================
// Mission Tables
// ============================================================

// Mission represents missions table: a single scheduled passenger-assistance
// job owned by a client, optionally assigned to an agent.
type Mission struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	ClientID uint  `gorm:"not null;index" json:"client_id"`
	AgentID  *uint `gorm:"index" json:"agent_id"`

	// Passenger info
	PassengerName  string  `gorm:"size:100;not null" json:"passenger_name"`
	PassengerPhone *string `gorm:"size:20" json:"passenger_phone,omitempty"`
	PassengerEmail *string `gorm:"size:100" json:"passenger_email,omitempty"`
	PassengerCount *int    `json:"passenger_count,omitempty"`

	// Group leader info (when passenger_count > 1)
	GroupLeaderName  *string `gorm:"size:100" json:"group_leader_name,omitempty"`
	GroupLeaderPhone *string `gorm:"size:20" json:"group_leader_phone,omitempty"`
	GroupLeaderEmail *string `gorm:"size:100" json:"group_leader_email,omitempty"`

	// Transport info (exactly one relevant given location type)
	FlightNumber *string `gorm:"size:20" json:"flight_number,omitempty"`
	TrainNumber  *string `gorm:"size:20" json:"train_number,omitempty"`
	ShipName     *string `gorm:"size:100" json:"ship_name,omitempty"`

	// Locations
	ScheduledAt     time.Time `gorm:"not null;index" json:"scheduled_at"`
	PickupLocation  string    `gorm:"size:255;not null" json:"pickup_location"`
	DropoffLocation *string   `gorm:"size:255" json:"dropoff_location,omitempty"`

	// Service configuration
	ServiceType  string `gorm:"size:30;not null" json:"service_type"`
	LocationType string `gorm:"size:30;not null" json:"location_type"`

	// Status tracking
	Status string `gorm:"size:30;not null;index" json:"status"`

	// Pricing (integer cents)
	QuotedPrice *int64  `json:"quoted_price,omitempty"`
	Currency    *string `gorm:"size:3" json:"currency,omitempty"`

	Notes     *string   `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Client      User                `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Agent       *User               `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	Attachments []MissionAttachment `gorm:"foreignKey:MissionID" json:"attachments,omitempty"`
}

func (Mission) TableName() string {
	return "missions"
}

// MissionAttachment represents mission_attachments table: ordered document
// references (manifests, tickets). StorageRef is an opaque identifier
// resolved by the external storage collaborator.
type MissionAttachment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MissionID  uint      `gorm:"not null;index" json:"mission_id"`
	StorageRef string    `gorm:"size:255;not null" json:"storage_ref"`
	FileName   string    `gorm:"size:255;not null" json:"file_name"`
	FileType   string    `gorm:"size:100;not null" json:"file_type"`
	UploadedAt time.Time `gorm:"not null" json:"uploaded_at"`
}

func (MissionAttachment) TableName() string {
	return "mission_attachments"
}

// MissionEvent represents mission_events table: the append-only audit trail.
// Rows are never updated or deleted.
type MissionEvent struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	MissionID      uint      `gorm:"not null;index" json:"mission_id"`
	AgentID        uint      `gorm:"not null" json:"agent_id"`
	EventType      string    `gorm:"size:20;not null" json:"event_type"`
	PreviousStatus *string   `gorm:"size:30" json:"previous_status,omitempty"`
	NewStatus      *string   `gorm:"size:30" json:"new_status,omitempty"`
	PhotoRef       *string   `gorm:"size:255" json:"photo_ref,omitempty"`
	Note           *string   `gorm:"type:text" json:"note,omitempty"`
	Timestamp      time.Time `gorm:"not null;index" json:"timestamp"`
}

func (MissionEvent) TableName() string {
	return "mission_events"
}

// LocationLog represents location_logs table: immutable agent position
// samples. Timestamp is assigned server-side at insert time.
type LocationLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MissionID uint      `gorm:"not null;index" json:"mission_id"`
	AgentID   uint      `gorm:"not null;index" json:"agent_id"`
	Lat       float64   `gorm:"not null" json:"lat"`
	Lng       float64   `gorm:"not null" json:"lng"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}

func (LocationLog) TableName() string {
	return "location_logs"
}

// ============================================================
// Pricing Tables
// ============================================================

// RateCard represents rate_cards table. ClientID nil denotes a platform
// default rule. All monetary values are integer cents (EUR).
type RateCard struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	ClientID    *uint   `gorm:"index" json:"client_id"`
	Name        string  `gorm:"size:100;not null" json:"name"`
	Description *string `gorm:"size:255" json:"description,omitempty"`

	ServiceType  string `gorm:"size:30;not null;index" json:"service_type"`
	LocationType string `gorm:"size:30;not null" json:"location_type"`

	BasePrice         int64  `gorm:"not null" json:"base_price"`
	PerPassengerPrice *int64 `json:"per_passenger_price,omitempty"`
	PerKmPrice        *int64 `json:"per_km_price,omitempty"`
	MinimumPrice      *int64 `json:"minimum_price,omitempty"`

	NightSurchargePercent   *int `json:"night_surcharge_percent,omitempty"`
	WeekendSurchargePercent *int `json:"weekend_surcharge_percent,omitempty"`
	// Stored but not evaluated by the calculator.
	HolidaySurchargePercent *int `json:"holiday_surcharge_percent,omitempty"`

	IsActive   bool       `gorm:"default:true;index" json:"is_active"`
	ValidFrom  *time.Time `json:"valid_from,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RateCard) TableName() string {
	return "rate_cards"
}
