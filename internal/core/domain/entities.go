package domain

// Role represents user role in the system
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleClient Role = "Client"
	RoleAgent  Role = "Agent"
)

// IsValid checks if the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleClient, RoleAgent:
		return true
	default:
		return false
	}
}

// Actor identifies the authenticated caller of a service operation
type Actor struct {
	UserID uint
	Role   Role
}

// IsAdmin returns true for platform administrators
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// ServiceType represents the kind of assistance booked for a mission
type ServiceType string

const (
	ServiceMeetGreet    ServiceType = "Meet & Greet"
	ServiceVIP          ServiceType = "VIP"
	ServiceGroup        ServiceType = "Group"
	ServiceTransfer     ServiceType = "Transfer"
	ServiceTrainStation ServiceType = "Train Station"
	ServicePort         ServiceType = "Port"
)

// IsValid checks if the service type is known
func (s ServiceType) IsValid() bool {
	switch s {
	case ServiceMeetGreet, ServiceVIP, ServiceGroup, ServiceTransfer, ServiceTrainStation, ServicePort:
		return true
	default:
		return false
	}
}

// LocationType represents where the mission takes place
type LocationType string

const (
	LocationAirport      LocationType = "Airport"
	LocationTrainStation LocationType = "Train Station"
	LocationPort         LocationType = "Port"
	LocationAddress      LocationType = "Address"
)

// IsValid checks if the location type is known
func (l LocationType) IsValid() bool {
	switch l {
	case LocationAirport, LocationTrainStation, LocationPort, LocationAddress:
		return true
	default:
		return false
	}
}

// MissionEventType classifies audit trail entries
type MissionEventType string

const (
	EventStatusChange  MissionEventType = "StatusChange"
	EventPhotoUploaded MissionEventType = "PhotoUploaded"
	EventNote          MissionEventType = "Note"
)
