package domain

// MissionStatus is the mission lifecycle state. Display strings are part of
// the API contract and must match across the state machine and the event log.
type MissionStatus string

const (
	StatusScheduled        MissionStatus = "Scheduled"
	StatusActive           MissionStatus = "Active"
	StatusArrivedAirport   MissionStatus = "Arrived at Airport"
	StatusArrivedStation   MissionStatus = "Arrived at Station"
	StatusArrivedPort      MissionStatus = "Arrived at Port"
	StatusInTransit        MissionStatus = "In Transit"
	StatusPassengerMet     MissionStatus = "Passenger Met"
	StatusLuggageCollected MissionStatus = "Luggage Collected"
	StatusComplete         MissionStatus = "Complete"
	StatusCancelled        MissionStatus = "Cancelled"
)

// String returns the display string for the status
func (s MissionStatus) String() string {
	return string(s)
}

// IsValid checks if the status is one of the known lifecycle states
func (s MissionStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusActive,
		StatusArrivedAirport, StatusArrivedStation, StatusArrivedPort, StatusInTransit,
		StatusPassengerMet, StatusLuggageCollected,
		StatusComplete, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal returns true when no further transition is allowed
func (s MissionStatus) IsTerminal() bool {
	return s == StatusComplete || s == StatusCancelled
}

// IsActivePhase returns true while the agent is in the field: any status
// other than the initial one and the two terminals. Location writes are
// accepted only in this phase.
func (s MissionStatus) IsActivePhase() bool {
	return s.IsValid() && s != StatusScheduled && !s.IsTerminal()
}

// statusOrdinal maps each status to its position in the linear flow.
// The three arrival synonyms and "In Transit" share the same ordinal; which
// one is entered on advance depends on the mission's location type.
var statusOrdinal = map[MissionStatus]int{
	StatusScheduled:        0,
	StatusActive:           1,
	StatusArrivedAirport:   2,
	StatusArrivedStation:   2,
	StatusArrivedPort:      2,
	StatusInTransit:        2,
	StatusPassengerMet:     3,
	StatusLuggageCollected: 4,
	StatusComplete:         5,
}

// ArrivalStatusFor returns the arrival-stage status for a location type
func ArrivalStatusFor(lt LocationType) MissionStatus {
	switch lt {
	case LocationTrainStation:
		return StatusArrivedStation
	case LocationPort:
		return StatusArrivedPort
	case LocationAddress:
		return StatusInTransit
	default:
		return StatusArrivedAirport
	}
}

// StatusSequence returns the ordered simple flow for a location type
func StatusSequence(lt LocationType) []MissionStatus {
	return []MissionStatus{
		StatusScheduled,
		StatusActive,
		ArrivalStatusFor(lt),
		StatusPassengerMet,
		StatusLuggageCollected,
		StatusComplete,
	}
}

// NextStatus returns the state immediately following current in the fixed
// ordering for the given location type. ok is false for terminal states and
// for Cancelled, which has no successor.
func NextStatus(current MissionStatus, lt LocationType) (MissionStatus, bool) {
	if current.IsTerminal() {
		return "", false
	}
	ord, known := statusOrdinal[current]
	if !known {
		return "", false
	}
	seq := StatusSequence(lt)
	if ord+1 >= len(seq) {
		return "", false
	}
	return seq[ord+1], true
}
