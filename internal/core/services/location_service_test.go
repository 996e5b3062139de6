package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"greetops/internal/adapters/persistence/models"
	"greetops/internal/core/domain"
)

type locationFixture struct {
	svc          *LocationService
	missionRepo  *fakeMissionRepo
	locationRepo *fakeLocationRepo
	sink         *recordingSink

	client domain.Actor
	agent  domain.Actor
}

func newLocationFixture(t *testing.T, status string) (*locationFixture, *models.Mission) {
	t.Helper()

	missionRepo := newFakeMissionRepo()
	locationRepo := newFakeLocationRepo()
	sink := &recordingSink{}

	agentID := uint(3)
	mission := &models.Mission{
		ClientID:       2,
		AgentID:        &agentID,
		PassengerName:  "Jean",
		PickupLocation: "T1",
		ServiceType:    "Meet & Greet",
		LocationType:   "Airport",
		Status:         status,
		ScheduledAt:    time.Now(),
	}
	missionRepo.Create(context.Background(), mission)

	return &locationFixture{
		svc:          NewLocationService(locationRepo, missionRepo, sink),
		missionRepo:  missionRepo,
		locationRepo: locationRepo,
		sink:         sink,
		client:       domain.Actor{UserID: 2, Role: domain.RoleClient},
		agent:        domain.Actor{UserID: 3, Role: domain.RoleAgent},
	}, mission
}

func TestRecordRequiresActiveStatus(t *testing.T) {
	t.Parallel()

	inactive := []string{"Scheduled", "Complete", "Cancelled"}
	for _, status := range inactive {
		f, mission := newLocationFixture(t, status)
		if _, err := f.svc.Record(context.Background(), f.agent, mission.ID, &RecordInput{Lat: 48.8566, Lng: 2.3522}); !errors.Is(err, domain.ErrInvalidState) {
			t.Errorf("record in %s: got %v, want ErrInvalidState", status, err)
		}
	}

	active := []string{"Active", "Arrived at Airport", "In Transit", "Passenger Met", "Luggage Collected"}
	for _, status := range active {
		f, mission := newLocationFixture(t, status)
		sample, err := f.svc.Record(context.Background(), f.agent, mission.ID, &RecordInput{Lat: 48.8566, Lng: 2.3522})
		if err != nil {
			t.Errorf("record in %s: %v", status, err)
			continue
		}
		if sample.AgentID != f.agent.UserID {
			t.Errorf("sample agent = %d, want %d", sample.AgentID, f.agent.UserID)
		}
	}
}

func TestRecordAssignsServerTimestamp(t *testing.T) {
	t.Parallel()
	f, mission := newLocationFixture(t, "Active")

	before := time.Now()
	sample, err := f.svc.Record(context.Background(), f.agent, mission.ID, &RecordInput{Lat: 48.8566, Lng: 2.3522})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if sample.Timestamp.Before(before) || sample.Timestamp.After(time.Now()) {
		t.Errorf("timestamp %v not assigned at insert time", sample.Timestamp)
	}
}

func TestRecordOnlyAssignedAgent(t *testing.T) {
	t.Parallel()
	f, mission := newLocationFixture(t, "Active")

	otherAgent := domain.Actor{UserID: 99, Role: domain.RoleAgent}
	if _, err := f.svc.Record(context.Background(), otherAgent, mission.ID, &RecordInput{Lat: 0, Lng: 0}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("unassigned agent: got %v, want ErrForbidden", err)
	}

	// The owning client reads but never writes
	if _, err := f.svc.Record(context.Background(), f.client, mission.ID, &RecordInput{Lat: 0, Lng: 0}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("client write: got %v, want ErrForbidden", err)
	}
}

func TestLatestNilWhenEmpty(t *testing.T) {
	t.Parallel()
	f, mission := newLocationFixture(t, "Active")

	sample, err := f.svc.Latest(context.Background(), f.client, mission.ID)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if sample != nil {
		t.Errorf("expected nil for an empty ledger, got %+v", sample)
	}
}

func TestHistoryAscendingOrder(t *testing.T) {
	t.Parallel()
	f, mission := newLocationFixture(t, "Active")

	coords := []RecordInput{
		{Lat: 48.8566, Lng: 2.3522},
		{Lat: 48.8570, Lng: 2.3530},
		{Lat: 48.8580, Lng: 2.3540},
	}
	for i := range coords {
		if _, err := f.svc.Record(context.Background(), f.agent, mission.ID, &coords[i]); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	history, err := f.svc.History(context.Background(), f.client, mission.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history has %d samples, want 3", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].Timestamp.Before(history[i-1].Timestamp) {
			t.Errorf("history out of order at %d", i)
		}
	}
	if history[0].Lat != 48.8566 || history[2].Lat != 48.8580 {
		t.Error("history not in insertion order")
	}

	latest, err := f.svc.Latest(context.Background(), f.client, mission.ID)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Lat != 48.8580 {
		t.Errorf("latest lat = %v, want 48.8580", latest.Lat)
	}

	if f.sink.locations != 3 {
		t.Errorf("sink saw %d dispatches, want 3", f.sink.locations)
	}
}

func TestActiveMissionsPairsLastLocation(t *testing.T) {
	t.Parallel()
	f, mission := newLocationFixture(t, "Active")

	// A second mission for the same client, still Scheduled: excluded
	scheduled := &models.Mission{
		ClientID:       2,
		PassengerName:  "Marie",
		PickupLocation: "T2",
		ServiceType:    "VIP",
		LocationType:   "Airport",
		Status:         "Scheduled",
		ScheduledAt:    time.Now(),
	}
	f.missionRepo.Create(context.Background(), scheduled)

	f.svc.Record(context.Background(), f.agent, mission.ID, &RecordInput{Lat: 48.8566, Lng: 2.3522})

	active, err := f.svc.ActiveMissions(context.Background(), f.client, f.client.UserID)
	if err != nil {
		t.Fatalf("ActiveMissions: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("got %d active missions, want 1", len(active))
	}
	if active[0].Mission.ID != mission.ID {
		t.Errorf("active mission = #%d, want #%d", active[0].Mission.ID, mission.ID)
	}
	if active[0].LastLocation == nil || active[0].LastLocation.Lat != 48.8566 {
		t.Errorf("last location = %+v, want lat 48.8566", active[0].LastLocation)
	}
}
