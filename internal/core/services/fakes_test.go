package services

import (
	"context"
	"sort"
	"time"

	"greetops/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// In-memory repository fakes. The mission fake reproduces the transactional
// contract of UpdateStatusWithEvent: the status patch and the event append
// succeed or fail together.

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User), nextID: 1}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	for _, user := range r.users {
		if user.ExternalID == externalID {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	all := r.sorted()
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role string) ([]*models.User, error) {
	var out []*models.User
	for _, user := range r.sorted() {
		if user.Role == role {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) sorted() []*models.User {
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeMissionRepo struct {
	missions    map[uint]*models.Mission
	events      []*models.MissionEvent
	attachments []*models.MissionAttachment
	nextID      uint

	failUpdate bool // force UpdateStatusWithEvent to fail atomically
}

func newFakeMissionRepo() *fakeMissionRepo {
	return &fakeMissionRepo{missions: make(map[uint]*models.Mission), nextID: 1}
}

func (r *fakeMissionRepo) Create(ctx context.Context, mission *models.Mission) error {
	mission.ID = r.nextID
	r.nextID++
	r.missions[mission.ID] = mission
	return nil
}

func (r *fakeMissionRepo) GetByID(ctx context.Context, id uint) (*models.Mission, error) {
	mission, ok := r.missions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *mission
	return &copied, nil
}

func (r *fakeMissionRepo) ListByClient(ctx context.Context, clientID uint, offset, limit int) ([]*models.Mission, int64, error) {
	var out []*models.Mission
	for _, m := range r.missions {
		if m.ClientID == clientID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeMissionRepo) ListByAgent(ctx context.Context, agentID uint) ([]*models.Mission, error) {
	var out []*models.Mission
	for _, m := range r.missions {
		if m.AgentID != nil && *m.AgentID == agentID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMissionRepo) ListActiveByClient(ctx context.Context, clientID uint) ([]*models.Mission, error) {
	var out []*models.Mission
	for _, m := range r.missions {
		if m.ClientID != clientID {
			continue
		}
		switch m.Status {
		case "Scheduled", "Complete", "Cancelled":
		default:
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMissionRepo) UpdateStatusWithEvent(ctx context.Context, missionID uint, status string, event *models.MissionEvent) error {
	if r.failUpdate {
		return gorm.ErrInvalidTransaction
	}
	mission, ok := r.missions[missionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	mission.Status = status
	mission.UpdatedAt = time.Now()
	r.events = append(r.events, event)
	return nil
}

func (r *fakeMissionRepo) AssignAgent(ctx context.Context, missionID, agentID uint) error {
	mission, ok := r.missions[missionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	mission.AgentID = &agentID
	return nil
}

func (r *fakeMissionRepo) AddAttachment(ctx context.Context, att *models.MissionAttachment) error {
	att.ID = uint(len(r.attachments) + 1)
	r.attachments = append(r.attachments, att)
	return nil
}

func (r *fakeMissionRepo) ListAttachments(ctx context.Context, missionID uint) ([]*models.MissionAttachment, error) {
	var out []*models.MissionAttachment
	for _, a := range r.attachments {
		if a.MissionID == missionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeMissionRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	for _, m := range r.missions {
		if m.Status == status {
			n++
		}
	}
	return n, nil
}

// eventsFor returns the recorded status-change trail for one mission
func (r *fakeMissionRepo) eventsFor(missionID uint) []*models.MissionEvent {
	var out []*models.MissionEvent
	for _, e := range r.events {
		if e.MissionID == missionID {
			out = append(out, e)
		}
	}
	return out
}

type fakeLocationRepo struct {
	logs   []*models.LocationLog
	nextID uint
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{nextID: 1}
}

func (r *fakeLocationRepo) Create(ctx context.Context, log *models.LocationLog) error {
	log.ID = r.nextID
	r.nextID++
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeLocationRepo) Latest(ctx context.Context, missionID uint) (*models.LocationLog, error) {
	var latest *models.LocationLog
	for _, l := range r.logs {
		if l.MissionID != missionID {
			continue
		}
		if latest == nil || l.Timestamp.After(latest.Timestamp) || (l.Timestamp.Equal(latest.Timestamp) && l.ID > latest.ID) {
			latest = l
		}
	}
	return latest, nil
}

func (r *fakeLocationRepo) History(ctx context.Context, missionID uint) ([]*models.LocationLog, error) {
	var out []*models.LocationLog
	for _, l := range r.logs {
		if l.MissionID == missionID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

type fakeRateCardRepo struct {
	cards  map[uint]*models.RateCard
	nextID uint
}

func newFakeRateCardRepo() *fakeRateCardRepo {
	return &fakeRateCardRepo{cards: make(map[uint]*models.RateCard), nextID: 1}
}

func (r *fakeRateCardRepo) Create(ctx context.Context, card *models.RateCard) error {
	card.ID = r.nextID
	r.nextID++
	r.cards[card.ID] = card
	return nil
}

func (r *fakeRateCardRepo) GetByID(ctx context.Context, id uint) (*models.RateCard, error) {
	card, ok := r.cards[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return card, nil
}

func (r *fakeRateCardRepo) Update(ctx context.Context, card *models.RateCard) error {
	if _, ok := r.cards[card.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.cards[card.ID] = card
	return nil
}

func (r *fakeRateCardRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.cards[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.cards, id)
	return nil
}

func (r *fakeRateCardRepo) List(ctx context.Context) ([]*models.RateCard, error) {
	return r.sorted(), nil
}

func (r *fakeRateCardRepo) ListDefaults(ctx context.Context) ([]*models.RateCard, error) {
	var out []*models.RateCard
	for _, c := range r.sorted() {
		if c.ClientID == nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeRateCardRepo) ListByClient(ctx context.Context, clientID uint) ([]*models.RateCard, error) {
	var out []*models.RateCard
	for _, c := range r.sorted() {
		if c.ClientID != nil && *c.ClientID == clientID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeRateCardRepo) FindActive(ctx context.Context, clientID *uint, serviceType, locationType string) (*models.RateCard, error) {
	for _, c := range r.sorted() {
		if !c.IsActive || c.ServiceType != serviceType || c.LocationType != locationType {
			continue
		}
		if clientID == nil && c.ClientID == nil {
			return c, nil
		}
		if clientID != nil && c.ClientID != nil && *c.ClientID == *clientID {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeRateCardRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.cards)), nil
}

func (r *fakeRateCardRepo) sorted() []*models.RateCard {
	out := make([]*models.RateCard, 0, len(r.cards))
	for _, c := range r.cards {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// recordingSink captures sink notifications for assertions
type recordingSink struct {
	statusChanges []string
	locations     int
}

func (s *recordingSink) StatusChanged(mission *models.Mission, previousStatus, newStatus string, actorID uint) {
	s.statusChanges = append(s.statusChanges, previousStatus+" -> "+newStatus)
}

func (s *recordingSink) LocationDispatched(mission *models.Mission, sample *models.LocationLog) {
	s.locations++
}

func intPtr(i int) *int             { return &i }
func int64Ptr(i int64) *int64       { return &i }
func uintPtr(u uint) *uint          { return &u }
func float64Ptr(f float64) *float64 { return &f }
