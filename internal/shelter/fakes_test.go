package shelter

import (
	"context"
	"sort"
	"sync"

	"resiliencehub/internal/models"
	"resiliencehub/internal/user"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeShelters struct {
	mu       sync.Mutex
	shelters map[primitive.ObjectID]*Shelter
	addErr   error
}

func newFakeShelters(shelters ...*Shelter) *fakeShelters {
	f := &fakeShelters{shelters: make(map[primitive.ObjectID]*Shelter)}
	for _, s := range shelters {
		f.shelters[s.ID] = s
	}
	return f
}

func clone(s *Shelter) *Shelter {
	cp := *s
	cp.Occupants = append([]models.CheckInRecord(nil), s.Occupants...)
	return &cp
}

func (f *fakeShelters) get(id primitive.ObjectID) *Shelter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return clone(f.shelters[id])
}

func (f *fakeShelters) Create(_ context.Context, s *Shelter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shelters[s.ID] = clone(s)
	return nil
}

func (f *fakeShelters) FindByID(_ context.Context, id primitive.ObjectID) (*Shelter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.shelters[id]
	if !ok {
		return nil, nil
	}
	return clone(s), nil
}

func (f *fakeShelters) sorted() []*Shelter {
	out := make([]*Shelter, 0, len(f.shelters))
	for _, s := range f.shelters {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (f *fakeShelters) FindByAdmin(_ context.Context, adminID string) (*Shelter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sorted() {
		if s.AdminID == adminID {
			return clone(s), nil
		}
	}
	return nil, nil
}

func (f *fakeShelters) FindFirstActive(_ context.Context) (*Shelter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sorted() {
		if s.Active {
			return clone(s), nil
		}
	}
	return nil, nil
}

func (f *fakeShelters) FindAll(_ context.Context) ([]*Shelter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Shelter
	for _, s := range f.sorted() {
		out = append(out, clone(s))
	}
	return out, nil
}

func (f *fakeShelters) AddOccupant(_ context.Context, id primitive.ObjectID, occupant models.CheckInRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return false, f.addErr
	}
	s, ok := f.shelters[id]
	if !ok || !s.Active || s.CurrentOccupancy >= s.Capacity {
		return false, nil
	}
	s.Occupants = append(s.Occupants, occupant)
	s.CurrentOccupancy++
	return true, nil
}

func (f *fakeShelters) ReplaceOccupants(_ context.Context, id primitive.ObjectID, occupants []models.CheckInRecord, occupancy int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.shelters[id]
	if !ok {
		return nil
	}
	s.Occupants = append([]models.CheckInRecord(nil), occupants...)
	s.CurrentOccupancy = occupancy
	return nil
}

func (f *fakeShelters) SetActive(_ context.Context, id primitive.ObjectID, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.shelters[id]; ok {
		s.Active = active
	}
	return nil
}

type fakeUsers struct {
	mu        sync.Mutex
	profiles  map[string]*user.Profile
	recordErr error
}

func newFakeUsers(profiles ...*user.Profile) *fakeUsers {
	f := &fakeUsers{profiles: make(map[string]*user.Profile)}
	for _, p := range profiles {
		f.profiles[p.UID] = p
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, p *user.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.UID] = p
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, uid string) (*user.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[uid]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeUsers) FindByIDs(ctx context.Context, uids []string) ([]*user.Profile, error) {
	var out []*user.Profile
	for _, uid := range uids {
		p, _ := f.FindByID(ctx, uid)
		if p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeUsers) Merge(context.Context, string, map[string]interface{}) error {
	return nil
}

func (f *fakeUsers) RecordCheckIn(_ context.Context, uid string, record models.CheckInRecord, current *models.CurrentShelter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return f.recordErr
	}
	p, ok := f.profiles[uid]
	if !ok {
		return user.ErrProfileNotFound
	}
	p.CheckInHistory = append(p.CheckInHistory, record)
	p.CurrentShelter = current
	return nil
}

func (f *fakeUsers) RecordCheckOut(ctx context.Context, uid string, record models.CheckInRecord) error {
	return f.RecordCheckIn(ctx, uid, record, nil)
}
