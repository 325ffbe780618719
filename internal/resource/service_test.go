package resource

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"resiliencehub/internal/shelter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeResources struct {
	mu        sync.Mutex
	resources map[primitive.ObjectID]*Resource
	writes    int
}

func newFakeResources() *fakeResources {
	return &fakeResources{resources: make(map[primitive.ObjectID]*Resource)}
}

func (f *fakeResources) Create(_ context.Context, r *Resource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	cp := *r
	f.resources[r.ID] = &cp
	return nil
}

func (f *fakeResources) FindByShelter(_ context.Context, shelterID string) ([]*Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*Resource{}
	for _, r := range f.resources {
		if r.ShelterID == shelterID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeResources) FindByID(_ context.Context, id primitive.ObjectID) (*Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resources[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeResources) Update(_ context.Context, id primitive.ObjectID, fields bson.M) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	r, ok := f.resources[id]
	if !ok {
		return false, nil
	}
	r.Name = fields["name"].(string)
	r.Category = fields["category"].(string)
	r.Quantity = fields["quantity"].(int)
	r.Unit = fields["unit"].(string)
	r.Description = fields["description"].(string)
	return true, nil
}

func (f *fakeResources) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if _, ok := f.resources[id]; !ok {
		return false, nil
	}
	delete(f.resources, id)
	return true, nil
}

type fakeFinder map[string]*shelter.Shelter

func (f fakeFinder) FindShelterByAdmin(_ context.Context, adminID string) (*shelter.Shelter, error) {
	if adminID == "broken" {
		return nil, errors.New("store unavailable")
	}
	return f[adminID], nil
}

var (
	testShelter  = &shelter.Shelter{ID: primitive.NewObjectID(), Name: "Escola Municipal", AdminID: "admin-1"}
	otherShelter = &shelter.Shelter{ID: primitive.NewObjectID(), Name: "Ginásio", AdminID: "admin-2"}
)

func newTestService() (ResourceService, *fakeResources) {
	repo := newFakeResources()
	return NewResourceService(repo, fakeFinder{"admin-1": testShelter, "admin-2": otherShelter}), repo
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"12", 12, false},
		{" 7 ", 7, false},
		{"0", 0, false},
		{"-3", -3, false},
		{"abc", 0, true},
		{"12.5", 0, true},
		{"", 0, true},
		{"12abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseQuantity(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidQuantity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateResource(t *testing.T) {
	svc, repo := newTestService()

	res, err := svc.Create(context.Background(), "admin-1", &ResourceRequest{Name: " Arroz ", Quantity: "12"})
	require.NoError(t, err)

	assert.Equal(t, "Arroz", res.Name)
	assert.Equal(t, 12, res.Quantity)
	assert.Equal(t, DefaultCategory, res.Category)
	assert.Equal(t, DefaultUnit, res.Unit)
	assert.Equal(t, testShelter.ID.Hex(), res.ShelterID)
	assert.Equal(t, "Escola Municipal", res.ShelterName)

	stored, err := repo.FindByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, stored.Quantity)
}

func TestCreateResourceValidationBeforeWrite(t *testing.T) {
	tests := []struct {
		name    string
		adminID string
		req     ResourceRequest
		want    error
	}{
		{"quantity abc", "admin-1", ResourceRequest{Name: "Água", Quantity: "abc"}, ErrInvalidQuantity},
		{"empty name", "admin-1", ResourceRequest{Name: "  ", Quantity: "3"}, ErrNameRequired},
		{"no shelter", "admin-2", ResourceRequest{Name: "Água", Quantity: "3"}, ErrShelterNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService()

			_, err := svc.Create(context.Background(), tt.adminID, &tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, repo.writes)
		})
	}

	svc, _ := newTestService()
	_, err := svc.Create(context.Background(), "broken", &ResourceRequest{Name: "Água", Quantity: "3"})
	assert.Error(t, err)
}

func TestUpdateAndDeleteResource(t *testing.T) {
	svc, repo := newTestService()

	res, err := svc.Create(context.Background(), "admin-1", &ResourceRequest{Name: "Arroz", Quantity: "12", Unit: "kg"})
	require.NoError(t, err)

	err = svc.Update(context.Background(), "admin-1", res.ID.Hex(), &ResourceRequest{Name: "Arroz", Quantity: "x"})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	err = svc.Update(context.Background(), "admin-1", res.ID.Hex(), &ResourceRequest{Name: "Arroz integral", Category: "food", Quantity: "20", Unit: "kg"})
	require.NoError(t, err)

	stored, _ := repo.FindByID(context.Background(), res.ID)
	assert.Equal(t, "Arroz integral", stored.Name)
	assert.Equal(t, 20, stored.Quantity)
	assert.Equal(t, "Escola Municipal", stored.ShelterName)

	err = svc.Update(context.Background(), "admin-1", primitive.NewObjectID().Hex(), &ResourceRequest{Name: "x", Quantity: "1"})
	assert.ErrorIs(t, err, ErrResourceNotFound)

	require.NoError(t, svc.Delete(context.Background(), "admin-1", res.ID.Hex()))
	assert.ErrorIs(t, svc.Delete(context.Background(), "admin-1", res.ID.Hex()), ErrResourceNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), "admin-1", "bad"), ErrResourceNotFound)
}

func TestUpdateAndDeleteRequireOwningAdmin(t *testing.T) {
	svc, repo := newTestService()

	res, err := svc.Create(context.Background(), "admin-1", &ResourceRequest{Name: "Arroz", Quantity: "12"})
	require.NoError(t, err)
	writes := repo.writes

	for _, adminID := range []string{"admin-2", "admin-3"} {
		err = svc.Update(context.Background(), adminID, res.ID.Hex(), &ResourceRequest{Name: "Feijão", Quantity: "1"})
		assert.ErrorIs(t, err, ErrNotOwner)

		err = svc.Delete(context.Background(), adminID, res.ID.Hex())
		assert.ErrorIs(t, err, ErrNotOwner)
	}

	assert.Equal(t, writes, repo.writes)
	stored, _ := repo.FindByID(context.Background(), res.ID)
	require.NotNil(t, stored)
	assert.Equal(t, "Arroz", stored.Name)

	assert.Error(t, svc.Delete(context.Background(), "broken", res.ID.Hex()))
}

func TestListResourcesNewestFirst(t *testing.T) {
	svc, repo := newTestService()

	older := &Resource{ID: primitive.NewObjectID(), ShelterID: "s1", Name: "old", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &Resource{ID: primitive.NewObjectID(), ShelterID: "s1", Name: "new", CreatedAt: time.Now()}
	other := &Resource{ID: primitive.NewObjectID(), ShelterID: "s2", Name: "elsewhere", CreatedAt: time.Now()}
	for _, r := range []*Resource{older, newer, other} {
		require.NoError(t, repo.Create(context.Background(), r))
	}

	got, err := svc.List(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].Name)
	assert.Equal(t, "old", got[1].Name)

	_, err = svc.List(context.Background(), "")
	assert.Error(t, err)
}

func TestUpdateDocumentSetsTimestamp(t *testing.T) {
	now := time.Now()

	doc := updateDocument(bson.M{"quantity": 3}, now)

	assert.Equal(t, bson.M{"$set": bson.M{"quantity": 3, "updated_at": now}}, doc)
}
