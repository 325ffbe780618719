package resource

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"resiliencehub/internal/shelter"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNameRequired     = errors.New("resource name is required")
	ErrInvalidQuantity  = errors.New("quantity must be a whole number")
	ErrResourceNotFound = errors.New("resource not found")
	ErrShelterNotFound  = errors.New("shelter not found")
	ErrNotOwner         = errors.New("resource belongs to another shelter")
)

// ShelterFinder resolves the shelter an admin manages.
type ShelterFinder interface {
	FindShelterByAdmin(ctx context.Context, adminID string) (*shelter.Shelter, error)
}

type ResourceService interface {
	List(ctx context.Context, shelterID string) ([]*Resource, error)
	Create(ctx context.Context, adminID string, req *ResourceRequest) (*Resource, error)
	Update(ctx context.Context, adminID, id string, req *ResourceRequest) error
	Delete(ctx context.Context, adminID, id string) error
}

type resourceService struct {
	resourceRepository ResourceRepository
	shelters           ShelterFinder
}

func NewResourceService(repo ResourceRepository, shelters ShelterFinder) ResourceService {
	return &resourceService{
		resourceRepository: repo,
		shelters:           shelters,
	}
}

func (s *resourceService) List(ctx context.Context, shelterID string) ([]*Resource, error) {

	if shelterID == "" {
		return nil, errors.New("shelter_id is required")
	}

	return s.resourceRepository.FindByShelter(ctx, shelterID)
}

func (s *resourceService) Create(ctx context.Context, adminID string, req *ResourceRequest) (*Resource, error) {

	name, quantity, err := validate(req)
	if err != nil {
		return nil, err
	}

	sh, err := s.shelters.FindShelterByAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}

	if sh == nil {
		return nil, ErrShelterNotFound
	}

	now := time.Now()
	res := &Resource{
		ID:          primitive.NewObjectID(),
		ShelterID:   sh.ID.Hex(),
		ShelterName: sh.Name,
		Name:        name,
		Category:    orDefault(req.Category, DefaultCategory),
		Quantity:    quantity,
		Unit:        orDefault(req.Unit, DefaultUnit),
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.resourceRepository.Create(ctx, res); err != nil {
		return nil, err
	}

	return res, nil
}

// Update rewrites the editable fields. shelter_id and shelter_name keep the
// values copied at creation.
func (s *resourceService) Update(ctx context.Context, adminID, id string, req *ResourceRequest) error {

	name, quantity, err := validate(req)
	if err != nil {
		return err
	}

	res, err := s.owned(ctx, adminID, id)
	if err != nil {
		return err
	}

	found, err := s.resourceRepository.Update(ctx, res.ID, bson.M{
		"name":        name,
		"category":    orDefault(req.Category, DefaultCategory),
		"quantity":    quantity,
		"unit":        orDefault(req.Unit, DefaultUnit),
		"description": strings.TrimSpace(req.Description),
	})
	if err != nil {
		return err
	}

	if !found {
		return ErrResourceNotFound
	}

	return nil
}

func (s *resourceService) Delete(ctx context.Context, adminID, id string) error {

	res, err := s.owned(ctx, adminID, id)
	if err != nil {
		return err
	}

	found, err := s.resourceRepository.Delete(ctx, res.ID)
	if err != nil {
		return err
	}

	if !found {
		return ErrResourceNotFound
	}

	return nil
}

// owned loads the resource and checks it belongs to the shelter adminID manages.
func (s *resourceService) owned(ctx context.Context, adminID, id string) (*Resource, error) {

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrResourceNotFound
	}

	res, err := s.resourceRepository.FindByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	if res == nil {
		return nil, ErrResourceNotFound
	}

	sh, err := s.shelters.FindShelterByAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}

	if sh == nil || sh.ID.Hex() != res.ShelterID {
		return nil, ErrNotOwner
	}

	return res, nil
}

func validate(req *ResourceRequest) (string, int, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", 0, ErrNameRequired
	}

	quantity, err := ParseQuantity(req.Quantity)
	if err != nil {
		return "", 0, err
	}

	return name, quantity, nil
}

// ParseQuantity accepts whole numbers only; "12" is 12, "12.5" and "abc" are
// rejected. Negative values pass.
func ParseQuantity(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidQuantity
	}
	return n, nil
}

func orDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}
