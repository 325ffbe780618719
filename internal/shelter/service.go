package shelter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"resiliencehub/internal/models"
	"resiliencehub/internal/user"
	"resiliencehub/pkg/constants"

	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrShelterNotFound = errors.New("shelter not found")
	ErrShelterInactive = errors.New("shelter is not active")
	ErrShelterFull     = errors.New("shelter is at full capacity")
	ErrInvalidCode     = errors.New("invalid check-in code")
	ErrPartialWrite    = errors.New("shelter updated but user profile was not")
	ErrNotShelterAdmin = errors.New("shelter is managed by another admin")
	ErrInvalidShelter  = errors.New("invalid shelter")
)

const defaultQRSize = 256

type ShelterService interface {
	FindShelterByAdmin(ctx context.Context, adminID string) (*Shelter, error)
	FindShelterByID(ctx context.Context, id string) (*Shelter, error)
	FindActiveShelter(ctx context.Context) (*Shelter, error)
	CreateShelter(ctx context.Context, adminID string, req *CreateShelterRequest) (*Shelter, error)
	CheckIn(ctx context.Context, shelterID, userID string, profile *user.Profile) (*Shelter, error)
	CheckInWithCode(ctx context.Context, code, userID string, profile *user.Profile) (*Shelter, error)
	CheckOut(ctx context.Context, shelterID, userID string) (*Shelter, error)
	ToggleActive(ctx context.Context, adminID, shelterID string) (*Shelter, error)
	ListOccupants(ctx context.Context, adminID, shelterID string) ([]*OccupantDetail, error)
	QRCode(ctx context.Context, adminID, shelterID string, size int) ([]byte, error)
	AuditOccupancy(ctx context.Context) ([]Drift, error)
}

type shelterService struct {
	shelterRepository ShelterRepository
	userRepository    user.UserRepository
	logger            *zap.SugaredLogger
}

func NewShelterService(repo ShelterRepository, users user.UserRepository, logger *zap.SugaredLogger) ShelterService {
	return &shelterService{
		shelterRepository: repo,
		userRepository:    users,
		logger:            logger,
	}
}

// FindShelterByAdmin returns nil without error when the admin has no shelter.
func (s *shelterService) FindShelterByAdmin(ctx context.Context, adminID string) (*Shelter, error) {

	if adminID == "" {
		return nil, errors.New("admin_id is required")
	}

	return s.shelterRepository.FindByAdmin(ctx, adminID)
}

func (s *shelterService) FindShelterByID(ctx context.Context, id string) (*Shelter, error) {

	objID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, ErrShelterNotFound
	}

	shelter, err := s.shelterRepository.FindByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	if shelter == nil {
		return nil, ErrShelterNotFound
	}

	return shelter, nil
}

func (s *shelterService) FindActiveShelter(ctx context.Context) (*Shelter, error) {
	return s.shelterRepository.FindFirstActive(ctx)
}

func (s *shelterService) CreateShelter(ctx context.Context, adminID string, req *CreateShelterRequest) (*Shelter, error) {

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidShelter)
	}

	if req.Capacity < 0 {
		return nil, fmt.Errorf("%w: capacity must not be negative", ErrInvalidShelter)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now()
	shelter := &Shelter{
		ID:               primitive.NewObjectID(),
		Name:             name,
		Address:          strings.TrimSpace(req.Address),
		Active:           active,
		Capacity:         req.Capacity,
		CurrentOccupancy: 0,
		AdminID:          adminID,
		Occupants:        []models.CheckInRecord{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.shelterRepository.Create(ctx, shelter); err != nil {
		return nil, err
	}

	return shelter, nil
}

// CheckIn admits userID to the shelter. The shelter write and the user write
// are separate; when the second fails the shelter keeps the occupant and the
// returned error wraps ErrPartialWrite.
func (s *shelterService) CheckIn(ctx context.Context, shelterID, userID string, profile *user.Profile) (*Shelter, error) {

	if userID == "" {
		return nil, errors.New("user_id is required")
	}

	shelter, err := s.FindShelterByID(ctx, shelterID)
	if err != nil {
		return nil, err
	}

	if err := admissionError(shelter); err != nil {
		return nil, err
	}

	now := time.Now()
	occupant := models.CheckInRecord{
		UserID:      userID,
		UserName:    profile.DisplayName(),
		UserEmail:   profileEmail(profile),
		Status:      constants.StatusCheckedIn,
		CheckInTime: now,
	}

	ok, err := s.shelterRepository.AddOccupant(ctx, shelter.ID, occupant)
	if err != nil {
		s.logger.Errorw("Failed to add occupant", "shelter_id", shelter.ID.Hex(), "user_id", userID, "error", err)
		return nil, err
	}

	if !ok {
		// Lost a race with another check-in or a toggle; report what the store holds now.
		latest, err := s.FindShelterByID(ctx, shelterID)
		if err != nil {
			return nil, err
		}
		if err := admissionError(latest); err != nil {
			return nil, err
		}
		return nil, ErrShelterFull
	}

	shelter.Occupants = append(shelter.Occupants, occupant)
	shelter.CurrentOccupancy++
	shelter.UpdatedAt = now

	record := models.CheckInRecord{
		ShelterID:   shelter.ID.Hex(),
		ShelterName: shelter.Name,
		Status:      constants.StatusCheckedIn,
		CheckInTime: now,
	}
	current := &models.CurrentShelter{
		ShelterID:   shelter.ID.Hex(),
		ShelterName: shelter.Name,
		CheckInTime: now,
	}

	if err := s.userRepository.RecordCheckIn(ctx, userID, record, current); err != nil {
		s.logger.Errorw("Checked in but user history not updated", "shelter_id", shelter.ID.Hex(), "user_id", userID, "error", err)
		return shelter, fmt.Errorf("%w: %w", ErrPartialWrite, err)
	}

	return shelter, nil
}

func (s *shelterService) CheckInWithCode(ctx context.Context, code, userID string, profile *user.Profile) (*Shelter, error) {

	shelterID, err := ParseCheckInCode(code)
	if err != nil {
		return nil, err
	}

	return s.CheckIn(ctx, shelterID, userID, profile)
}

// CheckOut marks every occupant entry of userID as checked out and lowers the
// counter by one. The counter is written from the value read, without a
// floor, and is lowered even when userID is not an occupant.
func (s *shelterService) CheckOut(ctx context.Context, shelterID, userID string) (*Shelter, error) {

	if userID == "" {
		return nil, errors.New("user_id is required")
	}

	shelter, err := s.FindShelterByID(ctx, shelterID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var checkInTime time.Time

	occupants := make([]models.CheckInRecord, len(shelter.Occupants))
	for i, o := range shelter.Occupants {
		if o.UserID == userID {
			checkInTime = o.CheckInTime
			o.Status = constants.StatusCheckedOut
			out := now
			o.CheckOutTime = &out
		}
		occupants[i] = o
	}
	occupancy := shelter.CurrentOccupancy - 1

	if err := s.shelterRepository.ReplaceOccupants(ctx, shelter.ID, occupants, occupancy); err != nil {
		s.logger.Errorw("Failed to check out occupant", "shelter_id", shelter.ID.Hex(), "user_id", userID, "error", err)
		return nil, err
	}

	shelter.Occupants = occupants
	shelter.CurrentOccupancy = occupancy
	shelter.UpdatedAt = now

	out := now
	record := models.CheckInRecord{
		ShelterID:    shelter.ID.Hex(),
		ShelterName:  shelter.Name,
		Status:       constants.StatusCheckedOut,
		CheckInTime:  checkInTime,
		CheckOutTime: &out,
	}

	if err := s.userRepository.RecordCheckOut(ctx, userID, record); err != nil {
		s.logger.Errorw("Checked out but user history not updated", "shelter_id", shelter.ID.Hex(), "user_id", userID, "error", err)
		return shelter, fmt.Errorf("%w: %w", ErrPartialWrite, err)
	}

	return shelter, nil
}

func (s *shelterService) ToggleActive(ctx context.Context, adminID, shelterID string) (*Shelter, error) {

	shelter, err := s.ownedShelter(ctx, adminID, shelterID)
	if err != nil {
		return nil, err
	}

	shelter.Active = !shelter.Active

	if err := s.shelterRepository.SetActive(ctx, shelter.ID, shelter.Active); err != nil {
		return nil, err
	}
	shelter.UpdatedAt = time.Now()

	return shelter, nil
}

// ListOccupants returns the checked-in occupants with their profiles. An
// occupant without a profile is listed with a nil profile.
func (s *shelterService) ListOccupants(ctx context.Context, adminID, shelterID string) ([]*OccupantDetail, error) {

	shelter, err := s.ownedShelter(ctx, adminID, shelterID)
	if err != nil {
		return nil, err
	}

	var uids []string
	for _, o := range shelter.Occupants {
		if o.Status == constants.StatusCheckedIn {
			uids = append(uids, o.UserID)
		}
	}

	profiles, err := s.userRepository.FindByIDs(ctx, uids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*user.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.UID] = p
	}

	details := make([]*OccupantDetail, 0, len(uids))
	for _, o := range shelter.Occupants {
		if o.Status != constants.StatusCheckedIn {
			continue
		}
		details = append(details, &OccupantDetail{
			Occupant: o,
			Profile:  byID[o.UserID],
		})
	}

	return details, nil
}

// QRCode renders the PNG code that CheckInWithCode accepts for this shelter.
func (s *shelterService) QRCode(ctx context.Context, adminID, shelterID string, size int) ([]byte, error) {

	shelter, err := s.ownedShelter(ctx, adminID, shelterID)
	if err != nil {
		return nil, err
	}

	if size <= 0 {
		size = defaultQRSize
	}

	payload, err := json.Marshal(map[string]string{"shelterId": shelter.ID.Hex()})
	if err != nil {
		return nil, err
	}

	return qrcode.Encode(string(payload), qrcode.Medium, size)
}

// ownedShelter loads the shelter and rejects admins other than the one who
// created it.
func (s *shelterService) ownedShelter(ctx context.Context, adminID, shelterID string) (*Shelter, error) {

	shelter, err := s.FindShelterByID(ctx, shelterID)
	if err != nil {
		return nil, err
	}

	if adminID == "" || shelter.AdminID != adminID {
		return nil, ErrNotShelterAdmin
	}

	return shelter, nil
}

// AuditOccupancy logs shelters whose counter disagrees with their checked-in
// occupants. Neither value is corrected.
func (s *shelterService) AuditOccupancy(ctx context.Context) ([]Drift, error) {

	shelters, err := s.shelterRepository.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var drifts []Drift
	for _, sh := range shelters {
		checkedIn := sh.CheckedInCount()
		if checkedIn == sh.CurrentOccupancy {
			continue
		}
		d := Drift{
			ShelterID: sh.ID.Hex(),
			Name:      sh.Name,
			Counter:   sh.CurrentOccupancy,
			CheckedIn: checkedIn,
		}
		s.logger.Warnw("Occupancy counter drift", "shelter_id", d.ShelterID, "name", d.Name, "counter", d.Counter, "checked_in", d.CheckedIn)
		drifts = append(drifts, d)
	}

	s.logger.Infow("Occupancy audit finished", "shelters", len(shelters), "drifted", len(drifts))

	return drifts, nil
}

// ParseCheckInCode extracts a shelter id from a scanned code. A JSON object
// is read for shelterId, shelter_id or id and any other JSON value is invalid.
// Text that is not JSON is taken as the id.
func ParseCheckInCode(payload string) (string, error) {

	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", ErrInvalidCode
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return payload, nil
	}

	obj, ok := decoded.(map[string]interface{})
	if !ok {
		return "", ErrInvalidCode
	}

	for _, key := range []string{"shelterId", "shelter_id", "id"} {
		if v, ok := obj[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), nil
		}
	}

	return "", ErrInvalidCode
}

// admissionError checks inactive before full.
func admissionError(shelter *Shelter) error {
	if !shelter.Active {
		return ErrShelterInactive
	}
	if shelter.IsFull() {
		return ErrShelterFull
	}
	return nil
}

func profileEmail(profile *user.Profile) string {
	if profile == nil {
		return ""
	}
	return profile.Email
}
