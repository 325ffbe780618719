package alert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resiliencehub/internal/shelter"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrTitleRequired       = errors.New("title is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrInvalidSeverity     = errors.New("severity must be low, medium or high")
	ErrInvalidFilter       = errors.New("filter must be all, active or inactive")
)

// ShelterFinder resolves the shelter an admin manages.
type ShelterFinder interface {
	FindShelterByAdmin(ctx context.Context, adminID string) (*shelter.Shelter, error)
}

type AlertService interface {
	List(ctx context.Context, filter string, limit int64) ([]*Alert, error)
	Create(ctx context.Context, creator Creator, req *CreateAlertRequest) (*Alert, error)
}

type alertService struct {
	alertRepository AlertRepository
	shelters        ShelterFinder
	notifiers       []Notifier
	logger          *zap.SugaredLogger
}

func NewAlertService(repo AlertRepository, shelters ShelterFinder, logger *zap.SugaredLogger, notifiers ...Notifier) AlertService {
	return &alertService{
		alertRepository: repo,
		shelters:        shelters,
		notifiers:       notifiers,
		logger:          logger,
	}
}

func (s *alertService) List(ctx context.Context, filter string, limit int64) ([]*Alert, error) {

	if limit < 0 {
		return nil, errors.New("limit must not be negative")
	}

	if _, err := listFilter(filter); err != nil {
		return nil, err
	}

	return s.alertRepository.List(ctx, filter, limit)
}

// Create stores a new active alert and hands it to the notifiers. Delivery
// failures are logged and do not fail the call.
func (s *alertService) Create(ctx context.Context, creator Creator, req *CreateAlertRequest) (*Alert, error) {

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}

	severity := strings.TrimSpace(req.Severity)
	switch severity {
	case "":
		severity = SeverityMedium
	case SeverityLow, SeverityMedium, SeverityHigh:
	default:
		return nil, ErrInvalidSeverity
	}

	sh, err := s.shelters.FindShelterByAdmin(ctx, creator.UID)
	if err != nil {
		s.logger.Warnw("Creating alert without shelter", "admin_id", creator.UID, "error", err)
		sh = nil
	}

	now := time.Now()
	alert := &Alert{
		ID:            primitive.NewObjectID(),
		Title:         title,
		Description:   description,
		Type:          strings.TrimSpace(req.Type),
		Severity:      severity,
		Active:        true,
		Location:      resolveLocation(req.Location, sh),
		CreatedBy:     creator.UID,
		CreatedByName: creator.Name,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if sh != nil {
		alert.ShelterID = sh.ID.Hex()
		alert.ShelterName = sh.Name
	}

	if err := s.alertRepository.Create(ctx, alert); err != nil {
		return nil, fmt.Errorf("save alert: %w", err)
	}

	for _, n := range s.notifiers {
		if err := n.Notify(ctx, alert); err != nil {
			s.logger.Errorw("Failed to deliver alert", "alert_id", alert.ID.Hex(), "notifier", fmt.Sprintf("%T", n), "error", err)
		}
	}

	return alert, nil
}

func resolveLocation(location string, sh *shelter.Shelter) string {
	if l := strings.TrimSpace(location); l != "" {
		return l
	}
	if sh != nil && strings.TrimSpace(sh.Address) != "" {
		return sh.Address
	}
	return LocationNotSpecified
}
