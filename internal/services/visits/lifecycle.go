package visits

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"fieldline/internal/database/models"
	"fieldline/internal/domain"
)

// Visit creation modes. "quick" logs an ad-hoc visit that already
// happened; it is created terminal with startedAt == completedAt.
const (
	ModeScheduled = "scheduled"
	ModeQuick     = "quick"
)

type Repository interface {
	CreateVisit(ctx context.Context, visit *models.Visit) error
	VisitByID(ctx context.Context, tenantID, id int64) (*models.Visit, error)
	// TransitionStart flips planned → in_progress guarded on the prior
	// status. Returns false when the guard did not match.
	TransitionStart(ctx context.Context, tenantID, id int64, startedAt time.Time, lat, lon *float64) (bool, error)
	// TransitionComplete flips in_progress → completed guarded on the
	// prior status.
	TransitionComplete(ctx context.Context, tenantID, id int64, outcome models.VisitOutcome, notes *string, photos []string, completedAt time.Time, lat, lon *float64) (bool, error)
	// TransitionCancel flips planned or in_progress → cancelled.
	TransitionCancel(ctx context.Context, tenantID, id int64) (bool, error)
	Visits(ctx context.Context, tenantID int64, filter Filter) ([]models.Visit, int64, error)
}

type Filter struct {
	SalesRepID *int64
	CustomerID *int64
	Status     *models.VisitStatus
	Date       *time.Time
	Page       int
	PageSize   int
}

type CreateInput struct {
	CustomerID   int64
	Mode         string
	PlannedDate  *string // YYYY-MM-DD, parsed here so error precedence stays in one place
	PlannedTime  *string
	Outcome      *models.VisitOutcome
	OutcomeNotes *string
	Photos       []string
	Lat          *float64
	Lon          *float64
}

type Lifecycle struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
}

func NewLifecycle(repo Repository, logger zerolog.Logger) *Lifecycle {
	return &Lifecycle{
		repo:   repo,
		logger: logger.With().Str("service", "visits").Logger(),
		now:    time.Now,
	}
}

// Create validates in a fixed precedence so callers see deterministic
// errors: enum values first, then required fields, then date ranges.
func (l *Lifecycle) Create(ctx context.Context, tenantID, salesRepID int64, in CreateInput) (*models.Visit, error) {
	if in.Mode != ModeScheduled && in.Mode != ModeQuick {
		return nil, domain.NewError(domain.CodeInvalidMode,
			fmt.Sprintf("unknown visit mode %q", in.Mode))
	}
	if in.Outcome != nil && !models.ValidVisitOutcome(*in.Outcome) {
		return nil, domain.NewError(domain.CodeInvalidOutcome,
			fmt.Sprintf("unknown visit outcome %q", *in.Outcome))
	}

	switch in.Mode {
	case ModeScheduled:
		if in.PlannedDate == nil {
			return nil, domain.NewError(domain.CodeMissingRequiredField, "plannedDate is required for scheduled visits")
		}
	case ModeQuick:
		if in.Outcome == nil {
			return nil, domain.NewError(domain.CodeMissingRequiredField, "outcome is required for quick visits")
		}
	}

	now := l.now()

	var plannedDate *time.Time
	if in.Mode == ModeScheduled {
		d, err := time.Parse("2006-01-02", *in.PlannedDate)
		if err != nil {
			return nil, domain.NewError(domain.CodeInvalidDate, "plannedDate must be YYYY-MM-DD")
		}
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if d.Before(today) {
			return nil, domain.NewError(domain.CodeInvalidDate, "plannedDate must not be in the past")
		}
		plannedDate = &d
	}

	visit := &models.Visit{
		TenantID:   tenantID,
		CustomerID: in.CustomerID,
		SalesRepID: salesRepID,
	}

	switch in.Mode {
	case ModeScheduled:
		visit.Status = models.VisitPlanned
		visit.VisitType = models.VisitScheduled
		visit.PlannedDate = plannedDate
		visit.PlannedTime = in.PlannedTime
	case ModeQuick:
		visit.Status = models.VisitCompleted
		visit.VisitType = models.VisitAdHoc
		visit.StartedAt = &now
		visit.CompletedAt = &now
		visit.Outcome = in.Outcome
		visit.OutcomeNotes = in.OutcomeNotes
		visit.Photos = in.Photos
		visit.StartLat = in.Lat
		visit.StartLon = in.Lon
		visit.EndLat = in.Lat
		visit.EndLon = in.Lon
	}

	if err := l.repo.CreateVisit(ctx, visit); err != nil {
		return nil, err
	}

	l.logger.Info().
		Int64("visit_id", visit.ID).
		Str("mode", in.Mode).
		Msg("visit created")
	return visit, nil
}

// Start is legal only from planned. A concurrent duplicate submission
// loses the status guard and fails instead of double-starting.
func (l *Lifecycle) Start(ctx context.Context, tenantID, visitID int64, lat, lon *float64) (*models.Visit, error) {
	ok, err := l.repo.TransitionStart(ctx, tenantID, visitID, l.now(), lat, lon)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, l.transitionError(ctx, tenantID, visitID, models.VisitInProgress)
	}
	return l.reload(ctx, tenantID, visitID)
}

// Complete is legal only from in_progress. The outcome enum is checked
// before the transition so invalid input never consumes the guard.
func (l *Lifecycle) Complete(ctx context.Context, tenantID, visitID int64, outcome models.VisitOutcome, notes *string, photos []string, lat, lon *float64) (*models.Visit, error) {
	if !models.ValidVisitOutcome(outcome) {
		return nil, domain.NewError(domain.CodeInvalidOutcome,
			fmt.Sprintf("unknown visit outcome %q", outcome))
	}

	ok, err := l.repo.TransitionComplete(ctx, tenantID, visitID, outcome, notes, photos, l.now(), lat, lon)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, l.transitionError(ctx, tenantID, visitID, models.VisitCompleted)
	}
	return l.reload(ctx, tenantID, visitID)
}

// Cancel is legal from planned or in_progress.
func (l *Lifecycle) Cancel(ctx context.Context, tenantID, visitID int64) (*models.Visit, error) {
	ok, err := l.repo.TransitionCancel(ctx, tenantID, visitID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, l.transitionError(ctx, tenantID, visitID, models.VisitCancelled)
	}
	return l.reload(ctx, tenantID, visitID)
}

func (l *Lifecycle) Get(ctx context.Context, tenantID, visitID int64) (*models.Visit, error) {
	return l.reload(ctx, tenantID, visitID)
}

func (l *Lifecycle) List(ctx context.Context, tenantID int64, filter Filter) ([]models.Visit, int64, error) {
	return l.repo.Visits(ctx, tenantID, filter)
}

// transitionError distinguishes a missing visit from an illegal
// transition after a guard miss.
func (l *Lifecycle) transitionError(ctx context.Context, tenantID, visitID int64, target models.VisitStatus) error {
	visit, err := l.repo.VisitByID(ctx, tenantID, visitID)
	if err != nil {
		return err
	}
	if visit == nil {
		return domain.NewError(domain.CodeNotFound, "visit not found")
	}
	return domain.NewError(domain.CodeInvalidStatusTransition,
		fmt.Sprintf("cannot move visit from %s to %s", visit.Status, target))
}

func (l *Lifecycle) reload(ctx context.Context, tenantID, visitID int64) (*models.Visit, error) {
	visit, err := l.repo.VisitByID(ctx, tenantID, visitID)
	if err != nil {
		return nil, err
	}
	if visit == nil {
		return nil, domain.NewError(domain.CodeNotFound, "visit not found")
	}
	return visit, nil
}
