package visits

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fieldline/internal/database/models"
	"fieldline/internal/domain"
)

type mockVisitRepo struct {
	mock.Mock
}

func (m *mockVisitRepo) CreateVisit(ctx context.Context, visit *models.Visit) error {
	args := m.Called(ctx, visit)
	return args.Error(0)
}

func (m *mockVisitRepo) VisitByID(ctx context.Context, tenantID, id int64) (*models.Visit, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Visit), args.Error(1)
}

func (m *mockVisitRepo) TransitionStart(ctx context.Context, tenantID, id int64, startedAt time.Time, lat, lon *float64) (bool, error) {
	args := m.Called(ctx, tenantID, id, startedAt, lat, lon)
	return args.Bool(0), args.Error(1)
}

func (m *mockVisitRepo) TransitionComplete(ctx context.Context, tenantID, id int64, outcome models.VisitOutcome, notes *string, photos []string, completedAt time.Time, lat, lon *float64) (bool, error) {
	args := m.Called(ctx, tenantID, id, outcome, notes, photos, completedAt, lat, lon)
	return args.Bool(0), args.Error(1)
}

func (m *mockVisitRepo) TransitionCancel(ctx context.Context, tenantID, id int64) (bool, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockVisitRepo) Visits(ctx context.Context, tenantID int64, filter Filter) ([]models.Visit, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Visit), args.Get(1).(int64), args.Error(2)
}

var fixedNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func newTestLifecycle(repo Repository) *Lifecycle {
	l := NewLifecycle(repo, zerolog.Nop())
	l.now = func() time.Time { return fixedNow }
	return l
}

func outcomePtr(o models.VisitOutcome) *models.VisitOutcome { return &o }

func strPtr(s string) *string { return &s }

func TestCreateValidationPrecedence(t *testing.T) {
	cases := []struct {
		name     string
		in       CreateInput
		wantCode string
	}{
		{
			"mode checked first even with bad outcome",
			CreateInput{Mode: "drive_by", Outcome: outcomePtr("won")},
			domain.CodeInvalidMode,
		},
		{
			"mode checked before malformed date",
			CreateInput{Mode: "drive_by", PlannedDate: strPtr("not-a-date")},
			domain.CodeInvalidMode,
		},
		{
			"outcome enum before missing plannedDate",
			CreateInput{Mode: ModeScheduled, Outcome: outcomePtr("won")},
			domain.CodeInvalidOutcome,
		},
		{
			"scheduled requires plannedDate",
			CreateInput{Mode: ModeScheduled},
			domain.CodeMissingRequiredField,
		},
		{
			"quick requires outcome",
			CreateInput{Mode: ModeQuick},
			domain.CodeMissingRequiredField,
		},
		{
			"malformed date checked last",
			CreateInput{Mode: ModeScheduled, PlannedDate: strPtr("not-a-date")},
			domain.CodeInvalidDate,
		},
		{
			"date range checked last",
			CreateInput{Mode: ModeScheduled, PlannedDate: strPtr("2026-03-12")},
			domain.CodeInvalidDate,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := newTestLifecycle(new(mockVisitRepo))
			_, err := l.Create(context.Background(), 1, 2, tc.in)
			assert.True(t, domain.IsCode(err, tc.wantCode), "want %s got %v", tc.wantCode, err)
		})
	}
}

func TestCreateScheduledAcceptsToday(t *testing.T) {
	today := time.Date(fixedNow.Year(), fixedNow.Month(), fixedNow.Day(), 0, 0, 0, 0, time.UTC)

	repo := new(mockVisitRepo)
	repo.On("CreateVisit", mock.Anything, mock.MatchedBy(func(v *models.Visit) bool {
		return v.Status == models.VisitPlanned &&
			v.VisitType == models.VisitScheduled &&
			v.PlannedDate.Equal(today) &&
			v.StartedAt == nil
	})).Return(nil)

	l := newTestLifecycle(repo)
	visit, err := l.Create(context.Background(), 1, 2, CreateInput{
		CustomerID:  7,
		Mode:        ModeScheduled,
		PlannedDate: strPtr("2026-03-14"),
	})

	require.NoError(t, err)
	assert.Equal(t, models.VisitPlanned, visit.Status)
	repo.AssertExpectations(t)
}

func TestCreateQuickVisitIsTerminal(t *testing.T) {
	lat, lon := -6.2, 106.8

	repo := new(mockVisitRepo)
	repo.On("CreateVisit", mock.Anything, mock.MatchedBy(func(v *models.Visit) bool {
		return v.Status == models.VisitCompleted &&
			v.VisitType == models.VisitAdHoc &&
			v.StartedAt != nil && v.CompletedAt != nil &&
			v.StartedAt.Equal(*v.CompletedAt) &&
			*v.Outcome == models.OutcomeOrderPlaced &&
			*v.StartLat == lat && *v.EndLat == lat
	})).Return(nil)

	l := newTestLifecycle(repo)
	visit, err := l.Create(context.Background(), 1, 2, CreateInput{
		CustomerID: 7,
		Mode:       ModeQuick,
		Outcome:    outcomePtr(models.OutcomeOrderPlaced),
		Lat:        &lat,
		Lon:        &lon,
	})

	require.NoError(t, err)
	assert.Equal(t, models.VisitCompleted, visit.Status)
	assert.Equal(t, fixedNow, *visit.StartedAt)
	assert.Equal(t, fixedNow, *visit.CompletedAt)
}

func TestStartGuardMissOnWrongStatus(t *testing.T) {
	repo := new(mockVisitRepo)
	repo.On("TransitionStart", mock.Anything, int64(1), int64(5), fixedNow, (*float64)(nil), (*float64)(nil)).Return(false, nil)
	repo.On("VisitByID", mock.Anything, int64(1), int64(5)).Return(&models.Visit{
		ID: 5, Status: models.VisitCompleted,
	}, nil)

	l := newTestLifecycle(repo)
	_, err := l.Start(context.Background(), 1, 5, nil, nil)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidStatusTransition))
}

func TestStartMissingVisit(t *testing.T) {
	repo := new(mockVisitRepo)
	repo.On("TransitionStart", mock.Anything, int64(1), int64(404), fixedNow, (*float64)(nil), (*float64)(nil)).Return(false, nil)
	repo.On("VisitByID", mock.Anything, int64(1), int64(404)).Return(nil, nil)

	l := newTestLifecycle(repo)
	_, err := l.Start(context.Background(), 1, 404, nil, nil)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
}

func TestCompleteChecksOutcomeBeforeGuard(t *testing.T) {
	repo := new(mockVisitRepo)

	l := newTestLifecycle(repo)
	_, err := l.Complete(context.Background(), 1, 5, "won", nil, nil, nil, nil)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidOutcome))
	repo.AssertNotCalled(t, "TransitionComplete",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteHappyPath(t *testing.T) {
	photos := []string{"s3://visits/5/front.jpg"}

	repo := new(mockVisitRepo)
	repo.On("TransitionComplete", mock.Anything, int64(1), int64(5),
		models.OutcomeNoOrder, (*string)(nil), photos, fixedNow, (*float64)(nil), (*float64)(nil)).Return(true, nil)
	repo.On("VisitByID", mock.Anything, int64(1), int64(5)).Return(&models.Visit{
		ID: 5, Status: models.VisitCompleted, Outcome: outcomePtr(models.OutcomeNoOrder),
	}, nil)

	l := newTestLifecycle(repo)
	visit, err := l.Complete(context.Background(), 1, 5, models.OutcomeNoOrder, nil, photos, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, models.VisitCompleted, visit.Status)
	repo.AssertExpectations(t)
}

func TestCancelFromCompletedFails(t *testing.T) {
	repo := new(mockVisitRepo)
	repo.On("TransitionCancel", mock.Anything, int64(1), int64(5)).Return(false, nil)
	repo.On("VisitByID", mock.Anything, int64(1), int64(5)).Return(&models.Visit{
		ID: 5, Status: models.VisitCompleted,
	}, nil)

	l := newTestLifecycle(repo)
	_, err := l.Cancel(context.Background(), 1, 5)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidStatusTransition))
}

func TestCancelFromInProgress(t *testing.T) {
	repo := new(mockVisitRepo)
	repo.On("TransitionCancel", mock.Anything, int64(1), int64(5)).Return(true, nil)
	repo.On("VisitByID", mock.Anything, int64(1), int64(5)).Return(&models.Visit{
		ID: 5, Status: models.VisitCancelled,
	}, nil)

	l := newTestLifecycle(repo)
	visit, err := l.Cancel(context.Background(), 1, 5)

	require.NoError(t, err)
	assert.Equal(t, models.VisitCancelled, visit.Status)
}
