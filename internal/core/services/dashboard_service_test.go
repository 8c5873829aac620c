package services

import (
	"context"
	"testing"
	"time"

	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrendService(controls []*models.Control) *DashboardService {
	return NewDashboardService(nil, nil, &fakeControlRepo{controls: controls}, nil, nil, nil, nil)
}

func TestComplianceTrendWeighting(t *testing.T) {
	// 1 implemented + 2 partial out of a base of 4 applicable controls:
	// (1 + 2*0.5) / 4 = 50%
	svc := newTrendService([]*models.Control{
		{ID: 1, StandardID: 10, ImplementationStatus: domain.ImplImplemented},
		{ID: 2, StandardID: 10, ImplementationStatus: domain.ImplPartiallyImplemented},
		{ID: 3, StandardID: 10, ImplementationStatus: domain.ImplPartiallyImplemented},
		{ID: 4, StandardID: 10, ImplementationStatus: domain.ImplNotImplemented},
		{ID: 5, StandardID: 10, ImplementationStatus: domain.ImplNotApplicable},
	})

	points, err := svc.ComplianceTrend(context.Background(), 10, 7)
	require.NoError(t, err)
	require.Len(t, points, 7)

	for _, point := range points {
		assert.InDelta(t, 50.0, point.CompliancePct, 0.001)
	}

	assert.Equal(t, time.Now().Format("2006-01-02"), points[6].Date)
	assert.Equal(t, time.Now().AddDate(0, 0, -6).Format("2006-01-02"), points[0].Date)
}

func TestComplianceTrendDefaultsWindow(t *testing.T) {
	svc := newTrendService(nil)

	points, err := svc.ComplianceTrend(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, points, 30)
}

func TestComplianceTrendNoControls(t *testing.T) {
	svc := newTrendService(nil)

	points, err := svc.ComplianceTrend(context.Background(), 10, 3)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Zero(t, points[0].CompliancePct)
}
