package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/adapters/persistence/repositories"
	"amana-grc/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeRiskRepo is an in-memory RiskRepository for service tests
type fakeRiskRepo struct {
	risks  map[uint]*models.Risk
	nextID uint
}

func newFakeRiskRepo() *fakeRiskRepo {
	return &fakeRiskRepo{risks: map[uint]*models.Risk{}, nextID: 1}
}

func (r *fakeRiskRepo) Create(_ context.Context, risk *models.Risk) error {
	risk.ID = r.nextID
	risk.CreatedAt = time.Now()
	r.nextID++
	r.risks[risk.ID] = risk
	return nil
}

func (r *fakeRiskRepo) GetByID(_ context.Context, id uint) (*models.Risk, error) {
	risk, ok := r.risks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return risk, nil
}

func (r *fakeRiskRepo) GetByRiskID(_ context.Context, riskID string) (*models.Risk, error) {
	for _, risk := range r.risks {
		if risk.RiskID == riskID {
			return risk, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRiskRepo) Update(_ context.Context, risk *models.Risk) error {
	if _, ok := r.risks[risk.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.risks[risk.ID] = risk
	return nil
}

func (r *fakeRiskRepo) List(_ context.Context, filter repositories.RiskFilter, offset, limit int) ([]*models.Risk, int64, error) {
	var out []*models.Risk
	for _, risk := range r.risks {
		if filter.Level != "" && risk.RiskLevel != filter.Level {
			continue
		}
		if filter.Status != "" && risk.Status != filter.Status {
			continue
		}
		out = append(out, risk)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRiskRepo) ListAll(_ context.Context) ([]*models.Risk, error) {
	var out []*models.Risk
	for _, risk := range r.risks {
		out = append(out, risk)
	}
	return out, nil
}

func (r *fakeRiskRepo) CountInYear(_ context.Context, year int) (int64, error) {
	prefix := fmt.Sprintf("RISK-%d-", year)
	var count int64
	for _, risk := range r.risks {
		if strings.HasPrefix(risk.RiskID, prefix) {
			count++
		}
	}
	return count, nil
}

func (r *fakeRiskRepo) CountByLevel(_ context.Context) (map[domain.RiskLevel]int64, error) {
	counts := map[domain.RiskLevel]int64{}
	for _, risk := range r.risks {
		counts[risk.RiskLevel]++
	}
	return counts, nil
}

func (r *fakeRiskRepo) MonthlyCounts(_ context.Context, _ time.Time) ([]models.MonthlyCount, error) {
	return nil, nil
}

func TestCreateRiskClassifies(t *testing.T) {
	repo := newFakeRiskRepo()
	svc := NewRiskService(repo)

	risk, err := svc.CreateRisk(context.Background(), 7, &CreateRiskInput{
		TitleEN:         "Unpatched internet-facing servers",
		TitleAR:         "خوادم غير محدثة متاحة عبر الإنترنت",
		ImpactScore:     5,
		LikelihoodScore: 3,
	})
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("RISK-%d-0001", year), risk.RiskID)
	assert.Equal(t, 15, risk.RiskScore)
	assert.Equal(t, domain.RiskHigh, risk.RiskLevel)
	assert.Equal(t, domain.TreatmentMitigate, risk.Treatment)
	assert.Equal(t, domain.RiskStatusOpen, risk.Status)
	assert.Equal(t, uint(7), risk.OwnerID)

	// Sequence increments within the year
	second, err := svc.CreateRisk(context.Background(), 7, &CreateRiskInput{
		TitleEN:         "Shadow IT SaaS usage",
		TitleAR:         "استخدام برمجيات سحابية غير معتمدة",
		ImpactScore:     2,
		LikelihoodScore: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("RISK-%d-0002", year), second.RiskID)
	assert.Equal(t, domain.RiskLow, second.RiskLevel)
}

func TestCreateRiskRejectsOutOfRangeScores(t *testing.T) {
	svc := NewRiskService(newFakeRiskRepo())

	for _, scores := range [][2]int{{0, 3}, {3, 0}, {6, 1}, {1, 6}} {
		_, err := svc.CreateRisk(context.Background(), 1, &CreateRiskInput{
			TitleEN:         "x",
			TitleAR:         "x",
			ImpactScore:     scores[0],
			LikelihoodScore: scores[1],
		})
		assert.ErrorIs(t, err, ErrInvalidScore, "impact=%d likelihood=%d", scores[0], scores[1])
	}
}

func TestUpdateRiskRescoresOnlyWhenInputsChange(t *testing.T) {
	repo := newFakeRiskRepo()
	svc := NewRiskService(repo)

	risk, err := svc.CreateRisk(context.Background(), 1, &CreateRiskInput{
		TitleEN:         "Vendor data leakage",
		TitleAR:         "تسرب بيانات عبر مزود خدمة",
		ImpactScore:     4,
		LikelihoodScore: 4,
	})
	require.NoError(t, err)
	require.Equal(t, domain.RiskHigh, risk.RiskLevel)

	// Title-only edit keeps the classification untouched
	newTitle := "Vendor data leakage via file shares"
	updated, err := svc.UpdateRisk(context.Background(), risk.ID, &UpdateRiskInput{TitleEN: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, 16, updated.RiskScore)
	assert.Equal(t, domain.RiskHigh, updated.RiskLevel)

	// Lowering likelihood reclassifies
	lower := 1
	updated, err = svc.UpdateRisk(context.Background(), risk.ID, &UpdateRiskInput{LikelihoodScore: &lower})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.RiskScore)
	assert.Equal(t, domain.RiskLow, updated.RiskLevel)

	bad := 9
	_, err = svc.UpdateRisk(context.Background(), risk.ID, &UpdateRiskInput{ImpactScore: &bad})
	assert.ErrorIs(t, err, ErrInvalidScore)
}

func TestCloseRiskKeepsRecord(t *testing.T) {
	repo := newFakeRiskRepo()
	svc := NewRiskService(repo)

	risk, err := svc.CreateRisk(context.Background(), 1, &CreateRiskInput{
		TitleEN:         "Expired TLS certificates",
		TitleAR:         "شهادات TLS منتهية الصلاحية",
		ImpactScore:     3,
		LikelihoodScore: 2,
	})
	require.NoError(t, err)

	require.NoError(t, svc.CloseRisk(context.Background(), risk.ID))

	stored, err := repo.GetByID(context.Background(), risk.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RiskStatusClosed, stored.Status)

	assert.ErrorIs(t, svc.CloseRisk(context.Background(), 999), ErrRiskNotFound)
}
