package services

import (
	"context"
	"testing"

	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeStandardRepo is an in-memory StandardRepository for service tests
type fakeStandardRepo struct {
	standards map[uint]*models.Standard
	nextID    uint
}

func newFakeStandardRepo() *fakeStandardRepo {
	return &fakeStandardRepo{standards: map[uint]*models.Standard{}, nextID: 1}
}

func (r *fakeStandardRepo) Create(_ context.Context, standard *models.Standard) error {
	standard.ID = r.nextID
	r.nextID++
	r.standards[standard.ID] = standard
	return nil
}

func (r *fakeStandardRepo) GetByID(_ context.Context, id uint) (*models.Standard, error) {
	standard, ok := r.standards[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return standard, nil
}

func (r *fakeStandardRepo) GetByCode(_ context.Context, code string) (*models.Standard, error) {
	for _, standard := range r.standards {
		if standard.Code == code {
			return standard, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStandardRepo) Update(_ context.Context, standard *models.Standard) error {
	r.standards[standard.ID] = standard
	return nil
}

func (r *fakeStandardRepo) List(_ context.Context, _, _ int) ([]*models.Standard, int64, error) {
	var out []*models.Standard
	for _, standard := range r.standards {
		out = append(out, standard)
	}
	return out, int64(len(out)), nil
}

func (r *fakeStandardRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := r.GetByCode(ctx, code)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func TestCreateStandardRejectsDuplicateCode(t *testing.T) {
	svc := NewStandardService(newFakeStandardRepo(), &fakeControlRepo{})

	_, err := svc.CreateStandard(context.Background(), &CreateStandardInput{
		Code: "NCA-ECC", NameEN: "Essential Cybersecurity Controls", NameAR: "الضوابط الأساسية",
	})
	require.NoError(t, err)

	_, err = svc.CreateStandard(context.Background(), &CreateStandardInput{
		Code: "NCA-ECC", NameEN: "Duplicate", NameAR: "مكرر",
	})
	assert.ErrorIs(t, err, ErrStandardCodeInUse)
}

func TestCreateControlRequiresExistingStandard(t *testing.T) {
	standardRepo := newFakeStandardRepo()
	controlRepo := &fakeControlRepo{}
	svc := NewStandardService(standardRepo, controlRepo)

	_, err := svc.CreateControl(context.Background(), &CreateControlInput{
		StandardID: 42, Code: "1-1-1", TitleEN: "x", TitleAR: "x",
	})
	assert.ErrorIs(t, err, ErrStandardNotFound)

	standard, err := svc.CreateStandard(context.Background(), &CreateStandardInput{
		Code: "PDPL", NameEN: "Personal Data Protection Law", NameAR: "نظام حماية البيانات",
	})
	require.NoError(t, err)

	control, err := svc.CreateControl(context.Background(), &CreateControlInput{
		StandardID: standard.ID, Code: "PDPL-5", TitleEN: "Data subject rights", TitleAR: "حقوق أصحاب البيانات",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ImplNotImplemented, control.ImplementationStatus)
	assert.Equal(t, "MEDIUM", control.Priority)
}

func TestUpdateControlStatusValidatesStatus(t *testing.T) {
	standardRepo := newFakeStandardRepo()
	controlRepo := &fakeControlRepo{controls: []*models.Control{
		{ID: 1, StandardID: 1, Code: "1-1-1", ImplementationStatus: domain.ImplNotImplemented},
	}}
	svc := NewStandardService(standardRepo, controlRepo)

	_, err := svc.UpdateControlStatus(context.Background(), 1, &UpdateControlStatusInput{
		ImplementationStatus: "DONE",
	})
	assert.ErrorIs(t, err, ErrInvalidImplStatus)

	control, err := svc.UpdateControlStatus(context.Background(), 1, &UpdateControlStatusInput{
		ImplementationStatus: domain.ImplPartiallyImplemented,
		ImplementationNotes:  "MFA rolled out to production, staging pending",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ImplPartiallyImplemented, control.ImplementationStatus)
}

func TestGetComplianceSummaryWeighting(t *testing.T) {
	standardRepo := newFakeStandardRepo()
	standard := &models.Standard{Code: "NCA-ECC", NameEN: "ECC", NameAR: "ضوابط"}
	require.NoError(t, standardRepo.Create(context.Background(), standard))

	controlRepo := &fakeControlRepo{controls: []*models.Control{
		{ID: 1, StandardID: standard.ID, ImplementationStatus: domain.ImplImplemented},
		{ID: 2, StandardID: standard.ID, ImplementationStatus: domain.ImplImplemented},
		{ID: 3, StandardID: standard.ID, ImplementationStatus: domain.ImplPartiallyImplemented},
		{ID: 4, StandardID: standard.ID, ImplementationStatus: domain.ImplNotImplemented},
		{ID: 5, StandardID: standard.ID, ImplementationStatus: domain.ImplNotApplicable},
	}}
	svc := NewStandardService(standardRepo, controlRepo)

	summary, err := svc.GetComplianceSummary(context.Background(), standard.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(5), summary.TotalControls)
	// 2 implemented + 0.5 partial over a base of 4 applicable controls
	assert.InDelta(t, 62.5, summary.CompliancePct, 0.001)

	_, err = svc.GetComplianceSummary(context.Background(), 999)
	assert.ErrorIs(t, err, ErrStandardNotFound)
}

func TestGetComplianceSummaryEmptyStandard(t *testing.T) {
	standardRepo := newFakeStandardRepo()
	standard := &models.Standard{Code: "NDMO-DG", NameEN: "Data Governance", NameAR: "حوكمة البيانات"}
	require.NoError(t, standardRepo.Create(context.Background(), standard))

	svc := NewStandardService(standardRepo, &fakeControlRepo{})

	summary, err := svc.GetComplianceSummary(context.Background(), standard.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalControls)
	assert.Equal(t, 0.0, summary.CompliancePct)
}
