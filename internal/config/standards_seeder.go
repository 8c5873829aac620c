package config

import (
	"log"

	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/core/domain"

	"gorm.io/gorm"
)

// seedStandards seeds the regulatory frameworks the platform tracks,
// each with a small starter set of controls. Idempotent on standard code.
func (s *Seeder) seedStandards() error {
	standards := []struct {
		standard models.Standard
		controls []models.Control
	}{
		{
			standard: models.Standard{
				Code:          "NCA-ECC",
				NameEN:        "Essential Cybersecurity Controls",
				NameAR:        "الضوابط الأساسية للأمن السيبراني",
				DescriptionEN: "National Cybersecurity Authority baseline controls for critical entities",
				DescriptionAR: "ضوابط الهيئة الوطنية للأمن السيبراني الأساسية للجهات الحيوية",
				Version:       "1-2018",
				Category:      "CYBERSECURITY",
			},
			controls: []models.Control{
				{
					Code:     "1-1-1",
					DomainEN: "Cybersecurity Governance",
					DomainAR: "حوكمة الأمن السيبراني",
					TitleEN:  "Cybersecurity strategy is defined, documented and approved",
					TitleAR:  "تحديد استراتيجية الأمن السيبراني وتوثيقها واعتمادها",
					Priority: "HIGH",
				},
				{
					Code:     "2-1-1",
					DomainEN: "Cybersecurity Defense",
					DomainAR: "تعزيز الأمن السيبراني",
					TitleEN:  "Asset inventory is maintained and reviewed periodically",
					TitleAR:  "الاحتفاظ بسجل الأصول ومراجعته دورياً",
					Priority: "HIGH",
				},
				{
					Code:     "2-3-1",
					DomainEN: "Cybersecurity Defense",
					DomainAR: "تعزيز الأمن السيبراني",
					TitleEN:  "Identity and access management requirements are defined",
					TitleAR:  "تحديد متطلبات إدارة الهويات والصلاحيات",
					Priority: "HIGH",
				},
			},
		},
		{
			standard: models.Standard{
				Code:          "NCA-CSCC",
				NameEN:        "Critical Systems Cybersecurity Controls",
				NameAR:        "ضوابط الأمن السيبراني للأنظمة الحساسة",
				DescriptionEN: "Additional controls for systems classified as critical",
				DescriptionAR: "ضوابط إضافية للأنظمة المصنفة كأنظمة حساسة",
				Version:       "1-2019",
				Category:      "CYBERSECURITY",
			},
			controls: []models.Control{
				{
					Code:     "2-4-1",
					DomainEN: "Cybersecurity Defense",
					DomainAR: "تعزيز الأمن السيبراني",
					TitleEN:  "Multi-factor authentication for all critical system users",
					TitleAR:  "التحقق من الهوية متعدد العناصر لجميع مستخدمي الأنظمة الحساسة",
					Priority: "CRITICAL",
				},
			},
		},
		{
			standard: models.Standard{
				Code:          "NDMO-DG",
				NameEN:        "Data Management and Personal Data Protection Standards",
				NameAR:        "معايير إدارة البيانات وحماية البيانات الشخصية",
				DescriptionEN: "National Data Management Office data governance framework",
				DescriptionAR: "إطار حوكمة البيانات الصادر عن مكتب إدارة البيانات الوطنية",
				Version:       "1.5",
				Category:      "DATA_GOVERNANCE",
			},
			controls: []models.Control{
				{
					Code:     "DG-1-1",
					DomainEN: "Data Governance",
					DomainAR: "حوكمة البيانات",
					TitleEN:  "Data governance roles and responsibilities are assigned",
					TitleAR:  "إسناد أدوار ومسؤوليات حوكمة البيانات",
					Priority: "MEDIUM",
				},
				{
					Code:     "DC-2-1",
					DomainEN: "Data Classification",
					DomainAR: "تصنيف البيانات",
					TitleEN:  "Data assets are classified per the national classification policy",
					TitleAR:  "تصنيف أصول البيانات وفق سياسة التصنيف الوطنية",
					Priority: "HIGH",
				},
			},
		},
		{
			standard: models.Standard{
				Code:          "PDPL",
				NameEN:        "Personal Data Protection Law",
				NameAR:        "نظام حماية البيانات الشخصية",
				DescriptionEN: "SDAIA personal data protection requirements",
				DescriptionAR: "متطلبات حماية البيانات الشخصية الصادرة عن سدايا",
				Version:       "2023",
				Category:      "PRIVACY",
			},
			controls: []models.Control{
				{
					Code:     "PDPL-5",
					DomainEN: "Data Subject Rights",
					DomainAR: "حقوق أصحاب البيانات",
					TitleEN:  "Processes exist to honor data subject access and deletion requests",
					TitleAR:  "وجود إجراءات لتلبية طلبات الوصول والحذف لأصحاب البيانات",
					Priority: "HIGH",
				},
			},
		},
	}

	for _, entry := range standards {
		var existing models.Standard
		err := s.db.Where("code = ?", entry.standard.Code).First(&existing).Error
		if err == nil {
			continue // Standard already seeded
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		if err := s.db.Create(&entry.standard).Error; err != nil {
			return err
		}

		for i := range entry.controls {
			entry.controls[i].StandardID = entry.standard.ID
			entry.controls[i].ImplementationStatus = domain.ImplNotImplemented
		}
		if len(entry.controls) > 0 {
			if err := s.db.Create(&entry.controls).Error; err != nil {
				return err
			}
		}

		log.Printf("   Seeded standard %s with %d controls", entry.standard.Code, len(entry.controls))
	}

	return nil
}
