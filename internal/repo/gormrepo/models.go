package gormrepo

import (
	"time"

	"stageline/internal/domain"
)

type employeeRow struct {
	ID        int64  `gorm:"primaryKey"`
	FirstName string `gorm:"size:255;not null"`
	LastName  string `gorm:"size:255;not null;default:''"`
}

func (employeeRow) TableName() string { return "employees" }

type locationRow struct {
	ID       int64  `gorm:"primaryKey"`
	SiteName string `gorm:"size:255;not null"`
	Activity string `gorm:"size:255;not null;default:''"`
}

func (locationRow) TableName() string { return "locations" }

type projectRow struct {
	ID          int64  `gorm:"primaryKey"`
	ProjectName string `gorm:"size:255;not null"`
	Status      string `gorm:"type:varchar(20);not null;index"`

	LocationID       *int64
	Location         *locationRow `gorm:"foreignKey:LocationID;constraint:OnDelete:SET NULL"`
	ConstructionType *string      `gorm:"size:255"`
	SurveyStartDate  *string      `gorm:"type:varchar(10)"`
	SurveyEndDate    *string      `gorm:"type:varchar(10)"`
	PlannedDuration  *float64
	Budget           *float64

	IsBudgetEstimated bool `gorm:"not null;default:false"`
	WorkScopeDesign   bool `gorm:"not null;default:false"`
	WorkScopeBidding  bool `gorm:"not null;default:false"`
	WorkScopePM       bool `gorm:"column:work_scope_pm;not null;default:false"`

	SurveyByID       *int64
	Surveyor         *employeeRow `gorm:"foreignKey:SurveyByID;constraint:OnDelete:SET NULL"`
	DesignOwnerID    *int64
	DesignOwner      *employeeRow `gorm:"foreignKey:DesignOwnerID;constraint:OnDelete:SET NULL"`
	ProjectManagerID *int64
	ProjectManager   *employeeRow `gorm:"foreignKey:ProjectManagerID;constraint:OnDelete:SET NULL"`
	BiddingOwnerID   *int64
	BiddingOwner     *employeeRow `gorm:"foreignKey:BiddingOwnerID;constraint:OnDelete:SET NULL"`
	PMOwnerID        *int64       `gorm:"column:pm_owner_id"`
	PMOwner          *employeeRow `gorm:"foreignKey:PMOwnerID;constraint:OnDelete:SET NULL"`

	ActualCost     *float64
	StartDate      *string `gorm:"type:varchar(10)"`
	ActualDuration *float64

	BiddingPDF      *string `gorm:"column:bidding_pdf"`
	BOQPDF          *string `gorm:"column:boq_pdf"`
	ProjectImage    *string
	ConstructionPDF *string `gorm:"column:construction_pdf"`
	RVTModel        *string `gorm:"column:rvt_model"`
	IFCModel        *string `gorm:"column:ifc_model"`
	AsBuiltPDF      *string `gorm:"column:as_built_pdf"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (projectRow) TableName() string { return "projects" }

func toRow(p domain.Project) projectRow {
	c := p.Clone()
	return projectRow{
		ID:                c.ID,
		ProjectName:       c.Name,
		Status:            string(c.Status),
		LocationID:        c.LocationID,
		ConstructionType:  c.ConstructionType,
		SurveyStartDate:   c.SurveyStartDate,
		SurveyEndDate:     c.SurveyEndDate,
		PlannedDuration:   c.PlannedDuration,
		Budget:            c.Budget,
		IsBudgetEstimated: c.IsBudgetEstimated,
		WorkScopeDesign:   c.WorkScopeDesign,
		WorkScopeBidding:  c.WorkScopeBidding,
		WorkScopePM:       c.WorkScopePM,
		SurveyByID:        c.SurveyorID,
		DesignOwnerID:     c.DesignOwnerID,
		ProjectManagerID:  c.ProjectManagerID,
		BiddingOwnerID:    c.BiddingOwnerID,
		PMOwnerID:         c.PMOwnerID,
		ActualCost:        c.ActualCost,
		StartDate:         c.StartDate,
		ActualDuration:    c.ActualDuration,
		BiddingPDF:        c.BiddingPDF,
		BOQPDF:            c.BOQPDF,
		ProjectImage:      c.ProjectImage,
		ConstructionPDF:   c.ConstructionPDF,
		RVTModel:          c.RVTModel,
		IFCModel:          c.IFCModel,
		AsBuiltPDF:        c.AsBuiltPDF,
		CreatedAt:         parseTime(c.CreatedAt),
		UpdatedAt:         parseTime(c.UpdatedAt),
	}
}

func (r projectRow) view() domain.ProjectView {
	v := domain.ProjectView{Project: domain.Project{
		ID:                r.ID,
		Name:              r.ProjectName,
		Status:            domain.Status(r.Status),
		LocationID:        r.LocationID,
		ConstructionType:  r.ConstructionType,
		SurveyStartDate:   r.SurveyStartDate,
		SurveyEndDate:     r.SurveyEndDate,
		PlannedDuration:   r.PlannedDuration,
		Budget:            r.Budget,
		IsBudgetEstimated: r.IsBudgetEstimated,
		WorkScopeDesign:   r.WorkScopeDesign,
		WorkScopeBidding:  r.WorkScopeBidding,
		WorkScopePM:       r.WorkScopePM,
		SurveyorID:        r.SurveyByID,
		DesignOwnerID:     r.DesignOwnerID,
		ProjectManagerID:  r.ProjectManagerID,
		BiddingOwnerID:    r.BiddingOwnerID,
		PMOwnerID:         r.PMOwnerID,
		ActualCost:        r.ActualCost,
		StartDate:         r.StartDate,
		ActualDuration:    r.ActualDuration,
		BiddingPDF:        r.BiddingPDF,
		BOQPDF:            r.BOQPDF,
		ProjectImage:      r.ProjectImage,
		ConstructionPDF:   r.ConstructionPDF,
		RVTModel:          r.RVTModel,
		IFCModel:          r.IFCModel,
		AsBuiltPDF:        r.AsBuiltPDF,
		CreatedAt:         formatTime(r.CreatedAt),
		UpdatedAt:         formatTime(r.UpdatedAt),
	}}
	if r.Location != nil {
		v.Location = &domain.Location{ID: r.Location.ID, SiteName: r.Location.SiteName, Activity: r.Location.Activity}
	}
	v.Surveyor = r.Surveyor.employee()
	v.DesignOwner = r.DesignOwner.employee()
	v.ProjectManager = r.ProjectManager.employee()
	v.BiddingOwner = r.BiddingOwner.employee()
	v.PMOwner = r.PMOwner.employee()
	return v
}

func (e *employeeRow) employee() *domain.Employee {
	if e == nil {
		return nil
	}
	return &domain.Employee{ID: e.ID, FirstName: e.FirstName, LastName: e.LastName}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
