package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"stageline/internal/domain"
)

// Repo is the sqlite-backed store.
type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

// projectColumns is the write column order shared by insert, update and scan.
var projectColumns = []string{
	"project_name", "status", "location_id", "construction_type",
	"survey_start_date", "survey_end_date", "planned_duration", "budget",
	"is_budget_estimated", "work_scope_design", "work_scope_bidding", "work_scope_pm",
	"survey_by_id", "design_owner_id", "project_manager_id", "bidding_owner_id", "pm_owner_id",
	"actual_cost", "start_date", "actual_duration",
	"bidding_pdf", "boq_pdf", "project_image", "construction_pdf", "rvt_model", "ifc_model", "as_built_pdf",
	"created_at", "updated_at",
}

const viewQuery = `SELECT p.id,
  p.project_name,p.status,p.location_id,p.construction_type,
  p.survey_start_date,p.survey_end_date,p.planned_duration,p.budget,
  p.is_budget_estimated,p.work_scope_design,p.work_scope_bidding,p.work_scope_pm,
  p.survey_by_id,p.design_owner_id,p.project_manager_id,p.bidding_owner_id,p.pm_owner_id,
  p.actual_cost,p.start_date,p.actual_duration,
  p.bidding_pdf,p.boq_pdf,p.project_image,p.construction_pdf,p.rvt_model,p.ifc_model,p.as_built_pdf,
  p.created_at,p.updated_at,
  l.id,l.site_name,l.activity,
  s.id,s.first_name,s.last_name,
  m.id,m.first_name,m.last_name,
  d.id,d.first_name,d.last_name,
  b.id,b.first_name,b.last_name,
  o.id,o.first_name,o.last_name
FROM projects p
LEFT JOIN locations l ON l.id=p.location_id
LEFT JOIN employees s ON s.id=p.survey_by_id
LEFT JOIN employees m ON m.id=p.project_manager_id
LEFT JOIN employees d ON d.id=p.design_owner_id
LEFT JOIN employees b ON b.id=p.bidding_owner_id
LEFT JOIN employees o ON o.id=p.pm_owner_id`

type scanner interface {
	Scan(dest ...any) error
}

type joinedEmployee struct {
	id    sql.NullInt64
	first sql.NullString
	last  sql.NullString
}

func (j joinedEmployee) employee() *domain.Employee {
	if !j.id.Valid {
		return nil
	}
	return &domain.Employee{ID: j.id.Int64, FirstName: j.first.String, LastName: j.last.String}
}

func scanView(row scanner) (domain.ProjectView, error) {
	var (
		v                                        domain.ProjectView
		status                                   string
		locationID, surveyor, designOwner        sql.NullInt64
		manager, biddingOwner, pmOwner           sql.NullInt64
		constructionType, surveyStart, surveyEnd sql.NullString
		startDate                                sql.NullString
		planned, budget, actualCost, actualDays  sql.NullFloat64
		bidding, boq, image, construction        sql.NullString
		rvt, ifc, asBuilt                        sql.NullString
		locID                                    sql.NullInt64
		siteName, activity                       sql.NullString
		joinS, joinM, joinD, joinB, joinO        joinedEmployee
	)
	err := row.Scan(&v.ID,
		&v.Name, &status, &locationID, &constructionType,
		&surveyStart, &surveyEnd, &planned, &budget,
		&v.IsBudgetEstimated, &v.WorkScopeDesign, &v.WorkScopeBidding, &v.WorkScopePM,
		&surveyor, &designOwner, &manager, &biddingOwner, &pmOwner,
		&actualCost, &startDate, &actualDays,
		&bidding, &boq, &image, &construction, &rvt, &ifc, &asBuilt,
		&v.CreatedAt, &v.UpdatedAt,
		&locID, &siteName, &activity,
		&joinS.id, &joinS.first, &joinS.last,
		&joinM.id, &joinM.first, &joinM.last,
		&joinD.id, &joinD.first, &joinD.last,
		&joinB.id, &joinB.first, &joinB.last,
		&joinO.id, &joinO.first, &joinO.last,
	)
	if err == sql.ErrNoRows {
		return v, ErrNotFound
	}
	if err != nil {
		return v, err
	}
	v.Status = domain.Status(status)
	v.LocationID = intPtr(locationID)
	v.ConstructionType = strPtr(constructionType)
	v.SurveyStartDate = strPtr(surveyStart)
	v.SurveyEndDate = strPtr(surveyEnd)
	v.PlannedDuration = floatPtr(planned)
	v.Budget = floatPtr(budget)
	v.SurveyorID = intPtr(surveyor)
	v.DesignOwnerID = intPtr(designOwner)
	v.ProjectManagerID = intPtr(manager)
	v.BiddingOwnerID = intPtr(biddingOwner)
	v.PMOwnerID = intPtr(pmOwner)
	v.ActualCost = floatPtr(actualCost)
	v.StartDate = strPtr(startDate)
	v.ActualDuration = floatPtr(actualDays)
	v.BiddingPDF = strPtr(bidding)
	v.BOQPDF = strPtr(boq)
	v.ProjectImage = strPtr(image)
	v.ConstructionPDF = strPtr(construction)
	v.RVTModel = strPtr(rvt)
	v.IFCModel = strPtr(ifc)
	v.AsBuiltPDF = strPtr(asBuilt)
	if locID.Valid {
		v.Location = &domain.Location{ID: locID.Int64, SiteName: siteName.String, Activity: activity.String}
	}
	v.Surveyor = joinS.employee()
	v.ProjectManager = joinM.employee()
	v.DesignOwner = joinD.employee()
	v.BiddingOwner = joinB.employee()
	v.PMOwner = joinO.employee()
	return v, nil
}

func projectArgs(p domain.Project) []any {
	return []any{
		p.Name, string(p.Status), nullableInt(p.LocationID), nullableStringPtr(p.ConstructionType),
		nullableStringPtr(p.SurveyStartDate), nullableStringPtr(p.SurveyEndDate), nullableFloat(p.PlannedDuration), nullableFloat(p.Budget),
		p.IsBudgetEstimated, p.WorkScopeDesign, p.WorkScopeBidding, p.WorkScopePM,
		nullableInt(p.SurveyorID), nullableInt(p.DesignOwnerID), nullableInt(p.ProjectManagerID), nullableInt(p.BiddingOwnerID), nullableInt(p.PMOwnerID),
		nullableFloat(p.ActualCost), nullableStringPtr(p.StartDate), nullableFloat(p.ActualDuration),
		nullableStringPtr(p.BiddingPDF), nullableStringPtr(p.BOQPDF), nullableStringPtr(p.ProjectImage),
		nullableStringPtr(p.ConstructionPDF), nullableStringPtr(p.RVTModel), nullableStringPtr(p.IFCModel), nullableStringPtr(p.AsBuiltPDF),
		p.CreatedAt, p.UpdatedAt,
	}
}

// ListProjects returns every project with its joined reference rows, newest
// first.
func (r Repo) ListProjects(ctx context.Context) ([]domain.ProjectView, error) {
	rows, err := r.DB.QueryContext(ctx, viewQuery+` ORDER BY p.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.ProjectView
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

func (r Repo) GetProject(ctx context.Context, id int64) (domain.ProjectView, error) {
	return scanView(r.DB.QueryRowContext(ctx, viewQuery+` WHERE p.id=?`, id))
}

// InsertProject writes p and returns the id assigned by the database. p.ID is
// ignored.
func (r Repo) InsertProject(ctx context.Context, p domain.Project) (int64, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(projectColumns)), ",")
	res, err := r.DB.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO projects(%s) VALUES (%s)`, strings.Join(projectColumns, ","), placeholders),
		projectArgs(p)...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateProject replaces every stored column of p except created_at.
func (r Repo) UpdateProject(ctx context.Context, p domain.Project) error {
	cols := projectColumns[:len(projectColumns)-2]
	sets := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		sets = append(sets, c+"=?")
	}
	sets = append(sets, "updated_at=?")
	args := projectArgs(p)
	args = append(args[:len(cols)], p.UpdatedAt, p.ID)
	res, err := r.DB.ExecContext(ctx, fmt.Sprintf(`UPDATE projects SET %s WHERE id=?`, strings.Join(sets, ",")), args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteProject(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM projects WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableStringPtr(v *string) any {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}

func nullableInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func strPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	i := v.Int64
	return &i
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
