package repo

import (
	"context"

	"stageline/internal/domain"
)

func (r Repo) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,first_name,last_name FROM employees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Employee
	for rows.Next() {
		var e domain.Employee
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (r Repo) InsertEmployee(ctx context.Context, e domain.Employee) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO employees(first_name,last_name) VALUES (?,?)`, e.FirstName, e.LastName)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r Repo) ListLocations(ctx context.Context) ([]domain.Location, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,site_name,activity FROM locations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Location
	for rows.Next() {
		var l domain.Location
		if err := rows.Scan(&l.ID, &l.SiteName, &l.Activity); err != nil {
			return nil, err
		}
		res = append(res, l)
	}
	return res, rows.Err()
}

func (r Repo) InsertLocation(ctx context.Context, l domain.Location) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO locations(site_name,activity) VALUES (?,?)`, l.SiteName, l.Activity)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
