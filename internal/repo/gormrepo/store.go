// Package gormrepo is the hosted relational store: the same Store contract as
// repo.Repo, backed by postgres through gorm.
package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stageline/internal/domain"
	"stageline/internal/repo"
)

type Store struct {
	DB *gorm.DB
}

// Open connects to postgres, retrying while the database comes up, and
// migrates the schema.
func Open(dsn string, attempts int, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	if attempts < 1 {
		attempts = 1
	}
	var (
		db  *gorm.DB
		err error
	)
	for i := 1; i <= attempts; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		logger.Printf("connect to postgres (attempt %d/%d): %v", i, attempts, err)
		if i < attempts {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return newStore(db)
}

// newStore migrates db and closes it again if that fails.
func newStore(db *gorm.DB) (*Store, error) {
	s := &Store{DB: db}
	if err := s.Migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Migrate() error {
	if err := s.DB.AutoMigrate(&employeeRow{}, &locationRow{}, &projectRow{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) withJoins(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).
		Preload("Location").
		Preload("Surveyor").
		Preload("DesignOwner").
		Preload("ProjectManager").
		Preload("BiddingOwner").
		Preload("PMOwner")
}

func (s *Store) ListProjects(ctx context.Context) ([]domain.ProjectView, error) {
	var rows []projectRow
	if err := s.withJoins(ctx).Order("id desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ProjectView, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.view())
	}
	return out, nil
}

func (s *Store) GetProject(ctx context.Context, id int64) (domain.ProjectView, error) {
	var row projectRow
	if err := s.withJoins(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ProjectView{}, repo.ErrNotFound
		}
		return domain.ProjectView{}, err
	}
	return row.view(), nil
}

func (s *Store) InsertProject(ctx context.Context, p domain.Project) (int64, error) {
	row := toRow(p)
	row.ID = 0
	if err := s.DB.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

// UpdateProject writes every column, zero values included, so cleared fields
// are stored as NULL.
func (s *Store) UpdateProject(ctx context.Context, p domain.Project) error {
	row := toRow(p)
	res := s.DB.WithContext(ctx).
		Model(&projectRow{ID: p.ID}).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(&row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res := s.DB.WithContext(ctx).Delete(&projectRow{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	var rows []employeeRow
	if err := s.DB.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Employee, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Employee{ID: r.ID, FirstName: r.FirstName, LastName: r.LastName})
	}
	return out, nil
}

func (s *Store) InsertEmployee(ctx context.Context, e domain.Employee) (int64, error) {
	row := employeeRow{FirstName: e.FirstName, LastName: e.LastName}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (s *Store) ListLocations(ctx context.Context) ([]domain.Location, error) {
	var rows []locationRow
	if err := s.DB.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Location, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Location{ID: r.ID, SiteName: r.SiteName, Activity: r.Activity})
	}
	return out, nil
}

func (s *Store) InsertLocation(ctx context.Context, l domain.Location) (int64, error) {
	row := locationRow{SiteName: l.SiteName, Activity: l.Activity}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
