package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/markbook/internal/models"
)

// RowStore is the row source: markbook snapshots as they were scraped, one per course.
type RowStore interface {
	Close() error
	ApplyMigrations(dir string) error

	GetCourse(course string) (*models.Course, error)
	ListCourses() ([]models.Course, error)
	ListRows(course string) ([]models.Row, error)
	SaveSnapshot(markbook models.Markbook) error
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	names := make([]string, 0, len(files))
	for _, file := range files {
		if strings.HasSuffix(file.Name(), ".sql") {
			names = append(names, file.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		logger.Info.Printf("Applying migration: %s", name)
		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *BaseStore) GetCourse(course string) (*models.Course, error) {
	var c models.Course
	query := s.Converter(`
		SELECT course, name, initial_mark, depth_encoding
		FROM markbook_courses
		WHERE course = ?
	`)

	err := s.DB.Get(&c, query, course)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course %s: %w", course, err)
	}
	return &c, nil
}

func (s *BaseStore) ListCourses() ([]models.Course, error) {
	var courses []models.Course
	err := s.DB.Select(&courses, `
		SELECT course, name, initial_mark, depth_encoding
		FROM markbook_courses
		ORDER BY course
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (s *BaseStore) ListRows(course string) ([]models.Row, error) {
	var rows []models.Row
	query := s.Converter(`
		SELECT
			name,
			depth,
			mark,
			denominator,
			weight,
			hidden,
			source
		FROM markbook_rows
		WHERE course = ?
		ORDER BY position ASC
	`)

	if err := s.DB.Select(&rows, query, course); err != nil {
		return nil, fmt.Errorf("failed to list rows for %s: %w", course, err)
	}
	return rows, nil
}

type rowRecord struct {
	Course   string `db:"course"`
	Position int    `db:"position"`
	models.Row
}

// SaveSnapshot replaces the stored rows of a course with a freshly scraped markbook.
func (s *BaseStore) SaveSnapshot(markbook models.Markbook) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExec(`
		INSERT INTO markbook_courses (course, name, initial_mark, depth_encoding)
		VALUES (:course, :name, :initial_mark, :depth_encoding)
		ON CONFLICT(course) DO UPDATE SET
		name = :name,
		initial_mark = :initial_mark,
		depth_encoding = :depth_encoding
	`, markbook.Course); err != nil {
		return fmt.Errorf("failed to upsert course %s: %w", markbook.Code, err)
	}

	if _, err := tx.Exec(s.Converter(`DELETE FROM markbook_rows WHERE course = ?`), markbook.Code); err != nil {
		return fmt.Errorf("failed to clear rows of %s: %w", markbook.Code, err)
	}

	for i, row := range markbook.Rows {
		rec := rowRecord{Course: markbook.Code, Position: i, Row: row}
		if _, err := tx.NamedExec(`
			INSERT INTO markbook_rows (course, position, name, depth, mark, denominator, weight, hidden, source)
			VALUES (:course, :position, :name, :depth, :mark, :denominator, :weight, :hidden, :source)
		`, rec); err != nil {
			return fmt.Errorf("failed to insert row %d of %s: %w", i, markbook.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot of %s: %w", markbook.Code, err)
	}
	return nil
}
