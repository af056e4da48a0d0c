package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/markbook/internal/baseline"
	"github.com/shrimpsizemoose/markbook/internal/metrics"
	"github.com/shrimpsizemoose/markbook/internal/models"
	"github.com/shrimpsizemoose/markbook/internal/rowsource"
	"github.com/shrimpsizemoose/markbook/internal/scoring"
	"github.com/shrimpsizemoose/markbook/internal/store"
)

var (
	ErrNoRowSource    = errors.New("no markbook database configured")
	ErrCourseNotFound = errors.New("course not found")
)

type Service struct {
	Config    *Config
	Store     store.RowStore
	Baselines baseline.Store

	aggregator *scoring.Aggregator
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewServiceFromConfig(config)
}

func NewServiceFromConfig(config *Config) (*Service, error) {
	baselines, err := NewBaselineStore(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init baseline store: %w", err)
	}

	var rowStore store.RowStore
	if config.Database.DSN != "" {
		rowStore, err = NewStore(config.Database.DSN, config.Database.MigrationsDir)
		if err != nil {
			baselines.Close()
			return nil, fmt.Errorf("failed to init store: %w", err)
		}
	}

	return NewServiceWith(config, rowStore, baselines), nil
}

// NewServiceWith wires already constructed stores; rowStore may be nil.
func NewServiceWith(config *Config, rowStore store.RowStore, baselines baseline.Store) *Service {
	return &Service{
		Config:     config,
		Store:      rowStore,
		Baselines:  baselines,
		aggregator: scoring.NewAggregator(config.Markbook.ExcusedSentinels),
	}
}

// Recalculator returns a recalculator for the given depth encoding, or the configured one when empty.
func (s *Service) Recalculator(encoding string) (*scoring.Recalculator, error) {
	if encoding == "" {
		encoding = s.Config.Markbook.DepthEncoding
	}
	decoder, err := rowsource.ForEncoding(encoding)
	if err != nil {
		return nil, err
	}
	logger.Debug.Printf("Reading row depth as %s", decoder.Encoding())
	return scoring.NewRecalculator(decoder, s.aggregator, s.Config.Markbook.RoundingPrecision, s.Baselines), nil
}

func (s *Service) Recalculate(ctx context.Context, session, course, encoding string, rows []models.Row) (*models.FinalResult, error) {
	r, err := s.Recalculator(encoding)
	if err != nil {
		return nil, err
	}

	result, err := r.Recalculate(ctx, session, course, rows)
	var serr *scoring.StructureError
	if errors.As(err, &serr) {
		metrics.RecalculationsTotal.WithLabelValues(course, "structure_error").Inc()
		logger.Error.Printf("Markbook %s has a broken row source: %v", course, serr)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if result.FinalMark == nil {
		metrics.RecalculationsTotal.WithLabelValues(course, "undefined").Inc()
		return result, nil
	}

	metrics.RecalculationsTotal.WithLabelValues(course, "ok").Inc()
	metrics.FinalMarkHistogram.WithLabelValues(course).Observe(*result.FinalMark)
	return result, nil
}

// RecalculateStored recalculates a course from the row source. The course's
// initial mark becomes the session baseline unless one was captured already.
func (s *Service) RecalculateStored(ctx context.Context, session, course string) (*models.FinalResult, error) {
	if s.Store == nil {
		return nil, ErrNoRowSource
	}

	c, err := s.Store.GetCourse(course)
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrCourseNotFound, course)
	}

	rows, err := s.Store.ListRows(course)
	if err != nil {
		return nil, fmt.Errorf("failed to load rows: %w", err)
	}

	if session != "" && c.InitialMark != "" {
		if _, err := s.CaptureBaseline(ctx, session, course, c.InitialMark); err != nil {
			logger.Error.Printf("Failed to capture baseline for %s/%s: %v", session, course, err)
		}
	}

	return s.Recalculate(ctx, session, course, c.DepthEncoding, rows)
}

// Summary recalculates every stored course and averages the final marks that are defined.
// A course with a broken row source is listed without a mark.
func (s *Service) Summary(ctx context.Context, session string) (*models.Summary, error) {
	if s.Store == nil {
		return nil, ErrNoRowSource
	}

	courses, err := s.Store.ListCourses()
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	precision := s.Config.Markbook.RoundingPrecision
	summary := &models.Summary{
		Precision: precision,
		Courses:   make([]models.CourseMark, 0, len(courses)),
	}

	var total float64
	var counted int
	for _, c := range courses {
		line := models.CourseMark{Course: c.Code, Name: c.Name}

		result, err := s.RecalculateStored(ctx, session, c.Code)
		var serr *scoring.StructureError
		switch {
		case errors.As(err, &serr):
			logger.Error.Printf("Leaving %s out of the summary: %v", c.Code, serr)
		case err != nil:
			return nil, err
		default:
			line.FinalMark = result.FinalMark
			line.FinalMarkText = result.FinalMarkText
			line.Delta = result.Delta
		}

		if line.FinalMark != nil {
			total += *line.FinalMark
			counted++
		}
		summary.Courses = append(summary.Courses, line)
	}

	if counted > 0 {
		average := scoring.Round(total/float64(counted), precision)
		summary.Average = &average
		summary.AverageText = scoring.FormatMark(average, precision)
	}

	logger.Debug.Printf("Summary over %d of %d courses", counted, len(courses))
	return summary, nil
}

// CaptureBaseline stores the displayed grade for a session, starting a new session when none is given.
func (s *Service) CaptureBaseline(ctx context.Context, session, course, displayed string) (string, error) {
	if session == "" {
		session = uuid.NewString()
	}

	r, err := s.Recalculator("")
	if err != nil {
		return "", err
	}

	stored, err := r.CaptureBaseline(ctx, session, course, displayed)
	if err != nil {
		return "", fmt.Errorf("failed to capture baseline: %w", err)
	}
	if stored {
		logger.Debug.Printf("Captured baseline %q for %s/%s", displayed, session, course)
	}
	return session, nil
}

func (s *Service) Close() error {
	var errs []error

	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.Baselines != nil {
		if err := s.Baselines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("baselines: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
