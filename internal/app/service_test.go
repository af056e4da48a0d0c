package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/markbook/internal/models"
	"github.com/shrimpsizemoose/markbook/internal/scoring"
)

func indentedRows() []models.Row {
	return []models.Row{
		{Discriminator: "margin-left: 0px", Denominator: "100", Weight: "1", Source: "course"},
		{Discriminator: "margin-left: 20px", Denominator: "50", Weight: "1", Source: "unit"},
		{Discriminator: "margin-left: 40px", Mark: "15", Denominator: "20", Weight: "1", Source: "quiz"},
	}
}

func newTestService(t *testing.T, dsn string) *Service {
	t.Helper()

	config := DefaultConfig()
	config.Database.DSN = dsn
	config.Database.MigrationsDir = "../../migrations"

	service, err := NewServiceFromConfig(config)
	require.NoError(t, err)
	t.Cleanup(func() { service.Close() })
	return service
}

func TestService_Recalculate(t *testing.T) {
	service := newTestService(t, "")
	ctx := context.Background()

	t.Run("explicit encoding", func(t *testing.T) {
		result, err := service.Recalculate(ctx, "", "BIO20", "indented", indentedRows())
		require.NoError(t, err)
		require.NotNil(t, result.FinalMark)
		assert.Equal(t, 75.0, *result.FinalMark)
	})

	t.Run("configured encoding does not know indents", func(t *testing.T) {
		_, err := service.Recalculate(ctx, "", "BIO20", "", indentedRows())
		var serr *scoring.StructureError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, 0, serr.Position)
	})

	t.Run("unknown encoding", func(t *testing.T) {
		_, err := service.Recalculate(ctx, "", "BIO20", "coloured", indentedRows())
		assert.Error(t, err)
	})
}

func TestService_CaptureBaseline(t *testing.T) {
	service := newTestService(t, "")
	ctx := context.Background()

	session, err := service.CaptureBaseline(ctx, "", "BIO20", "70%")
	require.NoError(t, err)
	assert.NotEmpty(t, session)

	same, err := service.CaptureBaseline(ctx, session, "BIO20", "10%")
	require.NoError(t, err)
	assert.Equal(t, session, same)

	result, err := service.Recalculate(ctx, session, "BIO20", "indented", indentedRows())
	require.NoError(t, err)
	require.NotNil(t, result.Delta)
	assert.Equal(t, 5.0, *result.Delta)
}

func TestService_RecalculateStored(t *testing.T) {
	ctx := context.Background()

	t.Run("without database", func(t *testing.T) {
		service := newTestService(t, "")
		_, err := service.RecalculateStored(ctx, "s1", "BIO20")
		assert.ErrorIs(t, err, ErrNoRowSource)
	})

	t.Run("course encoding wins over config", func(t *testing.T) {
		service := newTestService(t, filepath.Join(t.TempDir(), "markbook.db"))
		require.NoError(t, service.Store.SaveSnapshot(models.Markbook{
			Course: models.Course{Code: "BIO20", InitialMark: "72.5", DepthEncoding: "indented"},
			Rows:   indentedRows(),
		}))

		result, err := service.RecalculateStored(ctx, "s1", "BIO20")
		require.NoError(t, err)
		require.NotNil(t, result.Baseline)
		assert.Equal(t, 72.5, *result.Baseline)
		require.NotNil(t, result.Delta)
		assert.Equal(t, 2.5, *result.Delta)
	})

	t.Run("missing course", func(t *testing.T) {
		service := newTestService(t, filepath.Join(t.TempDir(), "markbook.db"))
		_, err := service.RecalculateStored(ctx, "s1", "BIO20")
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}

func TestService_Summary(t *testing.T) {
	ctx := context.Background()

	t.Run("without database", func(t *testing.T) {
		service := newTestService(t, "")
		_, err := service.Summary(ctx, "")
		assert.ErrorIs(t, err, ErrNoRowSource)
	})

	t.Run("empty database has no average", func(t *testing.T) {
		service := newTestService(t, filepath.Join(t.TempDir(), "markbook.db"))
		summary, err := service.Summary(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, summary.Courses)
		assert.Nil(t, summary.Average)
	})

	t.Run("averages defined marks only", func(t *testing.T) {
		service := newTestService(t, filepath.Join(t.TempDir(), "markbook.db"))
		snapshots := []models.Markbook{
			{
				Course: models.Course{Code: "BIO20", Name: "Biology 20", DepthEncoding: "indented"},
				Rows:   indentedRows(),
			},
			{
				Course: models.Course{Code: "MATH30", Name: "Mathematics 30-1", InitialMark: "85"},
				Rows: []models.Row{
					{Discriminator: "table-primary", Denominator: "100", Weight: "1", Source: "course"},
					{Mark: "9", Denominator: "10", Weight: "1", Source: "quiz"},
				},
			},
			{
				Course: models.Course{Code: "ART10", Name: "Art 10"},
				Rows: []models.Row{
					{Discriminator: "table-primary", Denominator: "100", Weight: "1", Source: "course"},
					{Mark: "EXC", Denominator: "10", Weight: "1", Source: "piece"},
				},
			},
			{
				Course: models.Course{Code: "CHEM20", Name: "Chemistry 20"},
				Rows: []models.Row{
					{Mark: "9", Denominator: "10", Weight: "1", Source: "lab"},
				},
			},
		}
		for _, mb := range snapshots {
			require.NoError(t, service.Store.SaveSnapshot(mb))
		}

		summary, err := service.Summary(ctx, "s1")
		require.NoError(t, err)

		marks := map[string]*float64{}
		for _, c := range summary.Courses {
			marks[c.Course] = c.FinalMark
		}
		require.Len(t, marks, 4)
		assert.Nil(t, marks["ART10"])
		assert.Nil(t, marks["CHEM20"])
		require.NotNil(t, marks["BIO20"])
		assert.Equal(t, 75.0, *marks["BIO20"])
		require.NotNil(t, marks["MATH30"])
		assert.Equal(t, 90.0, *marks["MATH30"])

		require.NotNil(t, summary.Average)
		assert.Equal(t, 82.5, *summary.Average)
		assert.Equal(t, "82.50", summary.AverageText)

		for _, c := range summary.Courses {
			if c.Course == "MATH30" {
				require.NotNil(t, c.Delta)
				assert.Equal(t, 5.0, *c.Delta)
			}
		}
	})
}
