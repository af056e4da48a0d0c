// internal/store/sqlite/store_test.go
package sqlite

import (
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/markbook/internal/models"
	"github.com/shrimpsizemoose/markbook/internal/store"
)

// setupTestDB creates an in-memory SQLite database with the project migrations applied
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(&store.DBConfig{
		DSN:           ":memory:",
		Type:          store.DBTypeSQLite,
		MigrationsDir: "../../../migrations",
	})
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

func testMarkbook() models.Markbook {
	return models.Markbook{
		Course: models.Course{
			Code:          "MATH30",
			Name:          "Mathematics 30-1",
			InitialMark:   "87.50",
			DepthEncoding: "labelled",
		},
		Rows: []models.Row{
			{Name: "Unit 1", Discriminator: "table-primary", Denominator: "100", Weight: "1", Source: "r0"},
			{Name: "Quizzes", Discriminator: "table-active", Denominator: "30", Weight: "1", Source: "r1"},
			{Name: "Quiz 1", Mark: "8", Denominator: "10", Weight: "1", Source: "r2"},
			{Name: "Quiz 2", Mark: "EXC", Denominator: "10", Weight: "1", Source: "r3", Hidden: true},
		},
	}
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	mb := testMarkbook()

	t.Run("save snapshot", func(t *testing.T) {
		err := s.SaveSnapshot(mb)
		require.NoError(t, err, "Failed to save snapshot")
	})

	t.Run("get course", func(t *testing.T) {
		got, err := s.GetCourse("MATH30")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, mb.Course, *got)
	})

	t.Run("rows come back in display order", func(t *testing.T) {
		rows, err := s.ListRows("MATH30")
		require.NoError(t, err)
		assert.Equal(t, mb.Rows, rows)
	})
}

func TestSnapshotReplacesRows(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	mb := testMarkbook()
	require.NoError(t, s.SaveSnapshot(mb))

	mb.InitialMark = "88.00"
	mb.Rows = mb.Rows[:2]
	require.NoError(t, s.SaveSnapshot(mb))

	rows, err := s.ListRows("MATH30")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	courses, err := s.ListCourses()
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "88.00", courses[0].InitialMark)
}

func TestMissingCourse(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	got, err := s.GetCourse("not.exists")
	require.NoError(t, err)
	assert.Nil(t, got)

	rows, err := s.ListRows("not.exists")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
