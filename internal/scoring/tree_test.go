package scoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/markbook/internal/models"
	"github.com/shrimpsizemoose/markbook/internal/rowsource"
)

func row(depth, name string) models.Row {
	return models.Row{Discriminator: depth, Name: name}
}

const (
	labelTop    = "table-primary"
	labelMiddle = "table-active"
	labelBottom = ""
)

func TestBuild(t *testing.T) {
	rows := []models.Row{
		row(labelTop, "Unit 1"),
		row(labelMiddle, "Quizzes"),
		row(labelBottom, "Quiz 1"),
		row(labelBottom, "Quiz 2"),
		row(labelMiddle, "Tests"),
		row(labelBottom, "Test 1"),
		row(labelTop, "Unit 2"),
		row(labelBottom, "Project"),
		row(labelTop, "Final"),
	}

	roots, err := Build(rows, rowsource.Labelled{})
	require.NoError(t, err)
	require.Len(t, roots, 3)

	unit1 := roots[0]
	assert.Equal(t, "Unit 1", unit1.Name)
	require.Len(t, unit1.Children, 2)
	assert.Equal(t, "Quizzes", unit1.Children[0].Name)
	assert.Len(t, unit1.Children[0].Children, 2)
	assert.Equal(t, "Test 1", unit1.Children[1].Children[0].Name)
	assert.Equal(t, models.DepthBottom, unit1.Children[1].Children[0].Depth)

	t.Run("items without a section attach to the course", func(t *testing.T) {
		unit2 := roots[1]
		require.Len(t, unit2.Children, 1)
		assert.Equal(t, "Project", unit2.Children[0].Name)
		assert.True(t, unit2.Children[0].Leaf())
	})

	t.Run("a new course resets the current section", func(t *testing.T) {
		assert.True(t, roots[2].Leaf())
		assert.Equal(t, 8, roots[2].Position)
	})
}

func TestBuild_StructureErrors(t *testing.T) {
	testCases := []struct {
		name          string
		rows          []models.Row
		position      int
		discriminator string
	}{
		{
			name:          "section before course",
			rows:          []models.Row{row(labelMiddle, "Quizzes"), row(labelTop, "Unit 1")},
			position:      0,
			discriminator: labelMiddle,
		},
		{
			name:          "item before course",
			rows:          []models.Row{row(labelBottom, "Quiz 1")},
			position:      0,
			discriminator: labelBottom,
		},
		{
			name:          "unknown discriminator",
			rows:          []models.Row{row(labelTop, "Unit 1"), row(labelMiddle, "Quizzes"), row("table-warning", "??")},
			position:      2,
			discriminator: "table-warning",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			roots, err := Build(tc.rows, rowsource.Labelled{})
			assert.Nil(t, roots)

			var serr *StructureError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, tc.position, serr.Position)
			assert.Equal(t, tc.discriminator, serr.Discriminator)
		})
	}
}

func TestBuild_Indented(t *testing.T) {
	rows := []models.Row{
		row("margin-left: 0px", "Unit 1"),
		row("margin-left: 40px", "Essay"),
		row("margin-left: 20px", "Labs"),
		row("margin-left: 40px", "Lab 1"),
	}

	roots, err := Build(rows, rowsource.Indented{})
	require.NoError(t, err)
	require.Len(t, roots, 1)
	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, "Essay", roots[0].Children[0].Name)
	assert.Equal(t, "Lab 1", roots[0].Children[1].Children[0].Name)

	_, err = Build([]models.Row{row("table-primary", "Unit 1")}, rowsource.Indented{})
	assert.Error(t, err)
}
