package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sprintr-app/sprintr-api/internal/constants"
	"github.com/sprintr-app/sprintr-api/internal/models"
	"github.com/sprintr-app/sprintr-api/internal/repository"
)

func TestBuildProjectCode(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"two words use initials", "Sprint Runner", "SR"},
		{"extra words are ignored", "My Big Project", "MB"},
		{"single word uses consonant after vowel", "Task", "TS"},
		{"single letter falls back to K", "A", "AK"},
		{"punctuation is stripped", "  sprint!  runner? ", "SR"},
		{"digits only falls back to default", "1234", "TK"},
		{"empty name falls back to default", "", "TK"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BuildProjectCode(tc.in))
		})
	}
}

func TestNextTaskCode(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Task{}))

	tasks := repository.NewTaskRepository(db)
	projectID := "11111111-1111-1111-1111-111111111111"

	seed := func(name string) {
		require.NoError(t, db.Create(&models.Task{
			WorkspaceID: "22222222-2222-2222-2222-222222222222",
			ProjectID:   projectID,
			AssigneeID:  "33333333-3333-3333-3333-333333333333",
			Name:        name,
			Summary:     "seed",
			Status:      models.TaskStatusTodo,
			WorkType:    models.WorkTypeTask,
			Position:    constants.MinTaskPosition,
		}).Error)
	}

	code, err := NextTaskCode(tasks, projectID, "AB")
	require.NoError(t, err)
	assert.Equal(t, "AB-01", code)

	seed("AB-01")
	seed("AB-02")

	code, err = NextTaskCode(tasks, projectID, "AB")
	require.NoError(t, err)
	assert.Equal(t, "AB-03", code)

	// Codes with another prefix or a malformed suffix do not advance the
	// counter.
	seed("XY-09")
	seed("AB-extra")

	code, err = NextTaskCode(tasks, projectID, "AB")
	require.NoError(t, err)
	assert.Equal(t, "AB-03", code)

	// Past 99 the zero padding widens instead of wrapping.
	seed("AB-99")

	code, err = NextTaskCode(tasks, projectID, "AB")
	require.NoError(t, err)
	assert.Equal(t, "AB-100", code)
}
