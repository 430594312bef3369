package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ZanzyTHEbar/teamconstructor/internal/database"
	"github.com/ZanzyTHEbar/teamconstructor/internal/psychology"
)

var mixedMatrix = psychology.Matrix{
	{5, -2, 0, 0, 0},
	{1, -1, 0, 0, 0},
	{3, -4, 0, 0, 0},
	{7, 0, 0, 0, 0},
	{6, -3, 0, 0, 0},
}

func sampleResults() []database.DecodedResult {
	createdAt := time.Date(2024, 5, 7, 9, 15, 0, 0, time.UTC)
	result := psychology.NewUserResult(mixedMatrix, psychology.DefaultDiff)

	return []database.DecodedResult{
		{
			TestResult: &database.TestResult{
				ID:         7,
				FullName:   "Anna Li",
				Email:      "anna@example.com",
				DurationMs: (12*time.Minute + 3*time.Second).Milliseconds(),
				CreatedAt:  createdAt,
			},
			Data:   &psychology.DecodedData{PersonalInfo: []int{1}, Matrix: mixedMatrix},
			Result: &result,
			Passed: true,
		},
		{
			TestResult: &database.TestResult{ID: 8, FullName: "Broken", CreatedAt: createdAt},
		},
	}
}

func TestHeaders(t *testing.T) {
	headers := Headers()
	require.Len(t, headers, 16)
	assert.Equal(t, "ID", headers[0])
	assert.Equal(t, "A1", headers[8])
	assert.Equal(t, "b2", headers[15])
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleResults()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Headers(), rows[0])
	assert.Equal(t, []string{
		"7", "Anna Li", "anna@example.com", "07.05.2024 09:15", "0h:12min:3sec", "b1", "10.61", "yes",
		"1.06", "2.12", "2.12", "1.06", "1.41", "7.07", "10.61", "2.12",
	}, rows[1])
	assert.Equal(t, []string{"8", "Broken", "", "07.05.2024 09:15", "0h:0min:0sec"}, rows[2])
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, WriteFile(path, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Headers(), rows[0])
}
