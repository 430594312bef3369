package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ZanzyTHEbar/teamconstructor/internal/database"
	"github.com/ZanzyTHEbar/teamconstructor/internal/encoding"
	"github.com/ZanzyTHEbar/teamconstructor/internal/export"
	"github.com/ZanzyTHEbar/teamconstructor/internal/journal"
	"github.com/ZanzyTHEbar/teamconstructor/internal/psychology"
)

const mixedJSON = `[[5,-2,0,0,0],[1,-1,0,0,0],[3,-4,0,0,0],[7,0,0,0,0],[6,-3,0,0,0]]`

var mixedMatrix = psychology.Matrix{
	{5, -2, 0, 0, 0},
	{1, -1, 0, 0, 0},
	{3, -4, 0, 0, 0},
	{7, 0, 0, 0, 0},
	{6, -3, 0, 0, 0},
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScore(t *testing.T) {
	encoded, err := encoding.Encode(psychology.DecodedData{PersonalInfo: []int{1}, Matrix: mixedMatrix})
	require.NoError(t, err)

	for _, subject := range []string{mixedJSON, encoded} {
		out, err := run(t, "", "score", subject)
		require.NoError(t, err)

		var got struct {
			Result psychology.UserResult `json:"result"`
			Passed bool                  `json:"passed"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, "b1", got.Result.MainOctant.Code)
		assert.True(t, got.Passed)
	}

	out, err := run(t, "", "score", "--threshold", "20", mixedJSON)
	require.NoError(t, err)
	assert.Contains(t, out, `"passed": false`)

	_, err = run(t, "", "score", "not-a-subject")
	assert.Error(t, err)
}

func TestAnswers(t *testing.T) {
	answers := make([]psychology.RawAnswer, psychology.AnswerCount)
	for k := range answers {
		answers[k] = psychology.RawAnswer{ID: fmt.Sprintf("q%d", k+1), Value: "1"}
	}
	raw, err := json.Marshal(answers)
	require.NoError(t, err)

	out, err := run(t, string(raw), "answers", "--personal-info", "1,2")
	require.NoError(t, err)

	var got struct {
		Matrix  psychology.Matrix `json:"matrix"`
		Encoded string            `json:"encoded"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3, got.Matrix[0][0], "each cell sums three answers")
	assert.True(t, encoding.Decode(got.Encoded).Valid())

	answers[10].Value = ""
	raw, _ = json.Marshal(answers)
	_, err = run(t, string(raw), "answers")
	assert.EqualError(t, err, "question 11 is not answered")
}

func TestPairAndTeam(t *testing.T) {
	out, err := run(t, "", "pair", mixedJSON, mixedJSON)
	require.NoError(t, err)
	var pair psychology.PairSummary
	require.NoError(t, json.Unmarshal([]byte(out), &pair))
	assert.Equal(t, psychology.NewPair(mixedMatrix, mixedMatrix).Understanding(), pair.Understanding)

	out, err = run(t, "", "team", mixedJSON, mixedJSON, mixedJSON)
	require.NoError(t, err)
	var team psychology.TeamSummary
	require.NoError(t, json.Unmarshal([]byte(out), &team))
	assert.Equal(t, 3, team.Size)

	_, err = run(t, "", "team")
	assert.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	out, err := run(t, "", "encode", "--personal-info", "4,5", mixedJSON)
	require.NoError(t, err)
	var encoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &encoded))

	out, err = run(t, "", "decode", encoded["encoded"])
	require.NoError(t, err)
	var payload encoding.Payload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.True(t, payload.Valid())
	assert.Equal(t, []int{4, 5}, payload.Data.PersonalInfo)
	assert.Equal(t, mixedMatrix, payload.Data.Matrix)

	out, err = run(t, "", "decode", "garbage")
	require.NoError(t, err)
	assert.JSONEq(t, `{"encoded":null,"decoded":null,"data":null}`, out)

	_, err = run(t, "", "encode", mixedJSON)
	assert.Error(t, err, "personal info is required")
}

func TestStorageCommands(t *testing.T) {
	dir := t.TempDir()

	db, err := database.NewDB(dir)
	require.NoError(t, err)
	results := database.NewResultService(database.NewRepository(db), psychology.TestThreshold, psychology.DefaultDiff)
	_, err = results.Submit(context.Background(), database.Submission{
		FullName: "Ola",
		Data:     psychology.DecodedData{PersonalInfo: []int{1}, Matrix: mixedMatrix},
		Duration: 5 * time.Minute,
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	staff, err := journal.New(dir)
	require.NoError(t, err)
	_, err = staff.Append(journal.Entry{Teammate: "Ola", Data: psychology.DecodedData{PersonalInfo: []int{1}, Matrix: mixedMatrix}})
	require.NoError(t, err)

	workbook := filepath.Join(dir, "out.xlsx")
	out, err := run(t, "", "export", "--data-dir", dir, "-o", workbook)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 results")

	f, err := excelize.OpenFile(workbook)
	require.NoError(t, err)
	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.Len(t, rows, 2)
	assert.Equal(t, "Ola", rows[1][1])

	out, err = run(t, "", "journal", "--data-dir", dir)
	require.NoError(t, err)
	var records []journal.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Ola", records[0].Teammate)

	out, err = run(t, "", "purge", "--data-dir", dir, "--days", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Purged 0 results")

	_, err = run(t, "", "purge", "--data-dir", dir, "--days", "0")
	assert.Error(t, err)
}
