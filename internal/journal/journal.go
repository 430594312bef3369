package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/teamconstructor/internal/encoding"
	"github.com/ZanzyTHEbar/teamconstructor/internal/psychology"
)

const (
	// FileName is the journal file inside the data dir
	FileName   = "staff.csv"
	dateLayout = "02-01-2006"
)

// Entry is one finished questionnaire as reported by the client
type Entry struct {
	Teammate string
	Data     psychology.DecodedData
	Start    time.Time
	End      time.Time
}

// Record is a parsed journal line
type Record struct {
	Teammate string `json:"teammate"`
	Date     string `json:"date"`
	Duration string `json:"duration"`
	EncData  string `json:"encData"`
}

// Journal appends submissions to a CSV file, one line per entry:
// teammate,dd-MM-yyyy,Hh:Mmin:Ssec,encData
type Journal struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// New creates the journal in dir
func New(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	return &Journal{path: filepath.Join(dir, FileName), now: time.Now}, nil
}

// Path returns the journal file location
func (j *Journal) Path() string {
	return j.path
}

// FormatDuration renders the elapsed time as Hh:Mmin:Ssec. Whole days are
// dropped, like a calendar interval split into its parts.
func FormatDuration(start, end time.Time) string {
	d := end.Sub(start)
	if d < 0 {
		d = -d
	}
	total := int64(d / time.Second)
	hours := (total / 3600) % 24
	minutes := (total / 60) % 60
	seconds := total % 60
	return fmt.Sprintf("%dh:%dmin:%dsec", hours, minutes, seconds)
}

// Append writes one entry
func (j *Journal) Append(entry Entry) (Record, error) {
	encData, err := encoding.Encode(entry.Data)
	if err != nil {
		return Record{}, err
	}

	record := Record{
		Teammate: strings.TrimSpace(entry.Teammate),
		Date:     j.now().Format(dateLayout),
		Duration: FormatDuration(entry.Start, entry.End),
		EncData:  encData,
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return Record{}, fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{record.Teammate, record.Date, record.Duration, record.EncData}); err != nil {
		return Record{}, fmt.Errorf("failed to write journal entry: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Record{}, fmt.Errorf("failed to write journal entry: %w", err)
	}

	return record, nil
}

// Records reads the whole journal. A missing file has no records.
func (j *Journal) Records() ([]Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	return readRecords(f)
}

func readRecords(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 4

	records := []Record{}
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read journal: %w", err)
		}
		records = append(records, Record{
			Teammate: fields[0],
			Date:     fields[1],
			Duration: fields[2],
			EncData:  fields[3],
		})
	}
}
