package store

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"registrar/internal/record/models"
	"registrar/pkg/platform/sentinel"
)

// Delimiter separates fields on a line. Fields are not escaped, so a field
// containing the delimiter produces a line that will not decode.
const Delimiter = ";"

const fieldCount = 5

// maxLineSize bounds a single line; longer lines fail the whole read.
const maxLineSize = 1 << 20

var (
	// ErrMalformedLine is returned by DecodeLine for lines without exactly five fields.
	ErrMalformedLine = fmt.Errorf("record line: %w", sentinel.ErrMalformed)
	// ErrLineBreak is returned by CheckEncodable when a field would split its line.
	ErrLineBreak = fmt.Errorf("record field contains a line break: %w", sentinel.ErrMalformed)
)

// CheckEncodable reports whether every field fits on a single line.
func CheckEncodable(rec *models.Record) error {
	for _, field := range rec.Fields() {
		if strings.ContainsAny(field, "\r\n") {
			return ErrLineBreak
		}
	}
	return nil
}

// EncodeLine joins the record's fields in name;id;gender;province;date-of-birth order.
// Callers check the record with CheckEncodable first.
func EncodeLine(rec *models.Record) string {
	return strings.Join(rec.Fields(), Delimiter)
}

// DecodeLine parses one persisted line. Trailing empty fields are dropped
// before counting, so "a;b;c;d;" has four fields and "a;b;c;d;e;" has five.
func DecodeLine(line string) (*models.Record, error) {
	parts := strings.Split(line, Delimiter)
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) != fieldCount {
		return nil, fmt.Errorf("%w: got %d fields, want %d", ErrMalformedLine, len(parts), fieldCount)
	}
	return &models.Record{
		Name:        parts[0],
		ID:          parts[1],
		Gender:      models.Gender(parts[2]),
		Province:    models.Province(parts[3]),
		DateOfBirth: parts[4],
	}, nil
}

// ReadRecords parses every line of r, keyed by identifier. Blank lines are
// ignored; lines with the wrong field count are skipped and counted. A later
// line replaces an earlier one with the same identifier.
func ReadRecords(r io.Reader) (map[string]*models.Record, int, error) {
	records := make(map[string]*models.Record)
	skipped := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		rec, err := DecodeLine(line)
		if err != nil {
			skipped++
			continue
		}
		records[rec.ID] = rec
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("scan records: %w", err)
	}
	return records, skipped, nil
}

// WriteRecords writes one line per record in identifier order.
func WriteRecords(w io.Writer, records []*models.Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := bw.WriteString(EncodeLine(rec)); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush records: %w", err)
	}
	return nil
}

// sortedRecords returns clones of the map's values ordered by identifier.
func sortedRecords(records map[string]*models.Record) []*models.Record {
	out := make([]*models.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
