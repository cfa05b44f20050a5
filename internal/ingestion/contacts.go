package ingestion

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/avisanghavi/clout/internal/schemas"
	"github.com/avisanghavi/clout/internal/types"
)

// CSV column names
const (
	ColumnName       = "name"
	ColumnTrustScore = "trust_score"
	ColumnNotes      = "notes"
)

// contactRecord is the JSON form of a trusted contact with optional fields.
type contactRecord struct {
	Name       string  `json:"name"`
	TrustScore *int    `json:"trust_score"`
	Notes      *string `json:"notes"`
}

// ParseContactsJSON parses a JSON array of trusted contacts, applying defaults.
func ParseContactsJSON(data []byte) ([]types.TrustedContact, error) {
	if err := schemas.Validate(schemas.TrustedContacts, data); err != nil {
		return nil, &ValidationError{Message: "trusted network does not match schema", Cause: err}
	}

	var records []contactRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &ValidationError{Message: "failed to parse trusted network", Cause: err}
	}

	contacts := make([]types.TrustedContact, 0, len(records))
	for i, r := range records {
		c := types.TrustedContact{Name: r.Name, TrustScore: types.DefaultTrustScore}
		if r.TrustScore != nil {
			c.TrustScore = *r.TrustScore
		}
		if r.Notes != nil {
			c.Notes = normalizeNotes(*r.Notes)
		}
		if err := checkContact(i+1, c); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

// ParseContactsCSV reads a CSV with a mandatory name column and optional trust_score and notes
// columns. Header names are matched case-insensitively. Any invalid row aborts the import.
func ParseContactsCSV(r io.Reader) ([]types.TrustedContact, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ValidationError{Field: ColumnName, Message: "missing header row"}
	}
	if err != nil {
		return nil, &ValidationError{Message: "failed to read CSV header", Cause: err}
	}

	columns := map[string]int{}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, exists := columns[key]; !exists {
			columns[key] = i
		}
	}

	nameCol, ok := columns[ColumnName]
	if !ok {
		return nil, &ValidationError{Field: ColumnName, Message: "required column is missing"}
	}
	scoreCol, hasScore := columns[ColumnTrustScore]
	notesCol, hasNotes := columns[ColumnNotes]

	contacts := []types.TrustedContact{}
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ValidationError{Record: row, Message: "malformed CSV row", Cause: err}
		}

		c := types.TrustedContact{
			Name:       field(fields, nameCol),
			TrustScore: types.DefaultTrustScore,
		}
		if hasScore {
			if raw := strings.TrimSpace(field(fields, scoreCol)); raw != "" {
				score, err := strconv.Atoi(raw)
				if err != nil {
					return nil, &ValidationError{Record: row, Field: ColumnTrustScore, Message: fmt.Sprintf("%q is not an integer", raw)}
				}
				c.TrustScore = score
			}
		}
		if hasNotes {
			c.Notes = normalizeNotes(field(fields, notesCol))
		}

		if err := checkContact(row, c); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}

	return contacts, nil
}

// ExportContactsCSV writes contacts as name,trust_score,notes. ParseContactsCSV reads it back unchanged.
func ExportContactsCSV(w io.Writer, contacts []types.TrustedContact) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{ColumnName, ColumnTrustScore, ColumnNotes}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, c := range contacts {
		if err := writer.Write([]string{c.Name, strconv.Itoa(c.TrustScore), c.Notes}); err != nil {
			return fmt.Errorf("failed to write contact %q: %w", c.Name, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// LoadContactsFile reads trusted contacts from a .csv or .json file
func LoadContactsFile(path string) ([]types.TrustedContact, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ParseContactsCSV(f)
	case ".json":
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		return ParseContactsJSON(data)
	default:
		return nil, fmt.Errorf("unsupported contacts file type %q (want .csv or .json)", filepath.Ext(path))
	}
}

// normalizeNotes stores line breaks as LF, the form a CSV export reads back as.
func normalizeNotes(notes string) string {
	return strings.ReplaceAll(notes, "\r\n", "\n")
}

func field(fields []string, idx int) string {
	if idx < len(fields) {
		return fields[idx]
	}
	return ""
}

func checkContact(record int, c types.TrustedContact) error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Record: record, Field: ColumnName, Message: "is required"}
	}
	if err := validate.Struct(c); err != nil {
		return &ValidationError{Record: record, Field: ColumnTrustScore, Message: "must be between 1 and 10", Cause: err}
	}
	return nil
}
