package ingestion

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/avisanghavi/clout/internal/schemas"
	"github.com/avisanghavi/clout/internal/types"
)

var validate = validator.New()

// ParseCandidates validates a JSON array of candidate records and converts it into profiles.
// Records without an id get a fresh UUID; an id is kept unchanged otherwise. Annotation fields
// are left for the trust network matcher.
func ParseCandidates(data []byte) ([]types.CandidateProfile, error) {
	if err := schemas.Validate(schemas.Candidates, data); err != nil {
		return nil, &ValidationError{Message: "candidate list does not match schema", Cause: err}
	}

	var records []types.CandidateRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &ValidationError{Message: "failed to parse candidate list", Cause: err}
	}

	profiles := make([]types.CandidateProfile, 0, len(records))
	seen := make(map[uuid.UUID]int, len(records))
	for i, r := range records {
		if err := validate.Struct(r); err != nil {
			return nil, &ValidationError{Record: i + 1, Message: "invalid candidate", Cause: err}
		}

		id := uuid.New()
		if r.ID != "" {
			parsed, err := uuid.Parse(r.ID)
			if err != nil {
				return nil, &ValidationError{Record: i + 1, Field: "id", Message: "not a UUID", Cause: err}
			}
			id = parsed
		}
		if first, dup := seen[id]; dup {
			return nil, &ValidationError{Record: i + 1, Field: "id", Message: fmt.Sprintf("duplicates record %d", first)}
		}
		seen[id] = i + 1

		profiles = append(profiles, types.CandidateProfile{
			ID:                 id,
			Name:               r.Name,
			Headline:           r.Headline,
			Location:           r.Location,
			RawConnectionLabel: r.ConnectionLevel,
		})
	}

	return profiles, nil
}

// LoadCandidatesFile reads and parses a candidate JSON file
func LoadCandidatesFile(path string) ([]types.CandidateProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseCandidates(data)
}
