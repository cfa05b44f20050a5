// Package types provides type definitions for structured data used throughout the clout pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "github.com/go-playground/validator/v10"

// ICP is the Ideal Customer Profile: the target company criteria.
type ICP struct {
	Industry      string   `json:"industry" validate:"required"`
	CompanySize   string   `json:"company_size" validate:"required"`
	Geography     string   `json:"geography" validate:"required"`
	OtherCriteria []string `json:"other_criteria"`
}

// Persona describes a buyer or user persona and how to find them.
type Persona struct {
	Title       string   `json:"title" validate:"required"`
	Role        string   `json:"role" validate:"required"`
	PainPoints  []string `json:"pain_points"`
	SearchTerms string   `json:"search_terms"`
}

// ICPPersonaBundle is the full output of ICP extraction.
type ICPPersonaBundle struct {
	ICP          ICP     `json:"icp"`
	BuyerPersona Persona `json:"buyer_persona"`
	UserPersona  Persona `json:"user_persona"`
}

// Validate checks that every required field of the bundle is populated.
func (b *ICPPersonaBundle) Validate() error {
	validate := validator.New()
	return validate.Struct(b)
}

// DefaultICPPersonaBundle returns the fixed bundle used whenever extraction cannot produce one.
func DefaultICPPersonaBundle() ICPPersonaBundle {
	return ICPPersonaBundle{
		ICP: ICP{
			Industry:      "Technology",
			CompanySize:   "50-1000 employees",
			Geography:     "North America",
			OtherCriteria: []string{"B2B focused", "Growth stage"},
		},
		BuyerPersona: Persona{
			Title:       "VP of Sales",
			Role:        "Decision maker",
			PainPoints:  []string{"Low conversion rates", "Inefficient sales process"},
			SearchTerms: "VP Sales OR Head of Sales OR Sales Director",
		},
		UserPersona: Persona{
			Title:       "Sales Representative",
			Role:        "End user",
			PainPoints:  []string{"Cold outreach difficulties", "Low response rates"},
			SearchTerms: "Sales Representative OR Account Executive OR BDR",
		},
	}
}
