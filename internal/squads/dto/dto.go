package dto

import (
	"go-guildsync/internal/squads/models"
	"go-guildsync/internal/squads/services"
)

// Report formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

type AuthInput struct {
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
}

// SearchRequest names the squad to search for
type SearchRequest struct {
	Units []string `json:"units" minItems:"1" maxItems:"10" validate:"required,min=1,max=10,dive,max=100" doc:"Five distinct unit names; blank entries are ignored"`
}

type SearchInput struct {
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
	Body          SearchRequest
}

type SearchOutput struct {
	Body struct {
		Units   []string                   `json:"units"`
		Results []models.SquadLookupResult `json:"results"`
		Total   int                        `json:"total"`
	}
}

type ReportInput struct {
	Format        string `query:"format" enum:"json,csv" default:"json" doc:"Response format"`
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
	Body          services.FilterInput
}

type GetReportInput struct {
	ID            string `path:"id" format:"uuid" doc:"Report id"`
	Format        string `query:"format" enum:"json,csv" default:"json" doc:"Response format"`
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
}

// ReportOutput carries a report as JSON or CSV
type ReportOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

type PresetsOutput struct {
	Body struct {
		Presets []models.SquadPreset `json:"presets"`
		Total   int                  `json:"total"`
	}
}

type UnitsOutput struct {
	Body struct {
		Units []string `json:"units"`
	}
}
