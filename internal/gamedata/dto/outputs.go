package dto

import (
	"time"

	"go-guildsync/internal/gamedata/services"
	"go-guildsync/pkg/swgoh"
)

// StatusOutput describes the cached snapshot
type StatusOutput struct {
	Body services.Status `json:"body"`
}

// RefreshResponse summarises a refresh
type RefreshResponse struct {
	Refreshed bool      `json:"refreshed" doc:"Whether a new snapshot was published"`
	HasData   bool      `json:"has_data"`
	Updated   time.Time `json:"updated"`
	Errors    []string  `json:"errors,omitempty" doc:"Branches that failed"`
	Duration  string    `json:"duration,omitempty"`
}

type RefreshOutput struct {
	Body RefreshResponse `json:"body"`
}

type ListUnitsOutput struct {
	Body struct {
		Units []swgoh.UnitDetails `json:"units"`
		Tags  []string            `json:"tags" doc:"Every tag in the catalog"`
		Total int                 `json:"total"`
	}
}

type ListZetasOutput struct {
	Body struct {
		Zetas []swgoh.ZetaStats `json:"zetas"`
		Total int               `json:"total"`
	}
}
