package dto

// AuthInput carries the credentials every roster operation requires
type AuthInput struct {
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
}

// GetPlayerInput identifies one member
type GetPlayerInput struct {
	Key           string `path:"player" minLength:"1" maxLength:"100" doc:"Ally code (dashed or plain) or player name"`
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
}

// ListUnitsInput filters roster unit names
type ListUnitsInput struct {
	Filter        string `query:"filter" maxLength:"64" default:"All" doc:"All, Characters, Ships, Light Side, Dark Side or a category tag"`
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
}

// UnitLookupInput names the unit to look up
type UnitLookupInput struct {
	Name          string `path:"name" minLength:"1" maxLength:"100" doc:"Unit name"`
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
}

// AllianceInput optionally overrides the saved alliance ally codes
type AllianceInput struct {
	Codes         string `query:"codes" maxLength:"1000" doc:"Comma-separated ally codes; defaults to the saved alliance"`
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
}

// ImportInput carries a snapshot file
type ImportInput struct {
	RawBody       []byte `contentType:"application/json" doc:"Snapshot with guild and players"`
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
}
