package dto

// RefreshInput requests a metadata refresh
type RefreshInput struct {
	Force         bool   `query:"force" doc:"Refresh even when the cached snapshot is fresh"`
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
}

// ListUnitsInput filters the unit catalog
type ListUnitsInput struct {
	Tag           string `query:"tag" maxLength:"64" doc:"Only units carrying this tag"`
	CombatType    string `query:"combat_type" enum:"CHARACTER,SHIP," doc:"CHARACTER or SHIP"`
	Alignment     string `query:"alignment" maxLength:"16" doc:"Force alignment"`
	Name          string `query:"name" maxLength:"100" doc:"Case-insensitive name substring"`
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
}

// ListZetasInput filters zeta ratings
type ListZetasInput struct {
	Toon          string `query:"toon" maxLength:"100" doc:"Only zetas of this unit"`
	Authorization string `header:"Authorization" doc:"JWT Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
}
