package swgoh

// DefaultLanguage is the localisation requested for every command.
const DefaultLanguage = "ENG_US"

// PlayerCommand requests player or guild records for a list of ally codes.
type PlayerCommand struct {
	AllyCodes []string `json:"allycodes"`
	Language  string   `json:"language"`
	Enums     bool     `json:"enums"`
}

// NewPlayerCommand builds a PlayerCommand with the default language and enums on.
func NewPlayerCommand(codes ...AllyCode) PlayerCommand {
	cmd := PlayerCommand{
		AllyCodes: make([]string, 0, len(codes)),
		Language:  DefaultLanguage,
		Enums:     true,
	}
	for _, code := range codes {
		cmd.AllyCodes = append(cmd.AllyCodes, code.Digits())
	}
	return cmd
}

// GameDataCommand selects a metadata collection, optionally filtered and projected.
type GameDataCommand struct {
	Collection string         `json:"collection"`
	Language   string         `json:"language"`
	Enums      bool           `json:"enums"`
	Match      map[string]any `json:"match,omitempty"`
	Project    map[string]any `json:"project,omitempty"`
}

// NewGameDataCommand builds a GameDataCommand for the given collection.
func NewGameDataCommand(collection string) GameDataCommand {
	return GameDataCommand{
		Collection: collection,
		Language:   DefaultLanguage,
		Enums:      true,
	}
}

// ZetaRecommendationsCommand requests the zeta rating list.
type ZetaRecommendationsCommand struct {
	Project map[string]any `json:"project,omitempty"`
}

// loginResponse is the sign-in endpoint's reply.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// zetaResponse wraps the zeta endpoint's reply.
type zetaResponse struct {
	Zetas []ZetaStats `json:"zetas"`
}
