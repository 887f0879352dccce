package riot

import "time"

const SeasonTypeAct = "act"

// Contract is one entry of a player's contract list. The battlepass is the
// contract whose definition id matches the current season's track.
type Contract struct {
	ContractDefinitionID    string              `json:"ContractDefinitionID"`
	ContractProgression     ContractProgression `json:"ContractProgression"`
	ProgressionLevelReached int                 `json:"ProgressionLevelReached"`
}

type ContractProgression struct {
	TotalProgressionEarned int `json:"TotalProgressionEarned"`
}

type Season struct {
	ID       string `json:"ID"`
	Name     string `json:"Name"`
	Type     string `json:"Type"`
	EndTime  string `json:"EndTime"`
	IsActive bool   `json:"IsActive"`

	// End is EndTime parsed as UTC.
	End time.Time `json:"-"`
}

type versionT struct {
	Data struct {
		RiotClientVersion string `json:"riotClientVersion"`
	} `json:"data"`
}

type contractsT struct {
	Contracts []Contract `json:"Contracts"`
}

type contentT struct {
	Seasons []Season `json:"Seasons"`
}

type userInfoT struct {
	Sub string `json:"sub"`
}

type entitlementsT struct {
	EntitlementsToken string `json:"entitlements_token"`
}

// RiotGamesPrivateSettings.yaml, only the part holding the login cookies
type settingsT struct {
	RiotLogin struct {
		Persist struct {
			Session struct {
				Cookies []cookieT `yaml:"cookies"`
			} `yaml:"session"`
		} `yaml:"persist"`
	} `yaml:"riot-login"`
}

type cookieT struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}
