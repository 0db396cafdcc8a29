package domain

import "time"

// SettingKeyApp is the single settings blob the application stores.
const SettingKeyApp = "app"

// Setting is a key/value row holding a JSON document.
type Setting struct {
	Key       string    `json:"key"`
	Value     []byte    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppSettings is the JSON document stored under SettingKeyApp. Zero values
// are replaced with the study defaults on read.
type AppSettings struct {
	DailyLimit     int  `json:"daily_limit"`
	NewCardLimit   int  `json:"new_card_limit"`
	IncludeRolling bool `json:"include_rolling"`
	AutoAdjustNew  bool `json:"auto_adjust_new"`
	ShowIPA        bool `json:"show_ipa"`
	AudioEnabled   bool `json:"audio_enabled"`
}

// DefaultAppSettings returns the settings used when nothing is stored yet.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		DailyLimit:     30,
		NewCardLimit:   10,
		IncludeRolling: true,
		AutoAdjustNew:  true,
		ShowIPA:        true,
		AudioEnabled:   false,
	}
}
