package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Study    StudyConfig    `mapstructure:"study" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// StudyConfig contains the scheduling defaults applied when no stored
// settings override them.
type StudyConfig struct {
	DailyLimit   int `mapstructure:"daily_limit" validate:"required,gt=0"`
	NewCardLimit int `mapstructure:"new_card_limit" validate:"required,gt=0"`
	HistoryDays  int `mapstructure:"history_days" validate:"gt=0"`
	ForecastDays int `mapstructure:"forecast_days" validate:"gt=0"`
}

// LLMConfig contains all LLM integration related settings. The API key
// is optional; example generation is disabled when it is empty.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name"`
}
