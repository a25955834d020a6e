/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package types

import "time"

// AppConfig represents the complete application configuration
type AppConfig struct {
	Verbose   bool            `mapstructure:"verbose"`
	Config    string          `mapstructure:"config"`
	Timezone  string          `mapstructure:"timezone" validate:"required,timezone"`
	Data      DataConfig      `mapstructure:"data" validate:"required"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Chatwork  ChatworkConfig  `mapstructure:"chatwork"`
	Chat      ChatConfig      `mapstructure:"chat"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// DataConfig holds data storage configuration
type DataConfig struct {
	Dir        string `mapstructure:"dir" validate:"required"`
	File       string `mapstructure:"file" validate:"required"`
	BackupFile string `mapstructure:"backupFile" validate:"required"`
}

// NotifyConfig controls the scheduled notifications.
type NotifyConfig struct {
	// MorningHour is the local hour of the daily digest (0-23).
	MorningHour int `mapstructure:"morningHour" validate:"min=0,max=23"`
	// UpcomingDays is how far ahead the digest and the upcoming command look.
	UpcomingDays int `mapstructure:"upcomingDays" validate:"min=1,max=31"`
}

// ChatworkConfig holds the outbound notification channel settings.
// Token and RoomID may be empty; notifications are then only logged.
type ChatworkConfig struct {
	BaseURL    string        `mapstructure:"baseURL" validate:"required,url"`
	Token      string        `mapstructure:"token"`
	RoomID     string        `mapstructure:"roomID" validate:"omitempty,numeric"`
	MaxRetries int           `mapstructure:"maxRetries" validate:"min=1,max=10"`
	RetryDelay time.Duration `mapstructure:"retryDelay" validate:"min=0"`
}

// ChatConfig holds inbound chat settings.
type ChatConfig struct {
	// AuthorID is recorded as the creator of tasks entered through the console.
	AuthorID string `mapstructure:"authorID" validate:"required"`
}

// LLMConfig holds configuration for the optional intent classifier
type LLMConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Provider    string  `mapstructure:"provider" validate:"omitempty,oneof=openai ollama anthropic gemini"`
	ModelName   string  `mapstructure:"modelName" validate:"omitempty,min=1"`
	APIKey      string  `mapstructure:"apiKey"`
	BaseURL     string  `mapstructure:"baseURL" validate:"omitempty,url"`
	MaxTokens   int     `mapstructure:"maxTokens" validate:"omitempty,min=1"`
	Temperature float64 `mapstructure:"temperature" validate:"omitempty,min=0,max=2"`
}

// TelemetryConfig holds the opt-in usage analytics settings.
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	APIKey   string `mapstructure:"apiKey"`
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
}
