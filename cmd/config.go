/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hrism/discord-chatwork-task-bot/types"
)

const (
	configName = ".taskbot"
	configDir  = ".taskbot"
	envPrefix  = "TASKBOT"
)

// legacyEnv maps config keys to the unprefixed variable names the bot has
// always read from its .env file.
var legacyEnv = map[string]string{
	"chatwork.token":     "CHATWORK_API_TOKEN",
	"chatwork.roomID":    "CHATWORK_ROOM_ID",
	"llm.apiKey":         "OPENAI_API_KEY",
	"timezone":           "TIMEZONE",
	"notify.morningHour": "MORNING_NOTIFY_HOUR",
}

// GlobalAppConfig holds the global application configuration instance.
var GlobalAppConfig types.AppConfig

// validate is a single instance of Translate, it caches struct info
var validate = validator.New()

// validateAppConfig performs validation on the AppConfig struct.
func validateAppConfig(config *types.AppConfig) error {
	if err := validate.Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: rule '%s' (value: '%v')", e.Namespace(), e.Tag(), e.Value()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("timezone", "Asia/Tokyo")

	viper.SetDefault("data.dir", "data")
	viper.SetDefault("data.file", "tasks.json")
	viper.SetDefault("data.backupFile", "tasks.backup.json")

	viper.SetDefault("notify.morningHour", 8)
	viper.SetDefault("notify.upcomingDays", 3)

	viper.SetDefault("chatwork.baseURL", "https://api.chatwork.com/v2")
	viper.SetDefault("chatwork.token", "")
	viper.SetDefault("chatwork.roomID", "")
	viper.SetDefault("chatwork.maxRetries", 3)
	viper.SetDefault("chatwork.retryDelay", "2s")

	viper.SetDefault("chat.authorID", "console")

	viper.SetDefault("llm.enabled", true)
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.modelName", "gpt-4o-mini")
	viper.SetDefault("llm.apiKey", "")
	viper.SetDefault("llm.baseURL", "")
	viper.SetDefault("llm.maxTokens", 200)
	viper.SetDefault("llm.temperature", 0.1)

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.apiKey", "")
	viper.SetDefault("telemetry.endpoint", "")
}

// InitConfig reads in config file and ENV variables if set. flags are the
// persistent flags of the invoked command tree; nil skips flag binding.
func InitConfig(flags *pflag.FlagSet) error {
	// A missing .env file is fine.
	_ = godotenv.Load()

	bindFlags(flags)

	viper.SetEnvPrefix(envPrefix)                          // e.g., TASKBOT_CHATWORK_TOKEN
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // Replace dots with underscores in env var names
	viper.AutomaticEnv()

	for key, name := range legacyEnv {
		envKey := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := viper.BindEnv(key, envKey, name); err != nil {
			return fmt.Errorf("bind env %s: %w", name, err)
		}
	}

	setDefaults()

	cfgFileFlag := viper.GetString("config")
	if cfgFileFlag != "" {
		viper.SetConfigFile(cfgFileFlag)
	} else {
		viper.SetConfigName(configName)
		if _, err := os.Stat(configDir); err == nil {
			// ./.taskbot/.taskbot.yaml takes priority over the global file.
			viper.AddConfigPath(configDir)
		} else {
			if home, err := os.UserHomeDir(); err == nil {
				viper.AddConfigPath(home)
			}
			viper.AddConfigPath(".")
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "path", viper.ConfigFileUsed())
	} else {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case cfgFileFlag != "":
			return fmt.Errorf("read config %s: %w", cfgFileFlag, err)
		case errors.As(err, &notFound):
			slog.Debug("no config file found, using defaults and environment")
		default:
			return fmt.Errorf("read config %s: %w", viper.ConfigFileUsed(), err)
		}
	}

	GlobalAppConfig = types.AppConfig{}
	if err := viper.Unmarshal(&GlobalAppConfig); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validateAppConfig(&GlobalAppConfig); err != nil {
		return err
	}
	return nil
}

// GetConfig returns a pointer to the global types.AppConfig instance.
func GetConfig() *types.AppConfig {
	return &GlobalAppConfig
}

// GetTaskFilePath returns the full path to the tasks file.
func GetTaskFilePath() string {
	cfg := GetConfig()
	return filepath.Join(cfg.Data.Dir, cfg.Data.File)
}

// GetBackupFilePath returns the full path to the backup copy of the tasks file.
func GetBackupFilePath() string {
	cfg := GetConfig()
	return filepath.Join(cfg.Data.Dir, cfg.Data.BackupFile)
}
