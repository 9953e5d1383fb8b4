package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"sales-copilot-be/internal/constant"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Voice    VoiceConfig
	Copilot  CopilotConfig
	Keys     APIKeys
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	StreamLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	// Driver is "postgres" or "memory".
	Driver     string
	Connection string
}

type VoiceConfig struct {
	TranscriptSubject string
	CommandSubject    string
	SpeakSubject      string
}

type CopilotConfig struct {
	DefaultTitle        string
	QuickActions        []string
	StepInterval        time.Duration
	ProbeInterval       time.Duration
	ResponseCacheTTL    time.Duration
	StateTopic          string
	LiveSpeechByDefault bool
}

type APIKeys struct {
	JwtSecret string
}

// overlay is the optional YAML file named by COPILOT_CONFIG_FILE. Set fields win over env.
type overlay struct {
	Copilot struct {
		DefaultTitle string   `yaml:"default_title"`
		QuickActions []string `yaml:"quick_actions"`
		StepInterval string   `yaml:"step_interval"`
		LiveSpeech   *bool    `yaml:"live_speech"`
	} `yaml:"copilot"`
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	cfg := &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			StreamLogFilePath:  getEnv("STREAM_LOG_FILE_PATH", "logs/stream.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("STORAGE_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Voice: VoiceConfig{
			TranscriptSubject: getEnv("VOICE_TRANSCRIPT_SUBJECT", "voice.transcript"),
			CommandSubject:    getEnv("VOICE_COMMAND_SUBJECT", "voice.command"),
			SpeakSubject:      getEnv("VOICE_SPEAK_SUBJECT", "voice.speak"),
		},
		Copilot: CopilotConfig{
			DefaultTitle:        getEnv("COPILOT_DEFAULT_TITLE", constant.DefaultSessionTitle),
			QuickActions:        constant.DefaultQuickActions(),
			StepInterval:        getEnvAsDuration("COPILOT_STEP_INTERVAL", 500*time.Millisecond),
			ProbeInterval:       getEnvAsDuration("CONNECTIVITY_PROBE_INTERVAL", 5*time.Second),
			ResponseCacheTTL:    getEnvAsDuration("COPILOT_RESPONSE_CACHE_TTL", 10*time.Minute),
			StateTopic:          getEnv("COPILOT_STATE_TOPIC", "copilot.state"),
			LiveSpeechByDefault: getEnvAsBool("COPILOT_LIVE_SPEECH", false),
		},
		Keys: APIKeys{
			JwtSecret: getEnv("JWT_SECRET", ""),
		},
	}

	if path := getEnv("COPILOT_CONFIG_FILE", ""); path != "" {
		if err := applyOverlay(cfg, path); err != nil {
			log.Printf("Warning: ignoring config file %s: %v", path, err)
		}
	}

	return cfg
}

func applyOverlay(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var o overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	if o.Copilot.DefaultTitle != "" {
		cfg.Copilot.DefaultTitle = o.Copilot.DefaultTitle
	}
	if len(o.Copilot.QuickActions) > 0 {
		cfg.Copilot.QuickActions = o.Copilot.QuickActions
	}
	if o.Copilot.StepInterval != "" {
		d, err := time.ParseDuration(o.Copilot.StepInterval)
		if err != nil {
			return fmt.Errorf("copilot.step_interval: %w", err)
		}
		cfg.Copilot.StepInterval = d
	}
	if o.Copilot.LiveSpeech != nil {
		cfg.Copilot.LiveSpeechByDefault = *o.Copilot.LiveSpeech
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("750ms") or a bare number of milliseconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if ms := getEnvAsInt(key, -1); ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
