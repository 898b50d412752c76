package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string
	AutoMigrate bool
	RedisURL    string
	LogLevel    string
	LogFormat   string // text|json
	SentryDSN   string
	Environment string

	// Emotion classification
	Classifier        string // lexicon|http|openai
	EmotionServiceURL string
	OpenAIAPIKey      string
	OpenAIModel       string
	ClassifyTimeout   time.Duration // 0 = wait for the model
	CacheTTL          time.Duration
	QueueSize         int

	// Server-side speech recognition
	DeepgramAPIKey     string
	DeepgramModel      string
	DeepgramLanguage   string
	DeepgramEncoding   string
	DeepgramSampleRate int
	STTEndpointingMs   int

	// JWT Authentication
	JWTSecret string
	JWTExpiry time.Duration

	// Mood rendering
	DominanceThreshold float64
	BlendTopK          int
	GradientDirection  string
}

// Classifier backends.
const (
	ClassifierLexicon = "lexicon"
	ClassifierHTTP    = "http"
	ClassifierOpenAI  = "openai"
)

var defaults = map[string]any{
	"http_addr":            ":8080",
	"database_url":         "",
	"auto_migrate":         false,
	"redis_url":            "",
	"log_level":            "info",
	"log_format":           "text",
	"sentry_dsn":           "",
	"environment":          "development",
	"classifier":           ClassifierLexicon,
	"emotion_service_url":  "http://localhost:8003",
	"openai_api_key":       "",
	"openai_model":         "gpt-4o-mini",
	"classify_timeout":     "0s",
	"cache_ttl":            "24h",
	"queue_size":           "32",
	"deepgram_api_key":     "",
	"deepgram_model":       "nova-2",
	"deepgram_language":    "en-US",
	"deepgram_encoding":    "",
	"deepgram_sample_rate": "16000",
	"stt_endpointing_ms":   "300",
	"jwt_secret":           "",
	"jwt_expiry":           "720h",
	"dominance_threshold":  "0.6",
	"blend_top_k":          "3",
	"gradient_direction":   "to right",
}

// configFile returns the YAML file to read, or "" when there is none.
// CONFIG_FILE wins; otherwise config/<CONFIG_ENV>/config.yaml is used if it
// exists.
func configFile() string {
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		return p
	}
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	p := filepath.Join("config", env, "config.yaml")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// LoadConfig resolves settings from defaults, the optional YAML file and the
// environment, in increasing order of precedence.
func LoadConfig() (Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	if p := configFile(); p != "" {
		v.SetConfigFile(p)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", p, err)
		}
	}

	classifier := strings.ToLower(strings.TrimSpace(v.GetString("classifier")))
	switch classifier {
	case ClassifierLexicon, ClassifierHTTP, ClassifierOpenAI:
	default:
		return Config{}, fmt.Errorf("unknown CLASSIFIER %q (want lexicon, http or openai)", classifier)
	}

	return Config{
		HTTPAddr:    v.GetString("http_addr"),
		DatabaseURL: v.GetString("database_url"),
		AutoMigrate: v.GetBool("auto_migrate"),
		RedisURL:    v.GetString("redis_url"),
		LogLevel:    v.GetString("log_level"),
		LogFormat:   v.GetString("log_format"),
		SentryDSN:   v.GetString("sentry_dsn"),
		Environment: v.GetString("environment"),

		Classifier:        classifier,
		EmotionServiceURL: v.GetString("emotion_service_url"),
		OpenAIAPIKey:      v.GetString("openai_api_key"),
		OpenAIModel:       v.GetString("openai_model"),
		ClassifyTimeout:   durationOr(v, "classify_timeout", 0),
		CacheTTL:          durationOr(v, "cache_ttl", 24*time.Hour),
		QueueSize:         intClamped(v, "queue_size", 32, 1, 1024),

		DeepgramAPIKey:     v.GetString("deepgram_api_key"),
		DeepgramModel:      v.GetString("deepgram_model"),
		DeepgramLanguage:   v.GetString("deepgram_language"),
		DeepgramEncoding:   v.GetString("deepgram_encoding"),
		DeepgramSampleRate: intClamped(v, "deepgram_sample_rate", 16000, 8000, 48000),
		STTEndpointingMs:   intClamped(v, "stt_endpointing_ms", 300, 0, 5000),

		JWTSecret: v.GetString("jwt_secret"),
		JWTExpiry: durationOr(v, "jwt_expiry", 720*time.Hour),

		DominanceThreshold: floatClamped(v, "dominance_threshold", 0.6, 0.01, 1.0),
		BlendTopK:          intClamped(v, "blend_top_k", 3, 1, 10),
		GradientDirection:  v.GetString("gradient_direction"),
	}, nil
}

// intClamped reads an integer setting. Unparseable values fall back to def;
// parsed values are clamped to [min, max].
func intClamped(v *viper.Viper, key string, def, min, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// floatClamped is intClamped for floating point settings.
func floatClamped(v *viper.Viper, key string, def, min, max float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(key)), 64)
	if err != nil {
		return def
	}
	if f < min {
		return min
	}
	if f > max {
		return max
	}
	return f
}

func durationOr(v *viper.Viper, key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
	if err != nil || d < 0 {
		return def
	}
	return d
}
