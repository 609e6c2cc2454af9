package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type MemoryBackend string

const (
	BackendJSON   MemoryBackend = "json"
	BackendSQLite MemoryBackend = "sqlite"
)

type Config struct {
	// Chat provider
	LLMProvider      LLMProvider   `env:"LLM_PROVIDER" envDefault:"openai"`
	APIKey           string        `env:"DEEPSEEK_API_KEY"`
	OpenAIAPIKey     string        `env:"OPENAI_API_KEY"`
	ChatBaseURL      string        `env:"CHAT_BASE_URL" envDefault:"https://api.deepseek.com/v1"`
	ChatModel        string        `env:"CHAT_MODEL" envDefault:"deepseek-chat"`
	ChatTimeout      time.Duration `env:"CHAT_TIMEOUT" envDefault:"30s"`
	ChatProxy        string        `env:"CHAT_PROXY"`
	YandexOAuthToken string        `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string        `env:"YANDEX_FOLDER_ID"`

	// Session
	OfflineMode     bool   `env:"OFFLINE_MODE" envDefault:"false"`
	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"python"`

	// Memory
	MaxHistory    int           `env:"MAX_CONVERSATION_HISTORY" envDefault:"20"`
	MemoryBackend MemoryBackend `env:"MEMORY_BACKEND" envDefault:"json"`
	MemoryFile    string        `env:"MEMORY_FILE" envDefault:"data/memory.json"`
	MemoryDB      string        `env:"MEMORY_DB" envDefault:"data/memory.db"`

	// Journal and reports
	JournalFile    string `env:"JOURNAL_FILE" envDefault:"data/logs/journal.jsonl"`
	ReportDir      string `env:"REPORT_DIR" envDefault:"data/reports"`
	ReportSchedule string `env:"REPORT_SCHEDULE" envDefault:"0 21 * * *"`
	LogFile        string `env:"LOG_FILE" envDefault:"data/logs/jarvis.log"`

	// Speech
	SpeechEnabled bool    `env:"SPEECH_ENABLED" envDefault:"false"`
	SpeechAsync   bool    `env:"SPEECH_ASYNC" envDefault:"false"`
	SpeechRate    int     `env:"SPEECH_RATE" envDefault:"150"`
	SpeechVolume  float64 `env:"SPEECH_VOLUME" envDefault:"0.8"`
	EspeakBin     string  `env:"ESPEAK_BIN" envDefault:"espeak-ng"`

	// Code execution
	PythonBin      string        `env:"PYTHON_BIN" envDefault:"python3"`
	CodeRunTimeout time.Duration `env:"CODE_RUN_TIMEOUT" envDefault:"10s"`

	// Web lookup
	WikipediaURL string `env:"WIKIPEDIA_URL" envDefault:"https://en.wikipedia.org"`
	GoogleAPIKey string `env:"GOOGLE_API_KEY"`
	GoogleCSEID  string `env:"GOOGLE_CSE_ID"`

	// Channels
	TelegramBotToken string  `env:"TELEGRAM_BOT_TOKEN"`
	AdminUserID      int64   `env:"ADMIN_USER_ID"`
	AllowedUsers     []int64 `env:"ALLOWED_USERS" envSeparator:":"`
	AllowlistFile    string  `env:"ALLOWLIST_FILE" envDefault:"data/allowlist.json"`
	PendingFile      string  `env:"PENDING_FILE" envDefault:"data/pending.json"`
	BusURL           string  `env:"BUS_URL" envDefault:"ws://localhost:8092/ws"`
}

// New parses the process environment.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.APIKey == "" {
		c.APIKey = c.OpenAIAPIKey
	}
	c.LLMProvider = LLMProvider(strings.ToLower(string(c.LLMProvider)))
	c.MemoryBackend = MemoryBackend(strings.ToLower(string(c.MemoryBackend)))
	if c.MaxHistory <= 0 {
		c.MaxHistory = 20
	}
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = "python"
	}
}

// HasCredentials reports whether the selected chat provider has what it needs to authenticate.
func (c *Config) HasCredentials() bool {
	switch c.LLMProvider {
	case ProviderYandex:
		return c.YandexOAuthToken != "" && c.YandexFolderID != ""
	default:
		return c.APIKey != ""
	}
}

// MissingAPIKey is true when online mode is requested without provider credentials.
func (c *Config) MissingAPIKey() bool {
	return !c.OfflineMode && !c.HasCredentials()
}
