package llm

import (
	"fmt"
	"net/http"
	"strings"

	"jarvis/internal/config"
)

// Factory creates chat clients from configuration.
type Factory struct {
	APIKey           string
	BaseURL          string
	Model            string
	YandexOAuthToken string
	YandexFolderID   string
	HTTPClient       *http.Client
}

func NewFactory(cfg *config.Config, httpClient *http.Client) *Factory {
	return &Factory{
		APIKey:           cfg.APIKey,
		BaseURL:          cfg.ChatBaseURL,
		Model:            cfg.ChatModel,
		YandexOAuthToken: cfg.YandexOAuthToken,
		YandexFolderID:   cfg.YandexFolderID,
		HTTPClient:       httpClient,
	}
}

// CreateClient returns ErrNoAPIKey when the provider lacks credentials.
func (f *Factory) CreateClient(provider string) (Client, error) {
	switch strings.ToLower(provider) {
	case string(config.ProviderOpenAI), "":
		if f.APIKey == "" {
			return nil, ErrNoAPIKey
		}
		return NewOpenAI(f.APIKey, f.BaseURL, f.Model, f.HTTPClient), nil
	case string(config.ProviderYandex):
		if f.YandexOAuthToken == "" || f.YandexFolderID == "" {
			return nil, ErrNoAPIKey
		}
		return NewYandex(f.YandexOAuthToken, f.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
