package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all process configuration. It is loaded once in main and
// passed by reference into component constructors; nothing reads the
// environment after startup.
type Config struct {
	// Entra ID app registration used for the client-credentials flow.
	TenantID     string `envconfig:"TENANT_ID" required:"true"`
	ClientID     string `envconfig:"CLIENT_ID" required:"true"`
	ClientSecret string `envconfig:"CLIENT_SECRET" required:"true"`

	// Base URL of the D365 F&O environment, e.g. https://contoso.operations.dynamics.com.
	// OData calls go to {D365EnvURL}/data/<path>; the same URL is the
	// `resource` of the token request.
	D365EnvURL string `envconfig:"D365_ENV_URL" required:"true"`

	// Identity endpoint base. Overridable so the mocks server can stand in.
	LoginBaseURL string `envconfig:"LOGIN_BASE_URL" default:"https://login.microsoftonline.com"`

	// LLM provider for the delegated translate/distill strategies:
	// "azure", "bedrock", or empty to run heuristics only.
	LLMProvider string `envconfig:"LLM_PROVIDER" default:""`

	// Azure OpenAI (used when LLMProvider == "azure").
	AzureOpenAIEndpoint   string `envconfig:"AZURE_OPENAI_ENDPOINT" default:""`
	AzureOpenAIDeployment string `envconfig:"AZURE_OPENAI_DEPLOYMENT" default:""`
	AzureOpenAIKey        string `envconfig:"AZURE_OPENAI_KEY" default:""`
	AzureOpenAIAPIVersion string `envconfig:"AZURE_OPENAI_API_VERSION" default:"2024-02-01"`

	// Bedrock (used when LLMProvider == "bedrock").
	BedrockModelID string `envconfig:"BEDROCK_MODEL_ID" default:"us.meta.llama3-1-70b-instruct-v1:0"`

	// Outbound HTTP timeout in seconds for token and OData calls.
	HTTPTimeout int `envconfig:"HTTP_TIMEOUT" default:"30"`

	// Log level: debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field requirements that envconfig tags cannot express.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case "", "bedrock":
	case "azure":
		if c.AzureOpenAIEndpoint == "" || c.AzureOpenAIDeployment == "" || c.AzureOpenAIKey == "" {
			return fmt.Errorf("LLM_PROVIDER=azure requires AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_DEPLOYMENT and AZURE_OPENAI_KEY")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q (expected azure, bedrock or empty)", c.LLMProvider)
	}
	return nil
}
