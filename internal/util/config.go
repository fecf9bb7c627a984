package util

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment          string        `mapstructure:"ENVIRONMENT"`
	Port                 string        `mapstructure:"PORT"`
	DatabaseURL          string        `mapstructure:"DATABASE_URL"`
	OpenAIAPIKey         string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL        string        `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel          string        `mapstructure:"OPENAI_MODEL"`
	HumanizerAPIKey      string        `mapstructure:"HUMANIZER_API_KEY"`
	HumanizerBaseURL     string        `mapstructure:"HUMANIZER_BASE_URL"`
	OpenAlexBaseURL      string        `mapstructure:"OPENALEX_BASE_URL"`
	OpenAlexMailto       string        `mapstructure:"OPENALEX_MAILTO"`
	TokenSecretKey       string        `mapstructure:"TOKEN_SECRET_KEY"`
	AccessTokenDuration  time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
	RefreshTokenDuration time.Duration `mapstructure:"REFRESH_TOKEN_DURATION"`
	CompletionPolicy     string        `mapstructure:"COMPLETION_POLICY"`
	DownloadDir          string        `mapstructure:"DOWNLOAD_DIR"`
}

func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	viper.SetDefault("HUMANIZER_BASE_URL", "https://humanize.undetectable.ai")
	viper.SetDefault("OPENALEX_BASE_URL", "https://api.openalex.org")
	viper.SetDefault("ACCESS_TOKEN_DURATION", "15m")
	viper.SetDefault("REFRESH_TOKEN_DURATION", "168h") // 7 days
	viper.SetDefault("COMPLETION_POLICY", "required-only")
	viper.SetDefault("DOWNLOAD_DIR", "downloads")

	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		// Config file not found; environment variables still apply.
	}

	err = viper.Unmarshal(&config)
	return
}
