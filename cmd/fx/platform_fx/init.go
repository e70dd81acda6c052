package platform_fx

import (
	"os"

	"go.uber.org/fx"

	"fiesta/internal/platform"
)

var Module = fx.Provide(
	provideClient,
)

func provideClient() platform.Client {
	return platform.NewHTTPClient(platform.Config{
		BaseURL:      os.Getenv("SHARETRIBE_API_URL"),
		ClientID:     os.Getenv("SHARETRIBE_CLIENT_ID"),
		ClientSecret: os.Getenv("SHARETRIBE_CLIENT_SECRET"),
	})
}
