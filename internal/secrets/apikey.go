package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups this app's secrets in the OS keychain.
	KeyringService = "jobscrape"
	keyringAccount = "jobscrape:render-api-key"

	// EnvRenderAPIKey is the environment fallback, for CI and headless hosts
	// where no keychain is available.
	EnvRenderAPIKey = "SCRAPERAPI_KEY"
)

// RenderAPIKey returns the rendering/proxy service key: keychain first,
// environment second.
func RenderAPIKey() (string, error) {
	if pw, err := keyring.Get(KeyringService, keyringAccount); err == nil && strings.TrimSpace(pw) != "" {
		return pw, nil
	}
	if v := strings.TrimSpace(os.Getenv(EnvRenderAPIKey)); v != "" {
		return v, nil
	}
	return "", errors.New("rendering API key not found (set it in the keychain or via " + EnvRenderAPIKey + ")")
}

func SetRenderAPIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("key is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, key)
}

func DeleteRenderAPIKey() error {
	return keyring.Delete(KeyringService, keyringAccount)
}
