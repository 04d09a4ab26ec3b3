package utils

import (
	"fmt"
	"net/url"
	"os"
)

// GetAssetUrl builds the public URL for a stored asset, so rendered
// templates and API responses can reference uploads by id.
func GetAssetUrl(serverPort int, assetId string) (string, error) {

	// Override baseUrl if BASE_URL env var is set
	if os.Getenv("BASE_URL") != "" {
		baseUrl := os.Getenv("BASE_URL")
		parsedUrl, err := url.Parse(baseUrl)
		if err != nil {
			return "", fmt.Errorf("invalid BASE_URL env var: %w", err)
		}
		parsedUrl.Path = fmt.Sprintf("/assets/%s", assetId)
		return parsedUrl.String(), nil
	}

	return fmt.Sprintf("http://localhost:%d/assets/%s", serverPort, assetId), nil
}
