package commands

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/shelfscan/backend/internal/domain"
)

// loadImage turns a CLI argument into an image payload. URLs are passed
// through for the vision endpoint to fetch; files become data URIs.
func loadImage(arg string) (domain.ImageData, error) {
	if domain.ImageData(arg).IsURL() {
		return domain.ImageData(arg), nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: %s is empty", domain.ErrInvalidImage, arg)
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: %s is %s, not an image", domain.ErrInvalidImage, arg, contentType)
	}

	return domain.ImageData("data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)), nil
}
