package generation

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/mandalnilabja/inkgate/internal/types"
)

// maxDimension rejects payloads that decode to absurd sizes.
const maxDimension = 8192

var errUnrecognized = errors.New("unrecognized image payload")

var formatMIME = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// sniff decodes just the header of data and returns its MIME type.
func sniff(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errUnrecognized
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errUnrecognized, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxDimension || cfg.Height > maxDimension {
		return "", fmt.Errorf("%w: dimensions %dx%d", errUnrecognized, cfg.Width, cfg.Height)
	}
	mime, ok := formatMIME[format]
	if !ok {
		return "", fmt.Errorf("%w: format %s", errUnrecognized, format)
	}
	return mime, nil
}

// imageReference turns a provider payload into the string returned to the
// caller: a data URI for bytes, the URL as-is otherwise.
func imageReference(img *types.ProviderImage) (string, error) {
	if img == nil {
		return "", errUnrecognized
	}
	if len(img.Data) == 0 {
		if img.URL == "" {
			return "", errUnrecognized
		}
		return img.URL, nil
	}

	mime, err := sniff(img.Data)
	if err != nil {
		return "", err
	}
	return DataURI(mime, img.Data), nil
}

// DataURI encodes data as a base64 data URI.
func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
