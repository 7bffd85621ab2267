package imagecodec

import (
	"bytes"
	"encoding/base64"
	"image/jpeg"

	"github.com/disintegration/imaging"

	"hanlumi/pkg/errors"
)

// Chat images travel inline over the live channel, so they are downscaled and
// re-encoded before framing. Quality mirrors the compression the mobile
// client applied before sending.
const (
	maxDimension = 1280
	jpegQuality  = 60
)

// EncodeDataURI reads a local image file and returns it as a single
// data:image/jpeg;base64 payload ready to send as one outgoing frame.
// Nothing is returned on failure, so a partial frame can never be sent.
func EncodeDataURI(path string) (string, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", errors.BadRequest("Failed to read image", err)
	}

	// Fit inside the bounding box; small images pass through untouched.
	if img.Bounds().Dx() > maxDimension || img.Bounds().Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", errors.Internal("Failed to encode image", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
