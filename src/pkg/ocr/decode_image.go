package ocr

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/webp"
)

// IsHEIC reports whether data looks like a HEIC/HEIF ISO-BMFF container, by
// checking the "ftyp" box's major brand at offset 8.
func IsHEIC(data []byte) bool {
	if len(data) < 12 || !bytes.Equal(data[4:8], []byte("ftyp")) {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	default:
		return false
	}
}

// DecodeImage decodes raw image bytes, honoring EXIF orientation, for
// JPEG/PNG/WEBP. HEIC/HEIF must be converted to PNG via ConvertHEICToPNG
// before reaching this function.
func DecodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	return webp.Decode(bytes.NewReader(data))
}
