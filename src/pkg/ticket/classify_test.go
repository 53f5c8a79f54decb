package ticket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySourceMagicBytesOnly(t *testing.T) {
	pdfBytes := append([]byte("%PDF-1.4\n"), []byte("rest of file")...)
	kind, warnings := classifySource(pdfBytes, "")
	assert.Equal(t, SourcePDF, kind)
	assert.Empty(t, warnings)

	jpegBytes := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
	kind, warnings = classifySource(jpegBytes, "")
	assert.Equal(t, SourceImage, kind)
	assert.Empty(t, warnings)
}

func TestClassifySourceMimeWinsOnMismatch(t *testing.T) {
	pdfBytes := []byte("%PDF-1.4 content")
	kind, warnings := classifySource(pdfBytes, "image/jpeg")
	assert.Equal(t, SourceImage, kind)
	assert.NotEmpty(t, warnings)
}

func TestClassifySourceUnknown(t *testing.T) {
	kind, warnings := classifySource([]byte("just some text"), "")
	assert.Equal(t, SourceUnknown, kind)
	assert.Empty(t, warnings)
}

func TestClassifySourceWebP(t *testing.T) {
	data := append([]byte("RIFF"), append(make([]byte, 4), []byte("WEBP")...)...)
	kind, _ := classifySource(data, "")
	assert.Equal(t, SourceImage, kind)
}

func TestClassifySourceHEIC(t *testing.T) {
	data := make([]byte, 12)
	copy(data[4:8], []byte("ftyp"))
	copy(data[8:12], []byte("heic"))
	kind, _ := classifySource(data, "")
	assert.Equal(t, SourceImage, kind)
}
