package ticket

import (
	"bytes"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

// magicEntry is one row of the magic-byte signature table, in the style of
// the classic "prefixTable" approach to MIME sniffing: an offset, an exact
// byte prefix to match at that offset, and the SourceKind it implies.
type magicEntry struct {
	offset int
	prefix []byte
	kind   SourceKind
}

var magicTable = []magicEntry{
	{0, []byte("%PDF"), SourcePDF},
	{0, []byte{0xFF, 0xD8}, SourceImage}, // JPEG
	{0, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, SourceImage}, // PNG
}

// isoBMFFBrands are the ISO-BMFF "ftyp" major brands that identify a HEIC/HEIF
// container. They are checked at byte offset 8 (after the 4-byte box size and
// the "ftyp" tag itself at offset 4).
var isoBMFFBrands = []string{"heic", "heif", "mif1", "msf1"}

// classifySource resolves the SourceKind of data, combining the declared
// MIME hint with magic-byte sniffing per spec.md §4.1: the MIME hint wins
// when it explicitly names application/pdf or an image/* type; magic bytes
// are the tiebreaker otherwise, and a mismatch between the two is reported
// as a warning without overriding the MIME decision.
func classifySource(data []byte, mimeHint string) (SourceKind, []string) {
	var warnings []string

	magicKind := classifyByMagicBytes(data)
	hintKind := classifyByMime(mimeHint)

	if hintKind != SourceUnknown {
		if magicKind != SourceUnknown && magicKind != hintKind {
			warnings = append(warnings, "El tipo MIME declarado ('"+mimeHint+"') no coincide con la firma binaria detectada; se usa el tipo MIME")
			tl.Log(
				tl.Warning, palette.YellowBold,
				"MIME hint '%s' disagrees with magic bytes ('%s'); MIME wins", mimeHint, magicKind,
			)
		}
		return hintKind, warnings
	}

	return magicKind, warnings
}

func classifyByMime(mimeHint string) SourceKind {
	hint := strings.ToLower(strings.TrimSpace(mimeHint))
	switch {
	case hint == "application/pdf":
		return SourcePDF
	case strings.HasPrefix(hint, "image/"):
		return SourceImage
	default:
		return SourceUnknown
	}
}

func classifyByMagicBytes(data []byte) SourceKind {
	for _, entry := range magicTable {
		if matchesAt(data, entry.offset, entry.prefix) {
			return entry.kind
		}
	}

	if isWebP(data) {
		return SourceImage
	}

	if isISOBMFFImage(data) {
		return SourceImage
	}

	return SourceUnknown
}

func matchesAt(data []byte, offset int, prefix []byte) bool {
	if offset+len(prefix) > len(data) {
		return false
	}
	return bytes.Equal(data[offset:offset+len(prefix)], prefix)
}

// isWebP checks the RIFF....WEBP container signature.
func isWebP(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	return bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP"))
}

// isISOBMFFImage checks for a "ftyp" box at offset 4 whose major brand (the
// four bytes immediately following) is one of the HEIC/HEIF family.
func isISOBMFFImage(data []byte) bool {
	if len(data) < 12 || !bytes.Equal(data[4:8], []byte("ftyp")) {
		return false
	}
	brand := strings.ToLower(string(data[8:12]))
	for _, b := range isoBMFFBrands {
		if brand == b {
			return true
		}
	}
	return false
}
