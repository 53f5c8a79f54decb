package ocr

import (
	"context"
	"errors"
	"fmt"

	"github.com/otiai10/gosseract/v2"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

// ErrUnavailable reports that the OCR engine could not be reached or
// configured at all (missing binary, missing language data). Recognize
// wraps it with fmt.Errorf("%w: ...", ErrUnavailable), so callers match it
// with errors.Is.
var ErrUnavailable = errors.New("ocr engine unavailable")

// ErrRuntime reports that the OCR engine ran but failed partway through
// recognition.
var ErrRuntime = errors.New("ocr engine failed during recognition")

// Recognizer runs OCR over a preprocessed image buffer. It is an interface
// so the pipeline can be exercised against a fake in tests without a real
// Tesseract install.
type Recognizer interface {
	Recognize(ctx context.Context, png []byte) (string, error)
}

// tesseractRecognizer is the production Recognizer backed by gosseract.
// Each call opens its own client rather than sharing one across requests:
// gosseract.Client wraps a C++ TessBaseAPI handle that is not safe for
// concurrent use, and the pipeline may have several parses in flight.
type tesseractRecognizer struct {
	languages string
}

// NewRecognizer builds the production Recognizer. languages is a
// Tesseract-style language spec, e.g. "spa+eng".
func NewRecognizer(languages string) Recognizer {
	if languages == "" {
		languages = "spa+eng"
	}
	return &tesseractRecognizer{languages: languages}
}

func (r *tesseractRecognizer) Recognize(ctx context.Context, png []byte) (string, error) {
	client := gosseract.NewClient()
	textStarted := false
	defer func() {
		// Once Text() has started, the goroutine running it owns the client
		// and closes it when Text() returns.
		if !textStarted {
			_ = client.Close()
		}
	}()

	if err := client.SetLanguage(r.languages); err != nil {
		return "", fmt.Errorf("%w: SetLanguage: %v", ErrUnavailable, err)
	}

	// Preserve multiple spaces between words/columns so column alignment
	// in the product table survives into the extracted text.
	if err := client.SetVariable("preserve_interword_spaces", "1"); err != nil {
		return "", fmt.Errorf("%w: SetVariable(preserve_interword_spaces): %v", ErrUnavailable, err)
	}

	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("%w: SetPageSegMode(PSM_SINGLE_BLOCK): %v", ErrUnavailable, err)
	}

	if err := client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("%w: SetImageFromBytes: %v", ErrUnavailable, err)
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	textStarted = true
	go func() {
		defer func() {
			_ = client.Close()
		}()
		text, err := client.Text()
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("%w: %v", ErrRuntime, res.err)
		}
		tl.Log(tl.Info1, palette.Green, "OCR completed (text length: %s)", fmt.Sprintf("%d", len(res.text)))
		return res.text, nil
	}
}
