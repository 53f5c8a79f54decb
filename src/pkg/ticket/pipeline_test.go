package ticket

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	pngcodec "image/png"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-ocr-core/src/pkg/ocr"
)

// stubRecognizer is the deterministic test double spec.md §9 calls for in
// place of a real Tesseract client: it hands back canned text instead of
// shelling out.
type stubRecognizer struct {
	text string
	err  error
}

func (s *stubRecognizer) Recognize(_ context.Context, _ []byte) (string, error) {
	return s.text, s.err
}

func tinyGrayPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, pngcodec.Encode(&buf, img))
	return buf.Bytes()
}

func TestParseTicketImageEndToEnd(t *testing.T) {
	recognizer := &stubRecognizer{text: goldenTicketText}
	pipeline := NewPipeline(recognizer, 0, 0)

	payload := RawPayload{
		TicketID:   "ticket-1",
		ContentB64: base64.StdEncoding.EncodeToString(tinyGrayPNG(t)),
	}

	parsed, err := pipeline.ParseTicket(context.Background(), payload)
	require.Nil(t, err)
	require.NotNil(t, parsed)

	assert.Equal(t, ProfileImageOCR, parsed.ProcessingProfile)
	require.NotNil(t, parsed.NumeroFactura)
	assert.Equal(t, "2831-021-575287", *parsed.NumeroFactura)
	require.NotNil(t, parsed.Fecha)
	assert.Equal(t, "10/08/2023", *parsed.Fecha)
	require.NotNil(t, parsed.FechaHora)
	require.NotNil(t, parsed.Total)
	assert.True(t, parsed.Total.Equal(dec("52.11")))
	require.NotNil(t, parsed.Tienda)
	assert.Equal(t, "MERCADONA, S.A.", *parsed.Tienda)
	require.NotNil(t, parsed.Ubicacion)
	assert.Equal(t, "C/ PORTUGAL 37, 28943 FUENLABRADA", *parsed.Ubicacion)
	require.NotNil(t, parsed.MetodoPago)
	assert.Equal(t, "Tarjeta bancaria", *parsed.MetodoPago)
	require.NotNil(t, parsed.NumeroOperacion)
	assert.Equal(t, "367328", *parsed.NumeroOperacion)

	require.Len(t, parsed.Productos, 2)
	require.Len(t, parsed.IvaDesglose, 2)

	// The allocator is exercised here but the breakdown totals in this
	// fixture cover a larger ticket than the two sampled lines, so only the
	// allocator's own invariants (spec.md §4.5) are asserted, not which
	// specific bucket wins.
	for _, product := range parsed.Productos {
		assert.True(t, product.IvaPorcentaje.Equal(dec("10")) || product.IvaPorcentaje.Equal(dec("21")))
		assert.True(t, product.IvaImporte.GreaterThanOrEqual(decimal.Zero))
		assert.True(t, product.IvaImporte.LessThanOrEqual(product.PrecioTotal))
	}
}

func TestParseTicketUnknownSourceIsRejected(t *testing.T) {
	recognizer := &stubRecognizer{text: goldenTicketText}
	pipeline := NewPipeline(recognizer, 0, 0)

	payload := RawPayload{
		TicketID:   "ticket-2",
		ContentB64: base64.StdEncoding.EncodeToString([]byte("this is not a pdf or an image")),
	}

	parsed, err := pipeline.ParseTicket(context.Background(), payload)
	assert.Nil(t, parsed)
	require.NotNil(t, err)
	assert.Equal(t, ErrUnsupportedFormat, err.Code)
}

func TestParseTicketTooShortTextIsNotDetected(t *testing.T) {
	recognizer := &stubRecognizer{text: "hi"}
	pipeline := NewPipeline(recognizer, 0, 0)

	payload := RawPayload{
		TicketID:   "ticket-3",
		ContentB64: base64.StdEncoding.EncodeToString(tinyGrayPNG(t)),
	}

	parsed, err := pipeline.ParseTicket(context.Background(), payload)
	assert.Nil(t, parsed)
	require.NotNil(t, err)
	assert.Equal(t, ErrTicketNotDetected, err.Code)
}

func TestParseTicketUnwrappedOcrErrorIsRuntime(t *testing.T) {
	recognizer := &stubRecognizer{err: errors.New("wrapped: " + ocr.ErrUnavailable.Error())}
	pipeline := NewPipeline(recognizer, 0, 0)

	payload := RawPayload{
		TicketID:   "ticket-4",
		ContentB64: base64.StdEncoding.EncodeToString(tinyGrayPNG(t)),
	}

	parsed, err := pipeline.ParseTicket(context.Background(), payload)
	assert.Nil(t, parsed)
	require.NotNil(t, err)
	// the stub error is not wrapped with %w, so it falls through to the
	// default ocr-runtime branch rather than being matched by errors.Is.
	assert.Equal(t, ErrOcrRuntime, err.Code)
}

func TestParseTicketInvalidEncodingIsRejected(t *testing.T) {
	recognizer := &stubRecognizer{text: goldenTicketText}
	pipeline := NewPipeline(recognizer, 0, 0)

	payload := RawPayload{TicketID: "ticket-5", ContentB64: "not base64 !!!"}

	parsed, err := pipeline.ParseTicket(context.Background(), payload)
	assert.Nil(t, parsed)
	require.NotNil(t, err)
	assert.Equal(t, ErrInvalidEncoding, err.Code)
}
