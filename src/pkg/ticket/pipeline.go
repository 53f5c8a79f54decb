package ticket

import (
	"context"
	"errors"
	"image"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"ticket-ocr-core/src/pkg/ocr"
)

// minExtractedTextLength is the floor below which extracted text is
// considered a failed detection rather than a thin ticket, per spec §3/§8.
const minExtractedTextLength = 30

// Pipeline holds the process-wide collaborators the parse pipeline needs.
// A single Pipeline is built once at startup and reused across every
// request; the production OCR recognizer opens its own Tesseract client for
// each recognition call.
type Pipeline struct {
	Recognizer   ocr.Recognizer
	MaxImageSide int
	RasterDPI    int
}

// NewPipeline builds a Pipeline. maxImageSide <= 0 defaults to 2000px,
// rasterDPI <= 0 defaults to 300 DPI.
func NewPipeline(recognizer ocr.Recognizer, maxImageSide int, rasterDPI int) *Pipeline {
	if maxImageSide <= 0 {
		maxImageSide = 2000
	}
	if rasterDPI <= 0 {
		rasterDPI = 300
	}
	return &Pipeline{Recognizer: recognizer, MaxImageSide: maxImageSide, RasterDPI: rasterDPI}
}

// ParseTicket runs the full pipeline: decode, classify, extract text (with
// its fallback ladder), extract fields, walk products, allocate VAT and
// assemble the result.
func (p *Pipeline) ParseTicket(ctx context.Context, payload RawPayload) (*ParsedTicket, *Error) {
	data, decErr := decodePayload(payload)
	if decErr != nil {
		return nil, decErr
	}

	kind, classifyWarnings := classifySource(data, payload.MimeHint)
	if kind == SourceUnknown {
		return nil, errUnsupportedFormat("no se reconoce el tipo de archivo a partir del contenido o del tipo MIME declarado")
	}

	var extraction *TextExtractionResult
	var extractErr *Error
	switch kind {
	case SourcePDF:
		extraction, extractErr = p.extractFromPDF(ctx, data)
	case SourceImage:
		extraction, extractErr = p.extractFromImage(ctx, data)
	}
	if extractErr != nil {
		return nil, extractErr
	}

	extraction.Warnings = append(append([]string{}, classifyWarnings...), extraction.Warnings...)

	tl.Log(
		tl.Notice1, palette.Magenta, "Ticket '%s' extracted via profile '%s' (%d chars)",
		payload.TicketID, extraction.Profile, len(extraction.Text),
	)

	return p.assemble(payload.TicketID, extraction), nil
}

// extractFromPDF implements the pdf-text -> pdf-ocr fallback ladder from
// spec §4.2: attempt native text first; a page set with no extractable text
// or below-threshold native text falls through to rasterize-and-OCR. A
// document that MuPDF cannot open at all is reported as CorruptPdf at once;
// no OCR is attempted for it.
func (p *Pipeline) extractFromPDF(ctx context.Context, data []byte) (*TextExtractionResult, *Error) {
	doc, openErr := ocr.OpenPDF(data)
	if openErr != nil {
		return nil, errCorruptPdf(openErr)
	}
	defer func() {
		_ = doc.Close()
	}()

	text, nativeErr := doc.NativeText()
	if nativeErr == nil && len(strings.TrimSpace(text)) >= minExtractedTextLength {
		return &TextExtractionResult{Text: text, Profile: ProfilePDFText}, nil
	}

	return p.pdfOCR(ctx, doc)
}

func (p *Pipeline) pdfOCR(ctx context.Context, doc *ocr.PDFDocument) (*TextExtractionResult, *Error) {
	var pages []string
	var warnings []string

	for i := 0; i < doc.NumPage(); i++ {
		img, rasterErr := doc.RasterizePage(i, p.RasterDPI)
		if rasterErr != nil {
			return nil, errCorruptPdf(rasterErr)
		}

		pageText, pageWarnings, ocrErr := p.recognizeImage(ctx, img)
		if ocrErr != nil {
			return nil, ocrErr
		}
		pages = append(pages, pageText)
		warnings = append(warnings, pageWarnings...)
	}

	text := strings.Join(pages, "\n\n")
	if len(strings.TrimSpace(text)) < minExtractedTextLength {
		return nil, errTicketNotDetected()
	}

	warnings = append([]string{"Texto PDF insuficiente; se aplica OCR sobre imagen"}, warnings...)
	return &TextExtractionResult{Text: text, Profile: ProfilePDFOCR, Warnings: warnings}, nil
}

// extractFromImage implements the image-ocr strategy: decode (converting
// HEIC/HEIF first), preprocess, recognize.
func (p *Pipeline) extractFromImage(ctx context.Context, data []byte) (*TextExtractionResult, *Error) {
	img, decodeErr := p.decodeImageBytes(ctx, data)
	if decodeErr != nil {
		return nil, decodeErr
	}

	text, warnings, ocrErr := p.recognizeImage(ctx, img)
	if ocrErr != nil {
		return nil, ocrErr
	}
	if len(strings.TrimSpace(text)) < minExtractedTextLength {
		return nil, errTicketNotDetected()
	}
	return &TextExtractionResult{Text: text, Profile: ProfileImageOCR, Warnings: warnings}, nil
}

func (p *Pipeline) decodeImageBytes(ctx context.Context, data []byte) (image.Image, *Error) {
	if ocr.IsHEIC(data) {
		png, heicErr := ocr.ConvertHEICToPNG(ctx, data)
		if heicErr != nil {
			return nil, errUnsupportedFormat("no se pudo convertir la imagen HEIC/HEIF: " + heicErr.Error())
		}
		data = png
	}

	img, err := ocr.DecodeImage(data)
	if err != nil {
		// classifySource already confirmed an image-family magic number or
		// MIME hint; a decode failure here means the bytes are corrupt
		// rather than genuinely unsupported, but the taxonomy has no
		// dedicated "corrupt image" variant, so this is reported the same
		// way an unrecognized format would be.
		return nil, errUnsupportedFormat("la imagen no se pudo decodificar: " + err.Error())
	}
	return img, nil
}

// recognizeImage preprocesses img and runs it through the OCR recognizer,
// translating ocr-package sentinel errors into the domain error taxonomy.
func (p *Pipeline) recognizeImage(ctx context.Context, img image.Image) (string, []string, *Error) {
	preprocessed := ocr.Preprocess(img, p.MaxImageSide)

	png, encErr := ocr.EncodePNG(preprocessed.Image)
	if encErr != nil {
		return "", nil, errInternal(encErr)
	}

	text, recErr := p.Recognizer.Recognize(ctx, png)
	if recErr != nil {
		switch {
		case errors.Is(recErr, context.Canceled), errors.Is(recErr, context.DeadlineExceeded):
			return "", nil, errCancelled(recErr)
		case errors.Is(recErr, ocr.ErrUnavailable):
			return "", nil, errOcrUnavailable(recErr)
		case errors.Is(recErr, ocr.ErrRuntime):
			return "", nil, errOcrRuntime(recErr)
		default:
			return "", nil, errOcrRuntime(recErr)
		}
	}

	return text, preprocessed.Warnings, nil
}

// assemble runs every field extractor plus the product walker and VAT
// allocator over already-extracted text, per spec §4.6.
func (p *Pipeline) assemble(ticketID string, extraction *TextExtractionResult) *ParsedTicket {
	text := strings.TrimSpace(extraction.Text)

	result := &ParsedTicket{
		TicketID:          ticketID,
		RawText:           text,
		Productos:         walkProducts(text),
		IvaDesglose:       extractIvaBreakdown(text),
		ProcessingProfile: extraction.Profile,
		Warnings:          extraction.Warnings,
	}

	if numero, ok := extractInvoiceNumber(text); ok {
		result.NumeroFactura = &numero
	}
	if fecha, fechaHora, hasFecha, hasHora := extractFechaYHora(text); hasFecha {
		result.Fecha = &fecha
		if hasHora {
			result.FechaHora = &fechaHora
		}
	}
	if total, ok := extractTotal(text); ok {
		result.Total = &total
	}
	if tienda, ubicacion, hasTienda, hasUbicacion := extractStoreDetails(text); hasTienda || hasUbicacion {
		if hasTienda {
			result.Tienda = &tienda
		}
		if hasUbicacion {
			result.Ubicacion = &ubicacion
		}
	}
	if metodo, ok := extractMetodoPago(text); ok {
		result.MetodoPago = &metodo
	}
	if operacion, ok := extractNumeroOperacion(text); ok {
		result.NumeroOperacion = &operacion
	}

	allocateIva(result.Productos, result.IvaDesglose)

	return result
}
