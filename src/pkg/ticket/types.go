// Package ticket implements the receipt parsing core: decoding, source
// classification, text extraction dispatch, field extraction, the product
// table walker and the VAT allocator for Spanish grocery purchase tickets.
package ticket

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceKind is the closed set of input kinds the classifier can resolve.
type SourceKind string

const (
	SourcePDF     SourceKind = "pdf"
	SourceImage   SourceKind = "image"
	SourceUnknown SourceKind = "unknown"
)

// ProcessingProfile names which extraction strategy produced the raw text.
type ProcessingProfile string

const (
	ProfilePDFText  ProcessingProfile = "pdf-text"
	ProfilePDFOCR   ProcessingProfile = "pdf-ocr"
	ProfileImageOCR ProcessingProfile = "image-ocr"
)

// Unit is the normalized unit of measure for a product line.
type Unit string

const (
	UnitUnidad Unit = "unidad"
	UnitKg     Unit = "kg"
	UnitLitro  Unit = "l"
)

// RawPayload is the request as handed to the pipeline: a base64 blob plus
// an optional MIME hint. It is immutable through the pipeline.
type RawPayload struct {
	TicketID    string
	FileName    string
	ContentB64  string
	MimeHint    string
}

// TextExtractionResult is what a text-extraction strategy produces.
type TextExtractionResult struct {
	Text     string
	Profile  ProcessingProfile
	Warnings []string
}

// ParsedProduct is a single product line after the product walker and VAT
// allocator have both run.
type ParsedProduct struct {
	Nombre          string          `json:"nombre"`
	Cantidad        decimal.Decimal `json:"cantidad"`
	Unidad          Unit            `json:"unidad"`
	PrecioUnitario  decimal.Decimal `json:"precio_unitario"`
	PrecioTotal     decimal.Decimal `json:"precio_total"`
	Descuento       decimal.Decimal `json:"descuento"`
	IvaPorcentaje   decimal.Decimal `json:"iva_porcentaje"`
	IvaImporte      decimal.Decimal `json:"iva_importe"`
}

// IvaBreakdown is one row of the VAT table printed at the foot of the ticket.
type IvaBreakdown struct {
	Porcentaje     decimal.Decimal `json:"porcentaje"`
	BaseImponible  decimal.Decimal `json:"base_imponible"`
	Cuota          decimal.Decimal `json:"cuota"`
}

// ParsedTicket is the fully assembled result of the pipeline.
type ParsedTicket struct {
	TicketID          string            `json:"ticket_id"`
	RawText           string            `json:"raw_text"`
	NumeroFactura     *string           `json:"numero_factura"`
	Fecha             *string           `json:"fecha"`
	FechaHora         *time.Time        `json:"fecha_hora"`
	Total             *decimal.Decimal  `json:"total"`
	Tienda            *string           `json:"tienda"`
	Ubicacion         *string           `json:"ubicacion"`
	MetodoPago        *string           `json:"metodo_pago"`
	NumeroOperacion   *string           `json:"numero_operacion"`
	Productos         []ParsedProduct   `json:"productos"`
	IvaDesglose       []IvaBreakdown    `json:"iva_desglose"`
	ProcessingProfile ProcessingProfile `json:"processing_profile"`
	Warnings          []string          `json:"warnings"`
}
