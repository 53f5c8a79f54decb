// ticket-parse is a one-shot CLI around the ticket parsing core, the way
// the teacher ships cmd/receipt-pipeline around its own pkg/ocr: point it
// at a file, get back the parsed JSON.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"ticket-ocr-core/src/pkg/config"
	"ticket-ocr-core/src/pkg/ocr"
	"ticket-ocr-core/src/pkg/ticket"
	"ticket-ocr-core/src/pkg/util"
)

func main() {
	config.CheckIfEnvVarsPresent()

	envPath := flag.String("env", "", "Path to a .env file (optional).")
	inputPath := flag.String("input", "", "Path to the PDF or image ticket to parse.")
	outputDirPath := flag.String("out", "./out", "Directory where the parsed JSON will be written.")
	mimeHint := flag.String("mime", "", "MIME type hint (optional; inferred from file contents otherwise).")

	flag.Parse()
	util.RequiredFlag(inputPath, "input")
	util.EnsureFlags()

	config.InitializeConfig(*envPath)

	tl.Log(
		tl.Notice, palette.BlueBold, "%s entrypoint. Input: '%s'",
		"Running ticket parse", *inputPath,
	)

	if e := runParse(*inputPath, *outputDirPath, *mimeHint); e != nil {
		e.QuitIf(xerr.ErrorTypeError)
	}
}

func runParse(inputPath string, outputDirPath string, mimeHint string) *xerr.Error {
	raw, readErr := os.ReadFile(inputPath)
	if readErr != nil {
		return xerr.NewError(readErr, "read input file", inputPath)
	}

	recognizer := ocr.NewRecognizer(config.Cfg.OcrLanguages)
	pipeline := ticket.NewPipeline(recognizer, config.Cfg.OcrMaxImageSide, 300)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(config.Cfg.OcrTimeoutSeconds)*time.Second)
	defer cancel()

	payload := ticket.RawPayload{
		TicketID:   filepath.Base(inputPath),
		FileName:   filepath.Base(inputPath),
		ContentB64: base64.StdEncoding.EncodeToString(raw),
		MimeHint:   mimeHint,
	}

	parsed, parseErr := pipeline.ParseTicket(ctx, payload)
	if parseErr != nil {
		return xerr.NewError(parseErr, "parse ticket", inputPath)
	}

	if mkdirErr := os.MkdirAll(outputDirPath, 0o755); mkdirErr != nil {
		return xerr.NewError(mkdirErr, "create output directory", outputDirPath)
	}

	jsonBytes, marshalErr := json.MarshalIndent(parsed, "", "  ")
	if marshalErr != nil {
		return xerr.NewError(marshalErr, "marshal parsed ticket to JSON", inputPath)
	}

	outputPath := filepath.Join(outputDirPath, payload.TicketID+".json")
	if writeErr := os.WriteFile(outputPath, jsonBytes, 0o644); writeErr != nil {
		return xerr.NewError(writeErr, "write parsed ticket JSON", outputPath)
	}

	tl.Log(
		tl.Notice1, palette.GreenBold, "Parsed ticket written to '%s' (profile: '%s')",
		outputPath, parsed.ProcessingProfile,
	)

	return nil
}
