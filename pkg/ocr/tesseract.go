package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

func init() {
	SetDefaultEngine(NewTesseractEngine())
}

// TesseractEngine implements Engine using the gosseract client as the
// default OCR provider. The tesseract OS package is installed by the
// provisioning step.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine constructs a Tesseract-backed OCR engine.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{clientFactory: gosseract.NewClient}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize performs OCR on a single image input.
func (e *TesseractEngine) Recognize(ctx context.Context, in Input) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}
	c := e.clientFactory()
	defer c.Close()

	switch {
	case in.Path != "":
		if err := c.SetImage(in.Path); err != nil {
			return Result{}, fmt.Errorf("set image: %w", err)
		}
	case len(in.Image) > 0:
		if err := c.SetImageFromBytes(in.Image); err != nil {
			return Result{}, fmt.Errorf("set image: %w", err)
		}
	default:
		return Result{}, fmt.Errorf("empty input")
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return Result{}, fmt.Errorf("set languages: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return Result{}, fmt.Errorf("recognize text: %w", err)
	}
	return Result{
		PlainText:  strings.TrimSpace(text),
		Confidence: averageConfidence(c),
	}, nil
}

func averageConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100.0
	}
	return sum / float64(len(boxes))
}
