// utils/ocr.go
package utils

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

var ocrClient *rekognition.Client

// must be called once at startup (e.g. in main.go)
func InitOCR() {
	awsRegion := os.Getenv("AWS_REGION")
	if awsRegion == "" {
		log.Println("AWS_REGION not set, OCR parsing disabled")
		return
	}
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		log.Printf("unable to load AWS config, OCR parsing disabled: %v", err)
		return
	}
	ocrClient = rekognition.NewFromConfig(cfg)
}

// OCRDocument is the structured result of parsing an uploaded report:
// every detected "key: value" line becomes a field, everything else is
// kept as raw lines.
type OCRDocument struct {
	Fields map[string]string `json:"fields"`
	Lines  []string          `json:"lines"`
}

// ParseDocument runs text detection on an uploaded image and maps the
// detected lines into clinical fields a caller can feed straight into an
// assessment submission.
func ParseDocument(ctx context.Context, imageBytes []byte) (*OCRDocument, error) {
	if ocrClient == nil {
		return nil, &ExternalServiceError{
			Service:    "ocr",
			Kind:       ExternalUnauthorized,
			Message:    "OCR backend not configured",
			StatusCode: 503,
		}
	}

	out, err := ocrClient.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: imageBytes},
	})
	if err != nil {
		return nil, &ExternalServiceError{
			Service:    "ocr",
			Kind:       ExternalServerError,
			Message:    err.Error(),
			StatusCode: 502,
		}
	}

	doc := &OCRDocument{Fields: map[string]string{}}
	for _, det := range out.TextDetections {
		if det.Type != types.TextTypesLine || det.DetectedText == nil {
			continue
		}
		line := strings.TrimSpace(*det.DetectedText)
		if line == "" {
			continue
		}
		doc.Lines = append(doc.Lines, line)

		if k, v, found := strings.Cut(line, ":"); found {
			key := strings.ToLower(strings.TrimSpace(k))
			key = strings.ReplaceAll(key, " ", "_")
			val := strings.TrimSpace(v)
			if key != "" && val != "" {
				doc.Fields[key] = val
			}
		}
	}
	return doc, nil
}
