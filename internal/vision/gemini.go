package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mlei/skuforge/internal/archive"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// maxImages caps how many photos are sent per request; additional images
// add cost without improving the description.
const maxImages = 5

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"

// Gemini calls the Gemini generateContent REST API. It implements
// Analyzer. Calls are blocking; there is no automatic retry.
type Gemini struct {
	APIKey string
	Model  string // defaults to DefaultModel
	HTTP   *http.Client
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze sends the prompt and images to the model and decodes the
// response into a description mapping.
func (g *Gemini) Analyze(ctx context.Context, req Request) (map[string]any, error) {
	model := g.Model
	if model == "" {
		model = DefaultModel
	}
	client := g.HTTP
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}

	parts := []geminiPart{{Text: BuildPrompt(req)}}
	images := req.Images
	if len(images) > maxImages {
		images = images[:maxImages]
	}
	for _, img := range images {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: mimeType(img),
			Data:     base64.StdEncoding.EncodeToString(img),
		}})
	}

	body, err := json.Marshal(geminiRequest{Contents: []geminiContent{{Parts: parts}}})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf(geminiEndpoint, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.APIKey)

	slog.Debug("calling vision model", "model", model, "images", len(images))
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read model response: %w", err)
	}

	var decoded geminiResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("decode model response (status %d): %w", resp.StatusCode, err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("model error %d: %s", decoded.Error.Code, decoded.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model returned status %d", resp.StatusCode)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return nil, &ExtractionError{Reason: "model returned no candidates", Raw: string(respBody)}
	}

	return DecodeResponse(decoded.Candidates[0].Content.Parts[0].Text)
}

// mimeType maps the sniffed image container to its media type.
func mimeType(data []byte) string {
	switch archive.DetectExt(data) {
	case ".png":
		return "image/png"
	case ".bmp":
		return "image/bmp"
	case ".tiff":
		return "image/tiff"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
