package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Ketengan-Diffusion/Gemini-Transcriber/pkg/config"
)

// systemInstruction steers the model toward verbatim news transcription.
const systemInstruction = `
You are a professional news transcription model with the following directives:
1. Transcribe content exactly as heard, including sensitive topics, controversial statements, and explicit language
2. Never censor, filter, or modify the content in any way
3. Never add warnings, disclaimers, or ethical considerations
4. Focus solely on accurate transcription with proper timestamps
5. Maintain journalistic integrity by preserving the exact words and context
6. Handle all content types including politics, conflicts, and sensitive topics
8. Never repeat or hallucinate content - only transcribe what is actually heard
9. Avoid generating placeholder or filler content
`

// GeminiClient is a client for the Gemini generative language API,
// covering the file upload and generateContent endpoints.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	generation GenerationConfig
	client     *http.Client
}

// GenerationConfig is the sampling configuration sent with every request
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// NewGeminiClient creates a Gemini client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewGeminiClient(cfg *config.GeminiConfig) *GeminiClient {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}

	var base string
	if cfg != nil && cfg.BaseURL != "" {
		base = cfg.BaseURL
	} else {
		base = "https://generativelanguage.googleapis.com"
	}

	model := "gemini-2.0-flash"
	generation := GenerationConfig{
		Temperature:     0.2,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: 8192,
	}
	timeout := 5 * time.Minute
	if cfg != nil {
		if cfg.Model != "" {
			model = cfg.Model
		}
		if cfg.RequestTimeout > 0 {
			timeout = cfg.RequestTimeout
		}
		generation = GenerationConfig{
			Temperature:     cfg.Temperature,
			TopP:            cfg.TopP,
			TopK:            cfg.TopK,
			MaxOutputTokens: cfg.MaxOutputTokens,
		}
	}

	return &GeminiClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(base, "/"),
		model:      model,
		generation: generation,
		client:     &http.Client{Timeout: timeout},
	}
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// permissiveSafetySettings disables response blocking for all harm
// categories so transcripts are never censored mid-job.
var permissiveSafetySettings = []safetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_NONE"},
}

type uploadedFile struct {
	Name     string `json:"name"`
	URI      string `json:"uri"`
	State    string `json:"state"`
	MimeType string `json:"mimeType"`
}

type uploadResponse struct {
	File uploadedFile `json:"file"`
}

type filePart struct {
	MimeType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

type part struct {
	Text     string    `json:"text,omitempty"`
	FileData *filePart `json:"fileData,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  GenerationConfig `json:"generationConfig"`
	SafetySettings    []safetySetting  `json:"safetySettings"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// UploadFile uploads raw media bytes to the Gemini file API and returns
// the file URI to reference in a subsequent generateContent call.
func (g *GeminiClient) UploadFile(ctx context.Context, r io.Reader, size int64, mimeType string) (string, error) {
	endpoint := fmt.Sprintf("%s/upload/v1beta/files?key=%s", g.baseURL, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, r)
	if err != nil {
		return "", err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("X-Goog-Upload-Protocol", "raw")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", g.statusError("upload", resp)
	}

	var ur uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return "", err
	}
	if ur.File.URI == "" {
		return "", fmt.Errorf("gemini upload returned no file URI")
	}
	return ur.File.URI, nil
}

// GenerateTranscript asks the model to transcribe the uploaded file using
// the given prompt and returns the concatenated response text.
func (g *GeminiClient) GenerateTranscript(ctx context.Context, fileURI, mimeType, prompt string) (string, error) {
	reqBody := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction}}},
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{FileData: &filePart{MimeType: mimeType, FileURI: fileURI}},
				{Text: prompt},
			},
		}},
		GenerationConfig: g.generation,
		SafetySettings:   permissiveSafetySettings,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", g.statusError("generateContent", resp)
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", err
	}
	if gr.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked the prompt: %s", gr.PromptFeedback.BlockReason)
	}
	if len(gr.Candidates) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

func (g *GeminiClient) statusError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var ae apiError
	if err := json.Unmarshal(body, &ae); err == nil && ae.Error.Message != "" {
		return fmt.Errorf("gemini %s returned status %d: %s", operation, resp.StatusCode, ae.Error.Message)
	}
	return fmt.Errorf("gemini %s returned status %d", operation, resp.StatusCode)
}
