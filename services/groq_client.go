package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hemadevihema/Medical-Risk-Assesment-System-Capstone-Project/utils"
)

const groqDefaultBaseURL = "https://api.groq.com/openai/v1"

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompleter is the LLM dependency of the generation pipeline.
// Complete returns the generated text and the model id that produced it.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, string, error)
}

// GroqClient talks to the Groq chat-completions API (OpenAI-compatible).
// One call walks the model chain: for each model, transient failures
// (timeout, 429, 5xx) are retried with backoff up to maxRetries; a 400 or
// 404 means the model id is bad or decommissioned and moves on to the
// next model immediately; a 401 aborts everything since no model will
// authenticate.
type GroqClient struct {
	client      *http.Client
	apiKey      string
	baseURL     string
	models      []string // primary first, then fallbacks
	maxRetries  int
	backoff     time.Duration
	maxTokens   int
	temperature float64
}

func NewGroqClient() *GroqClient {
	models := []string{"llama-3.1-70b-versatile", "llama-3.1-8b-instant"}
	if m := strings.TrimSpace(os.Getenv("GROQ_MODEL")); m != "" {
		models = []string{m}
		if fb := strings.TrimSpace(os.Getenv("GROQ_FALLBACK_MODEL")); fb != "" {
			models = append(models, fb)
		}
	}

	baseURL := strings.TrimRight(os.Getenv("GROQ_API_URL"), "/")
	if baseURL == "" {
		baseURL = groqDefaultBaseURL
	}

	return &GroqClient{
		client:      &http.Client{}, // per-call deadlines come from the context
		apiKey:      os.Getenv("GROQ_API_KEY"),
		baseURL:     baseURL,
		models:      models,
		maxRetries:  2,
		backoff:     time.Second,
		maxTokens:   500,
		temperature: 0.7,
	}
}

type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type groqErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (g *GroqClient) Complete(ctx context.Context, messages []ChatMessage) (string, string, error) {
	if g.apiKey == "" {
		return "", "", &utils.ExternalServiceError{
			Service: "groq", Kind: utils.ExternalUnauthorized,
			Message: "GROQ_API_KEY not set", StatusCode: 401,
		}
	}

	var lastErr error
	for _, model := range g.models {
		text, err := g.completeWithModel(ctx, model, messages)
		if err == nil {
			return text, model, nil
		}
		lastErr = err

		var extErr *utils.ExternalServiceError
		if errors.As(err, &extErr) {
			switch extErr.Kind {
			case utils.ExternalBadRequest:
				// model likely invalid or decommissioned, try the next one
				continue
			case utils.ExternalUnauthorized:
				return "", "", err
			}
		}
		if ctx.Err() != nil {
			return "", "", err
		}
		// transient failure exhausted its retry budget; a fallback model
		// on separate capacity may still answer
	}
	return "", "", lastErr
}

func (g *GroqClient) completeWithModel(ctx context.Context, model string, messages []ChatMessage) (string, error) {
	backoff := g.backoff

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return "", g.ctxError(ctx)
		}

		text, retryAfter, err := g.doOnce(ctx, model, messages)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var extErr *utils.ExternalServiceError
		if errors.As(err, &extErr) && !extErr.Retryable() {
			return "", err
		}
		if attempt == g.maxRetries {
			break
		}

		sleep := backoff
		if retryAfter > 0 {
			sleep = retryAfter
		}
		if sleep > 10*time.Second {
			sleep = 10 * time.Second
		}

		select {
		case <-ctx.Done():
			return "", g.ctxError(ctx)
		case <-time.After(sleep):
		}
		backoff *= 2
	}
	return "", lastErr
}

// doOnce performs a single API call. The second return value is the
// server-requested Retry-After delay, when one was given.
func (g *GroqClient) doOnce(ctx context.Context, model string, messages []ChatMessage) (string, time.Duration, error) {
	body, err := json.Marshal(groqRequest{
		Model:       model,
		Messages:    messages,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		Stream:      false,
	})
	if err != nil {
		return "", 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", 0, g.transportError(ctx, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, g.transportError(ctx, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", retryAfterDuration(resp), g.statusError(resp.StatusCode, respBytes)
	}

	var out groqResponse
	if err := json.Unmarshal(respBytes, &out); err != nil {
		return "", 0, &utils.ExternalServiceError{
			Service: "groq", Kind: utils.ExternalInvalidResponse,
			Message: fmt.Sprintf("undecodable response: %v", err), StatusCode: 502,
		}
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", 0, &utils.ExternalServiceError{
			Service: "groq", Kind: utils.ExternalInvalidResponse,
			Message: "response contained no generated text", StatusCode: 502,
		}
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), 0, nil
}

func (g *GroqClient) statusError(status int, body []byte) error {
	msg := string(body)
	var parsed groqErrorBody
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		msg = parsed.Error.Message
	}
	if len(msg) > 300 {
		msg = msg[:300] + "..."
	}

	kind := utils.ExternalServerError
	switch {
	case status == http.StatusTooManyRequests:
		kind = utils.ExternalRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = utils.ExternalUnauthorized
	case status == http.StatusBadRequest || status == http.StatusNotFound:
		kind = utils.ExternalBadRequest
	case status == http.StatusRequestTimeout:
		kind = utils.ExternalTimeout
	}

	return &utils.ExternalServiceError{
		Service: "groq", Kind: kind,
		Message: fmt.Sprintf("api error (%d): %s", status, msg), StatusCode: status,
	}
}

func (g *GroqClient) transportError(ctx context.Context, err error) error {
	kind := utils.ExternalServerError
	msg := err.Error()

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		kind = utils.ExternalTimeout
		msg = "request deadline exceeded"
	}
	return &utils.ExternalServiceError{
		Service: "groq", Kind: kind, Message: msg, StatusCode: 504,
	}
}

func (g *GroqClient) ctxError(ctx context.Context) error {
	if ctx.Err() == context.DeadlineExceeded {
		return &utils.ExternalServiceError{
			Service: "groq", Kind: utils.ExternalTimeout,
			Message: "request deadline exceeded", StatusCode: 504,
		}
	}
	return ctx.Err()
}

func retryAfterDuration(resp *http.Response) time.Duration {
	ra := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if ra == "" {
		return 0
	}
	secs, err := strconv.Atoi(ra)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
