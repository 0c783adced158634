package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const geminiAPIURLTemplate = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"

// GeminiProvider implements Provider for Google's Gemini API.
type GeminiProvider struct {
	config  *ProviderConfig
	client  *http.Client
	logger  *zap.Logger
	tracer  trace.Tracer
	limiter *rate.Limiter
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(config *ProviderConfig, logger *zap.Logger) *GeminiProvider {
	rps := float64(config.RateLimitRPM) / 60.0
	if rps <= 0 {
		rps = 1
	}

	return &GeminiProvider{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger:  logger,
		tracer:  otel.Tracer("gemini-provider"),
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable reports whether an API credential is configured.
func (p *GeminiProvider) IsAvailable() bool {
	return p.config.APIKey != ""
}

// ChatCompletion performs a chat completion against the Gemini REST API.
func (p *GeminiProvider) ChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	startTime := time.Now()
	ctx, span := p.tracer.Start(ctx, "gemini.chat_completion", trace.WithAttributes(
		attribute.Int("message_count", len(req.Messages)),
	))
	defer span.End()

	if !p.IsAvailable() {
		return nil, &ProviderError{
			Provider: p.Name(),
			Code:     ErrorCodeAuthentication,
			Message:  "API key not configured",
		}
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &ProviderError{
			Provider:  p.Name(),
			Code:      ErrorCodeRateLimit,
			Message:   "rate limit exceeded",
			Retryable: true,
		}
	}

	reqBody, err := json.Marshal(p.buildGeminiRequest(req))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := fmt.Sprintf(geminiAPIURLTemplate, p.config.Model, p.config.APIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(reqBody))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		return nil, &ProviderError{
			Provider:  p.Name(),
			Code:      ErrorCodeTimeout,
			Message:   err.Error(),
			Retryable: true,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, p.handleHTTPError(resp.StatusCode, body)
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	chatResp := p.convertResponse(&geminiResp, time.Since(startTime))

	span.SetAttributes(
		attribute.Int("tokens_used", chatResp.TokensUsed),
		attribute.String("finish_reason", chatResp.FinishReason),
	)

	p.logger.Debug("Gemini completion successful",
		zap.Int("tokens", chatResp.TokensUsed),
		zap.Duration("duration", chatResp.Duration),
		zap.String("model", chatResp.Model),
	)

	return chatResp, nil
}

// buildGeminiRequest converts our ChatRequest to Gemini's wire format.
func (p *GeminiProvider) buildGeminiRequest(req *ChatRequest) map[string]interface{} {
	contents := make([]map[string]interface{}, 0, len(req.Messages))

	// Gemini uses "user" and "model" roles and has no system role; the
	// system prompt is prepended to the first user message.
	for _, msg := range req.Messages {
		role := msg.Role
		if role == "assistant" {
			role = "model"
		}
		if role == "system" {
			continue
		}

		contents = append(contents, map[string]interface{}{
			"role": role,
			"parts": []map[string]string{
				{"text": msg.Content},
			},
		})
	}

	if req.SystemPrompt != "" && len(contents) > 0 {
		if parts, ok := contents[0]["parts"].([]map[string]string); ok && len(parts) > 0 {
			parts[0]["text"] = req.SystemPrompt + "\n\n" + parts[0]["text"]
		}
	}

	geminiReq := map[string]interface{}{
		"contents": contents,
	}

	genConfig := make(map[string]interface{})
	if req.MaxTokens > 0 {
		genConfig["maxOutputTokens"] = req.MaxTokens
	} else if p.config.MaxTokens > 0 {
		genConfig["maxOutputTokens"] = p.config.MaxTokens
	}
	if req.Temperature > 0 {
		genConfig["temperature"] = req.Temperature
	} else if p.config.Temperature > 0 {
		genConfig["temperature"] = p.config.Temperature
	}
	if req.ForceJSON {
		genConfig["response_mime_type"] = "application/json"
	}
	if len(genConfig) > 0 {
		geminiReq["generationConfig"] = genConfig
	}

	return geminiReq
}

// convertResponse converts a Gemini response to our ChatResponse format.
func (p *GeminiProvider) convertResponse(resp *geminiResponse, duration time.Duration) *ChatResponse {
	chatResp := &ChatResponse{
		Provider: p.Name(),
		Model:    p.config.Model,
		Duration: duration,
	}

	if len(resp.Candidates) == 0 {
		return chatResp
	}

	candidate := resp.Candidates[0]
	chatResp.FinishReason = candidate.FinishReason

	if len(candidate.Content.Parts) > 0 {
		chatResp.Content = candidate.Content.Parts[0].Text
	}

	if resp.UsageMetadata != nil {
		chatResp.TokensUsed = resp.UsageMetadata.TotalTokenCount
	}

	return chatResp
}

// handleHTTPError converts HTTP error responses to ProviderError.
func (p *GeminiProvider) handleHTTPError(statusCode int, body []byte) error {
	var errorResp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}

	_ = json.Unmarshal(body, &errorResp)

	provErr := &ProviderError{
		Provider: p.Name(),
		Message:  errorResp.Error.Message,
	}

	switch statusCode {
	case http.StatusTooManyRequests:
		provErr.Code = ErrorCodeRateLimit
		provErr.Retryable = true
	case http.StatusUnauthorized, http.StatusForbidden:
		provErr.Code = ErrorCodeAuthentication
	case http.StatusBadRequest:
		provErr.Code = ErrorCodeInvalidRequest
	case http.StatusInternalServerError, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		provErr.Code = ErrorCodeServerError
		provErr.Retryable = true
	default:
		provErr.Code = ErrorCodeUnavailable
	}

	p.logger.Error("Gemini API error",
		zap.Int("status_code", statusCode),
		zap.String("error_status", errorResp.Error.Status),
		zap.String("error_message", errorResp.Error.Message),
	)

	return provErr
}

// Gemini API response structures
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
			Role string `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata,omitempty"`
}
