package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenRouterClient implements Generator over the OpenRouter
// chat-completions API.
type OpenRouterClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

func NewOpenRouterClient(apiKey, model, baseURL string) *OpenRouterClient {
	return &OpenRouterClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenRouterClient) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("openrouter API key is not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("openrouter request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openrouter returned %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("openrouter response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openrouter returned no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func (c *OpenRouterClient) Explain(ctx context.Context, material, expertPrompt string) (string, error) {
	var sb strings.Builder
	sb.WriteString("Analyze the following learning material and explain it in a way a student can follow:\n\n")
	sb.WriteString(material)
	if expertPrompt != "" {
		sb.WriteString("\n\nExpert instructions: ")
		sb.WriteString(expertPrompt)
	}
	sb.WriteString("\n\nGive a short but complete explanation of the key concepts and ideas.")

	explanation, err := c.complete(ctx, sb.String(), 1500)
	if err != nil {
		return "", err
	}
	if explanation == "" {
		return "", fmt.Errorf("empty explanation")
	}
	return explanation, nil
}

func (c *OpenRouterClient) GenerateQuiz(ctx context.Context, material, explanation, expertPrompt string, numQuestions int) ([]GeneratedQuestion, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on the following learning material and explanation, create %d quiz questions.\n\n", numQuestions)
	sb.WriteString("Material: " + material + "\n\n")
	sb.WriteString("Explanation: " + explanation + "\n")
	if expertPrompt != "" {
		sb.WriteString("\nExpert instructions: " + expertPrompt + "\n")
	}
	sb.WriteString(`
Requirements:
- Mix question kinds: facts, understanding, application
- Every question must have a correct answer
- Give 4 options for choice questions
- Respond with ONLY a JSON array of objects:
  {"question_text": "...", "question_type": "single", "options": ["..."], "correct_answer": "..."}
- question_type is one of "text", "single", "multiple"
- for "multiple", correct_answer is a JSON array`)

	content, err := c.complete(ctx, sb.String(), 3000)
	if err != nil {
		return nil, err
	}

	questions, err := parseQuizJSON(content)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("generator returned no questions")
	}
	return questions, nil
}

func (c *OpenRouterClient) Chat(ctx context.Context, message, expertPrompt string) (string, error) {
	prompt := message
	if expertPrompt != "" {
		prompt = expertPrompt + "\n\n" + message
	}
	return c.complete(ctx, prompt, 1000)
}

// parseQuizJSON extracts the question array from model output, tolerating
// code fences but nothing else: malformed JSON is a hard failure.
func parseQuizJSON(content string) ([]GeneratedQuestion, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some models wrap the array in prose; cut to the outermost brackets.
	if start := strings.Index(content, "["); start >= 0 {
		if end := strings.LastIndex(content, "]"); end > start {
			content = content[start : end+1]
		}
	}

	var questions []GeneratedQuestion
	if err := json.Unmarshal([]byte(content), &questions); err != nil {
		return nil, fmt.Errorf("quiz payload is not valid JSON: %w", err)
	}
	for i := range questions {
		if err := questions[i].validate(); err != nil {
			return nil, err
		}
	}
	return questions, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
