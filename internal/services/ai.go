package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

type AIService struct {
	client *openai.Client
}

// TaskDraft is a task suggestion produced from free-form text.
type TaskDraft struct {
	Summary     string `json:"summary"`
	Description string `json:"description"`
	WorkType    string `json:"workType"`
	Priority    string `json:"priority"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// DraftTasksFromText extracts actionable task drafts from text using OpenAI GPT
func (s *AIService) DraftTasksFromText(ctx context.Context, text string) ([]TaskDraft, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`You are a task extraction assistant for a project tracking board. Extract concrete, actionable tasks from the text below.

Text:
%s

Return a JSON array of extracted tasks in this exact shape:
[
  {
    "summary": "short task title",
    "description": "longer task description, may be empty",
    "workType": "one of TASK, BUG, STORY, IMPROVEMENT, SUGGESTION",
    "priority": "one of URGENT, HIGH, MEDIUM, LOW, or empty when unclear"
  }
]

Rules:
- Return an empty array [] when the text contains no tasks
- workType defaults to TASK when unclear
- Return only the JSON, no surrounding prose`, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var drafts []TaskDraft
	if err := json.Unmarshal([]byte(content), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return drafts, nil
}
