package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/adverse-event-server/internal/domain"
)

const llmSystemPrompt = "You translate short clinical terms from adverse drug event reports. " +
	"Reply with the translation only: no quotes, no explanations, no extra lines. " +
	"Keep drug brand and generic names unchanged."

var languageNames = map[string]string{
	"en": "English",
	"fr": "French",
	"sw": "Swahili",
	"es": "Spanish",
	"de": "German",
	"pt": "Portuguese",
	"ar": "Arabic",
}

// LLMTranslator translates through an OpenAI-compatible chat model
type LLMTranslator struct {
	chatModel model.BaseChatModel
}

// NewLLMTranslator creates a translator backed by the configured chat model
func NewLLMTranslator(ctx context.Context, config domain.LLMTranslationConfig) (*LLMTranslator, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: config.BaseURL,
		APIKey:  config.APIKey,
		Model:   config.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat model: %w", err)
	}
	return NewLLMTranslatorWithModel(chatModel), nil
}

// NewLLMTranslatorWithModel wraps an existing chat model
func NewLLMTranslatorWithModel(chatModel model.BaseChatModel) *LLMTranslator {
	return &LLMTranslator{chatModel: chatModel}
}

// Name identifies the backend
func (t *LLMTranslator) Name() string {
	return "llm"
}

// Translate asks the model for a single translation
func (t *LLMTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(llmSystemPrompt),
		schema.UserMessage(fmt.Sprintf("Translate from %s to %s:\n%s",
			languageName(sourceLang), languageName(targetLang), text)),
	}

	resp, err := t.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("chat model request failed: %w", err)
	}
	if resp == nil {
		return "", errors.New("chat model returned no message")
	}

	translated := strings.TrimSpace(resp.Content)
	translated = strings.Trim(translated, "\"“”")
	if translated == "" {
		return "", errors.New("chat model returned empty translation")
	}
	return translated, nil
}

func languageName(tag string) string {
	if name, ok := languageNames[strings.ToLower(tag)]; ok {
		return name
	}
	return tag
}
