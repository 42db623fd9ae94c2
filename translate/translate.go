package translate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/rs/zerolog"

	"github.com/ibento/common"
)

// Cache holds translations for the lifetime of one run. It is injected, not
// module-level, so its scope and reset behavior are explicit.
type Cache struct {
	entries map[string]string
}

func NewCache() *Cache {
	return &Cache{entries: map[string]string{}}
}

func (c *Cache) Get(text string) (string, bool) {
	v, ok := c.entries[text]
	return v, ok
}

func (c *Cache) Put(text, translated string) {
	c.entries[text] = translated
}

type PerTitle struct {
	Index int    `json:"index"` // position in the input slice
	Text  string `json:"text"`  // the English rendering
}

type BatchOut struct {
	Results []PerTitle `json:"results"`
}

var batchOutSchema = common.GenerateSchema[BatchOut]()

// Translator fills missing English titles. Best-effort: callers treat any
// error as "leave the field empty this run".
type Translator struct {
	client openai.Client
	cache  *Cache
	logger zerolog.Logger
}

func New(cache *Cache, logger zerolog.Logger) *Translator {
	return &Translator{
		client: openai.NewClient(),
		cache:  cache,
		logger: logger,
	}
}

// TranslateTitles renders each Japanese title in English, preserving order.
// Cached entries are not re-sent; a title the model skips comes back empty.
func (t *Translator) TranslateTitles(ctx context.Context, titles []string) ([]string, error) {
	out := make([]string, len(titles))

	var pending []string
	var pendingIdx []int
	for i, title := range titles {
		if cached, ok := t.cache.Get(title); ok {
			out[i] = cached
			continue
		}
		pendingIdx = append(pendingIdx, i)
		pending = append(pending, title)
	}
	if len(pending) == 0 {
		return out, nil
	}

	prompt := fmt.Sprintf(`You are a translation assistant for Japanese event listings.
Given an ordered list of Japanese event titles, produce results in the SAME order.
For each title i, "text" is a natural English rendering. Keep proper nouns
romanized, do not explain, do not add years or venues that are not in the title.

Return ONLY JSON that conforms to the provided schema.
Input titles (0-based indices):
%v
`, pending)

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "BatchTranslationResponse",
		Description: openai.String("Schema for batch title translation response"),
		Strict:      openai.Bool(true),
		Schema:      batchOutSchema,
	}
	chat, err := t.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
		// Only certain models can perform structured outputs
		Model: openai.ChatModelGPT4oMini,
	})
	if err != nil {
		return nil, err
	}

	var batchOut BatchOut
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &batchOut); err != nil {
		return nil, err
	}

	for _, result := range batchOut.Results {
		if result.Index >= len(pending) {
			t.logger.Warn().Msgf("Skipping out-of-bounds result (title index %d)", result.Index)
			continue
		}
		out[pendingIdx[result.Index]] = result.Text
		t.cache.Put(pending[result.Index], result.Text)
	}

	return out, nil
}

// Translate is the single-text convenience form.
func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	results, err := t.TranslateTitles(ctx, []string{text})
	if err != nil {
		return "", err
	}
	return results[0], nil
}
