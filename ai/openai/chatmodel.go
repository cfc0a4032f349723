// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/quaerit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ChatModel implements ai.ChatModel using OpenAI-compatible chat APIs.
// Completions run at temperature 0 with JSON mode so the router, generator,
// and judge get output as close to their schemas as the backend allows.
type ChatModel struct {
	client llms.Model
	model  string
	logger *slog.Logger
}

// newChatModel is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newChatModel(host, model string) (*ChatModel, error) {
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(host),
		openai.WithToken("none"),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}

	return &ChatModel{
		client: client,
		model:  model,
		logger: slog.Default().With("component", "openai-chat", "model", model),
	}, nil
}

// NewChatModel creates a new chat model client for the given host and model.
//
// Returns ai.ChatModel interface to enforce abstraction.
func NewChatModel(host, model string) (ai.ChatModel, error) {
	return newChatModel(host, model)
}

// Complete sends one system+user prompt pair to the model and returns the
// raw response text. The response is not parsed or repaired here; callers
// own the schema and must treat the output as untrusted.
func (m *ChatModel) Complete(ctx context.Context, system, user string) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(system),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(user),
			},
		},
	}

	response, err := m.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		m.logger.Error("chat completion failed", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		m.logger.Debug("no choices returned from model")
		return "", nil
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}
