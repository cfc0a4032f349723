package main

import (
	"fmt"
	"os"

	"github.com/poiesic/quaerit"
	"github.com/poiesic/quaerit/ai"
	"github.com/poiesic/quaerit/core"
	"github.com/poiesic/quaerit/router"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML configuration file layout.
//
//	index:
//	  path: ./quaerit_db
//	ai:
//	  embedding_host: http://localhost:11434/v1
//	  chat_host: http://localhost:11434/v1
//	  chat_model: qwen2.5:3b
//	  embedding_models:
//	    policy: embeddinggemma
//	    legal: embeddinggemma
//	    technical: embeddinggemma
//	default_domain: policy
//	descriptions:
//	  policy: HR and workplace policy documents
type fileConfig struct {
	Index struct {
		Path string `yaml:"path"`
	} `yaml:"index"`
	AI struct {
		EmbeddingHost   string            `yaml:"embedding_host"`
		ChatHost        string            `yaml:"chat_host"`
		ChatModel       string            `yaml:"chat_model"`
		EmbeddingModels map[string]string `yaml:"embedding_models"`
	} `yaml:"ai"`
	DefaultDomain string            `yaml:"default_domain"`
	Descriptions  map[string]string `yaml:"descriptions"`
}

func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var config fileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &config, nil
}

// aiConfig builds the provider configuration, starting from the package
// defaults so an empty file still works against a local server.
func (c *fileConfig) aiConfig() *ai.Config {
	opts := []ai.ConfigOption{}
	if c.AI.EmbeddingHost != "" {
		opts = append(opts, ai.WithEmbeddingHost(c.AI.EmbeddingHost))
	}
	if c.AI.ChatHost != "" {
		opts = append(opts, ai.WithChatHost(c.AI.ChatHost))
	}
	if c.AI.ChatModel != "" {
		opts = append(opts, ai.WithChatModel(c.AI.ChatModel))
	}
	if len(c.AI.EmbeddingModels) > 0 {
		models := make(map[core.Domain]string, len(c.AI.EmbeddingModels))
		for domain, model := range c.AI.EmbeddingModels {
			models[core.Domain(domain)] = model
		}
		opts = append(opts, ai.WithEmbeddingModels(models))
	}
	return ai.NewConfig(opts...)
}

func (c *fileConfig) engineOptions() []quaerit.EngineOption {
	opts := []quaerit.EngineOption{quaerit.WithAIConfig(c.aiConfig())}
	if c.DefaultDomain != "" {
		opts = append(opts, quaerit.WithDefaultDomain(core.Domain(c.DefaultDomain)))
	}
	if len(c.Descriptions) > 0 {
		routerOpts := make([]router.Option, 0, len(c.Descriptions))
		for domain, description := range c.Descriptions {
			routerOpts = append(routerOpts, router.WithDescription(core.Domain(domain), description))
		}
		opts = append(opts, quaerit.WithRouterOptions(routerOpts...))
	}
	return opts
}
