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

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/progdex/ai"
	"github.com/poiesic/progdex/ingest"
)

// FileConfig is the optional YAML configuration file. Every field has a
// matching CLI flag; flags that are explicitly set win over the file.
type FileConfig struct {
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Load      LoadConfig      `yaml:"load,omitempty"`
	Query     QueryConfig     `yaml:"query,omitempty"`
}

// DatabaseConfig locates the on-disk store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// EmbeddingConfig selects and configures the embedding backend.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "local" | "openai"
	Host      string `yaml:"host,omitempty"`
	Model     string `yaml:"model,omitempty"`
	APIKey    string `yaml:"api_key,omitempty"`
	BatchSize int    `yaml:"batch_size,omitempty"`
}

// LoadConfig tunes collection rebuilds.
type LoadConfig struct {
	BatchSize int `yaml:"batch_size,omitempty"`
	PoolSize  int `yaml:"pool_size,omitempty"`
}

// QueryConfig tunes searches.
type QueryConfig struct {
	TopK int `yaml:"top_k,omitempty"`
}

// LoadFileConfig reads a YAML config file and fills in defaults. An empty
// path returns a config with defaults only.
func LoadFileConfig(path string) (*FileConfig, error) {
	cfg := &FileConfig{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *FileConfig) applyDefaults() {
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "local"
	}
	defaults := ai.DefaultConfig()
	if c.Embedding.Host == "" {
		c.Embedding.Host = defaults.Host
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = defaults.Model
	}
	if c.Embedding.BatchSize == 0 {
		c.Embedding.BatchSize = defaults.BatchSize
	}
	if c.Load.BatchSize == 0 {
		c.Load.BatchSize = ingest.DefaultBatchSize
	}
	if c.Query.TopK == 0 {
		c.Query.TopK = 5
	}
}

// Validate checks the configuration for consistency.
func (c *FileConfig) Validate() error {
	switch c.Embedding.Provider {
	case "local", "openai":
	default:
		return fmt.Errorf("unknown embedding provider %q: must be local or openai", c.Embedding.Provider)
	}
	if c.Load.BatchSize <= 0 {
		return fmt.Errorf("load batch_size must be greater than 0")
	}
	if c.Load.PoolSize < 0 {
		return fmt.Errorf("load pool_size must not be negative")
	}
	if c.Query.TopK <= 0 {
		return fmt.Errorf("query top_k must be greater than 0")
	}
	return nil
}
