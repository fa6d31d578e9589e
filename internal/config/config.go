// Package config loads service configuration from an optional YAML
// file and environment variables. Environment wins over the file.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	AWS       AWSConfig       `koanf:"aws"`
	Model     ModelConfig     `koanf:"model"`
	Retrieval RetrievalConfig `koanf:"retrieval"`
	Guardrail GuardrailConfig `koanf:"guardrail"`
	Storage   StorageConfig   `koanf:"storage"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type AWSConfig struct {
	Region string `koanf:"region"`
}

type ModelConfig struct {
	ID string `koanf:"id"`
}

type RetrievalConfig struct {
	KnowledgeBaseID string `koanf:"knowledge_base_id"`
	NumResults      int    `koanf:"num_results"`
}

type GuardrailConfig struct {
	ID      string `koanf:"id"`
	Version string `koanf:"version"`
}

// Enabled reports whether guardrail checks should run. Both the
// identifier and the version must be set.
func (g GuardrailConfig) Enabled() bool {
	return g.ID != "" && g.Version != ""
}

type StorageConfig struct {
	// Driver selects the conversation store: sqlite, dynamodb, or memory.
	Driver string `koanf:"driver"`
	// Path is the sqlite database file.
	Path string `koanf:"path"`
	// Table is the dynamodb table name.
	Table string `koanf:"table"`
}

// bareEnv maps the flat variable names of the original deployment onto
// dotted config keys. These are honored without the KBCHAT_ prefix.
var bareEnv = map[string]string{
	"KNOWLEDGE_BASE_ID": "retrieval.knowledge_base_id",
	"BEDROCK_MODEL_ID":  "model.id",
	"GUARDRAIL_ID":      "guardrail.id",
	"GUARDRAIL_VERSION": "guardrail.version",
	"AWS_REGION":        "aws.region",
}

// Load reads configuration from the YAML file at path, if one exists,
// then layers environment variables on top. Variables prefixed KBCHAT_
// map onto dotted keys with "__" as the separator, so
// KBCHAT_SERVER__PORT sets server.port.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	if err := k.Load(env.Provider("KBCHAT_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "KBCHAT_")), "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	for name, key := range bareEnv {
		if v := os.Getenv(name); v != "" {
			k.Set(key, v)
		}
	}

	// Default values
	if !k.Exists("server.port") {
		k.Set("server.port", 8080)
	}
	if !k.Exists("aws.region") {
		k.Set("aws.region", "us-east-2")
	}
	if !k.Exists("model.id") {
		k.Set("model.id", "us.meta.llama3-1-70b-instruct-v1:0")
	}
	if !k.Exists("retrieval.num_results") {
		k.Set("retrieval.num_results", 4)
	}
	if !k.Exists("storage.driver") {
		k.Set("storage.driver", "sqlite")
	}
	if !k.Exists("storage.path") {
		k.Set("storage.path", "./data/kbchat.db")
	}
	if !k.Exists("storage.table") {
		k.Set("storage.table", "ConversationHistory")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
