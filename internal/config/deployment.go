package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Deployment modes.
const (
	ModeCloud = "cloud"
	ModeEdge  = "edge"
)

const (
	defaultTranslationEndpoint = "https://api.translation.com/v1"
	defaultSpeechEndpoint      = "https://api.speech-to-text.com/v1"
	defaultTranslationModels   = "models/translation"
	defaultSpeechModels        = "models/speech-to-text"
)

// LanguagePair is a configured source/target pair.
type LanguagePair struct {
	Source string
	Target string
}

// DeploymentConfig selects and configures the translation and speech
// backends.
type DeploymentConfig struct {
	Mode        string
	Translation TranslationBackend
	Speech      SpeechBackend
}

type TranslationBackend struct {
	Provider       string // cloud: "openai" or "anthropic"
	APIKey         string
	Endpoint       string
	ModelPath      string
	Model          string
	ModelTemplate  string
	SupportedPairs []LanguagePair // empty means any pair
}

type SpeechBackend struct {
	Provider  string
	APIKey    string
	Endpoint  string
	ModelPath string
	Model     string
}

func (d DeploymentConfig) IsEdge() bool { return d.Mode == ModeEdge }

// ReportedEndpoint is the endpoint shown in logs and status output. An unset
// endpoint reports the default hosted service.
func (t TranslationBackend) ReportedEndpoint() string {
	return firstNonEmpty(t.Endpoint, defaultTranslationEndpoint)
}

func (s SpeechBackend) ReportedEndpoint() string {
	return firstNonEmpty(s.Endpoint, defaultSpeechEndpoint)
}

// LoadError reports a deployment file that could not be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load config %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

type fileConfig struct {
	DeploymentMode  string `json:"deployment_mode" toml:"deployment_mode" yaml:"deployment_mode"`
	ModelPath       string `json:"model_path" toml:"model_path" yaml:"model_path"`
	APIKey          string `json:"api_key" toml:"api_key" yaml:"api_key"`
	Endpoint        string `json:"endpoint" toml:"endpoint" yaml:"endpoint"`
	ServiceProvider string `json:"service_provider" toml:"service_provider" yaml:"service_provider"`

	Translation struct {
		SupportedLanguagePairs []interface{} `json:"supported_language_pairs" toml:"supported_language_pairs" yaml:"supported_language_pairs"`
		ModelTemplate          string        `json:"model_template" toml:"model_template" yaml:"model_template"`
		Model                  string        `json:"model" toml:"model" yaml:"model"`
	} `json:"translation" toml:"translation" yaml:"translation"`

	Speech struct {
		ModelPath       string `json:"model_path" toml:"model_path" yaml:"model_path"`
		APIKey          string `json:"api_key" toml:"api_key" yaml:"api_key"`
		Endpoint        string `json:"endpoint" toml:"endpoint" yaml:"endpoint"`
		ServiceProvider string `json:"service_provider" toml:"service_provider" yaml:"service_provider"`
		Model           string `json:"model" toml:"model" yaml:"model"`
	} `json:"speech" toml:"speech" yaml:"speech"`
}

// LoadDeployment reads the deployment file at path. JSON is the default
// format; .toml and .yaml/.yml files are decoded accordingly. On any failure
// it returns the cloud defaults together with a *LoadError.
func LoadDeployment(path string) (DeploymentConfig, error) {
	fc, err := readFile(path)
	if err != nil {
		return resolve(&fileConfig{}), &LoadError{Path: path, Err: err}
	}

	pairs, err := parsePairs(fc.Translation.SupportedLanguagePairs)
	if err != nil {
		return resolve(&fileConfig{}), &LoadError{Path: path, Err: err}
	}

	d := resolve(fc)
	d.Translation.SupportedPairs = pairs
	return d, nil
}

func readFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &fc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return nil, err
	}
	return &fc, nil
}

// resolve fills every field the file leaves empty from the environment or
// the built-in defaults.
func resolve(fc *fileConfig) DeploymentConfig {
	mode := strings.ToLower(strings.TrimSpace(fc.DeploymentMode))
	if mode != ModeEdge {
		mode = ModeCloud
	}

	// An empty endpoint leaves the SDK default (cloud) or the local server
	// (edge) in place. Endpoint variables and the top-level speech fallback
	// only apply to hosted backends.
	translationEndpoint, speechEndpoint := "", ""
	if mode == ModeCloud {
		translationEndpoint = os.Getenv("TRANSLATION_ENDPOINT")
		speechEndpoint = firstNonEmpty(fc.Endpoint, os.Getenv("SPEECH_TO_TEXT_ENDPOINT"))
	}

	d := DeploymentConfig{
		Mode: mode,
		Translation: TranslationBackend{
			Provider:      firstNonEmpty(fc.ServiceProvider, getEnv("TRANSLATION_PROVIDER", "openai")),
			APIKey:        firstNonEmpty(fc.APIKey, getEnv("TRANSLATION_API_KEY", "demo-key")),
			Endpoint:      firstNonEmpty(fc.Endpoint, translationEndpoint),
			ModelPath:     firstNonEmpty(fc.ModelPath, defaultTranslationModels),
			Model:         fc.Translation.Model,
			ModelTemplate: fc.Translation.ModelTemplate,
		},
		Speech: SpeechBackend{
			Provider:  firstNonEmpty(fc.Speech.ServiceProvider, fc.ServiceProvider, getEnv("SPEECH_TO_TEXT_PROVIDER", "generic")),
			APIKey:    firstNonEmpty(fc.Speech.APIKey, fc.APIKey, getEnv("SPEECH_TO_TEXT_API_KEY", "demo-key")),
			Endpoint:  firstNonEmpty(fc.Speech.Endpoint, speechEndpoint),
			ModelPath: firstNonEmpty(fc.Speech.ModelPath, fc.ModelPath, defaultSpeechModels),
			Model:     fc.Speech.Model,
		},
	}
	return d
}

// parsePairs accepts ["en","fr"] arrays and "en-fr" strings.
func parsePairs(raw []interface{}) ([]LanguagePair, error) {
	var pairs []LanguagePair
	for i, item := range raw {
		var src, tgt string
		switch v := item.(type) {
		case string:
			parts := strings.Split(v, "-")
			if len(parts) != 2 {
				return nil, fmt.Errorf("supported_language_pairs[%d]: expected \"src-tgt\", got %q", i, v)
			}
			src, tgt = parts[0], parts[1]
		case []interface{}:
			if len(v) != 2 {
				return nil, fmt.Errorf("supported_language_pairs[%d]: expected two languages, got %d", i, len(v))
			}
			a, ok1 := v[0].(string)
			b, ok2 := v[1].(string)
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("supported_language_pairs[%d]: languages must be strings", i)
			}
			src, tgt = a, b
		default:
			return nil, fmt.Errorf("supported_language_pairs[%d]: unsupported value %v", i, item)
		}

		src = strings.TrimSpace(src)
		tgt = strings.TrimSpace(tgt)
		if src == "" || tgt == "" {
			return nil, fmt.Errorf("supported_language_pairs[%d]: empty language code", i)
		}
		pairs = append(pairs, LanguagePair{Source: src, Target: tgt})
	}
	return pairs, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
