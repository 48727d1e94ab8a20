package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the optional configuration file schema.
// Durations are strings so both "15s" and bare seconds work, matching
// the env convention.
type FileConfig struct {
	URL       string   `yaml:"url" json:"url"`
	Selectors []string `yaml:"selectors" json:"selectors"`
	MaxItems  int      `yaml:"maxItems" json:"maxItems"`

	Fetch struct {
		UserAgent     string `yaml:"userAgent" json:"userAgent"`
		Timeout       string `yaml:"timeout" json:"timeout"`
		Retries       int    `yaml:"retries" json:"retries"`
		BackoffFactor string `yaml:"backoffFactor" json:"backoffFactor"`
		MaxBackoff    string `yaml:"maxBackoff" json:"maxBackoff"`
	} `yaml:"fetch" json:"fetch"`

	SMTP struct {
		Host string `yaml:"host" json:"host"`
		Port int    `yaml:"port" json:"port"`
		User string `yaml:"user" json:"user"`
		Pass string `yaml:"pass" json:"pass"`
	} `yaml:"smtp" json:"smtp"`

	Mail struct {
		From          string   `yaml:"from" json:"from"`
		To            []string `yaml:"to" json:"to"`
		SubjectPrefix string   `yaml:"subjectPrefix" json:"subjectPrefix"`
		APIKey        string   `yaml:"apiKey" json:"apiKey"`
		APIURL        string   `yaml:"apiURL" json:"apiURL"`
	} `yaml:"mail" json:"mail"`

	ArtifactDir string `yaml:"artifactDir" json:"artifactDir"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any
// fields that are currently unset. Flags and env should already have
// been applied; the file only supplies what they left open.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}

	if cfg.URL == "" && fc.URL != "" { cfg.URL = fc.URL }
	if len(cfg.Selectors) == 0 && len(fc.Selectors) > 0 { cfg.Selectors = append([]string{}, fc.Selectors...) }
	if cfg.MaxItems == 0 && fc.MaxItems > 0 { cfg.MaxItems = fc.MaxItems }

	if cfg.UserAgent == "" && fc.Fetch.UserAgent != "" { cfg.UserAgent = fc.Fetch.UserAgent }
	if cfg.Timeout == 0 { cfg.Timeout = ParseDurationValue(fc.Fetch.Timeout) }
	if cfg.Retries == 0 && fc.Fetch.Retries > 0 { cfg.Retries = fc.Fetch.Retries }
	if cfg.BackoffFactor == 0 { cfg.BackoffFactor = ParseDurationValue(fc.Fetch.BackoffFactor) }
	if cfg.MaxBackoff == 0 { cfg.MaxBackoff = ParseDurationValue(fc.Fetch.MaxBackoff) }

	if cfg.SMTPHost == "" && fc.SMTP.Host != "" { cfg.SMTPHost = fc.SMTP.Host }
	if cfg.SMTPPort == 0 && fc.SMTP.Port > 0 { cfg.SMTPPort = fc.SMTP.Port }
	if cfg.SMTPUser == "" && fc.SMTP.User != "" { cfg.SMTPUser = fc.SMTP.User }
	if cfg.SMTPPass == "" && fc.SMTP.Pass != "" { cfg.SMTPPass = fc.SMTP.Pass }

	if cfg.From == "" && fc.Mail.From != "" { cfg.From = fc.Mail.From }
	if len(cfg.To) == 0 && len(fc.Mail.To) > 0 { cfg.To = append([]string{}, fc.Mail.To...) }
	if cfg.SubjectPrefix == "" && fc.Mail.SubjectPrefix != "" { cfg.SubjectPrefix = fc.Mail.SubjectPrefix }
	if cfg.MailAPIKey == "" && fc.Mail.APIKey != "" { cfg.MailAPIKey = fc.Mail.APIKey }
	if cfg.MailAPIURL == "" && fc.Mail.APIURL != "" { cfg.MailAPIURL = fc.Mail.APIURL }

	if cfg.ArtifactDir == "" && fc.ArtifactDir != "" { cfg.ArtifactDir = fc.ArtifactDir }
}
