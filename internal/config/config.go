package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL   = "https://codeforces.com"
	DefaultPageSize  = 1000
	DefaultRetries   = 3
	DefaultUserAgent = "cf-submissions/1.0"
)

// Settings is the optional user-level configuration. Every field has a
// default, so a missing settings file is not an error.
type Settings struct {
	// BaseURL is the judge origin used for both the API and submission pages.
	BaseURL string `yaml:"base_url"`

	// PageSize is the number of submissions requested per user.status call.
	PageSize int `yaml:"page_size"`

	// Retries is how many times a failed request is retried after the first attempt.
	Retries int `yaml:"retries"`

	UserAgent string `yaml:"user_agent"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		BaseURL:   DefaultBaseURL,
		PageSize:  DefaultPageSize,
		Retries:   DefaultRetries,
		UserAgent: DefaultUserAgent,
	}
}

// Validate reports settings that would make the pipeline misbehave.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.BaseURL) == "" {
		return fmt.Errorf("base_url is required")
	}
	if s.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", s.PageSize)
	}
	if s.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", s.Retries)
	}
	return nil
}

// FileStore is a YAML file-backed settings store
// (e.g. ~/.config/cf-submissions/config.yaml).
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the settings file, filling unset fields with defaults.
// A missing file yields Defaults().
func (s *FileStore) Load(ctx context.Context) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}

	out := Defaults()
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings %s: %w", s.Path, err)
	}

	// Pointers tell an explicit zero (retries: 0) apart from an absent key.
	var fromFile struct {
		BaseURL   string `yaml:"base_url"`
		PageSize  *int   `yaml:"page_size"`
		Retries   *int   `yaml:"retries"`
		UserAgent string `yaml:"user_agent"`
	}
	if err := yaml.Unmarshal(b, &fromFile); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", s.Path, err)
	}

	if v := strings.TrimSpace(fromFile.BaseURL); v != "" {
		out.BaseURL = v
	}
	if fromFile.PageSize != nil {
		out.PageSize = *fromFile.PageSize
	}
	if fromFile.Retries != nil {
		out.Retries = *fromFile.Retries
	}
	if v := strings.TrimSpace(fromFile.UserAgent); v != "" {
		out.UserAgent = v
	}

	if err := out.Validate(); err != nil {
		return Settings{}, fmt.Errorf("settings %s: %w", s.Path, err)
	}
	return out, nil
}
