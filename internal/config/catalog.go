package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gosimple/slug"
)

const (
	// All is the filter code that matches every verdict or language.
	All = "all"

	// FallbackExtension is used for languages missing from the catalog.
	FallbackExtension = "txt"

	kUnknownVerdictDir = "unknown"
)

// Language maps a judge-reported language name to a filter code and a file extension.
type Language struct {
	// Name is the value the judge API reports in programmingLanguage (e.g. "GNU C++17").
	Name string `json:"name"`

	// Code is the value accepted by --language (e.g. "cpp17").
	Code string `json:"code"`

	// Extension has no leading dot (e.g. "cpp").
	Extension string `json:"extension"`
}

// Verdict maps a judge-reported verdict to a filter code.
type Verdict struct {
	// Name is the value the judge API reports in verdict (e.g. "WRONG_ANSWER").
	Name string `json:"name"`

	// Code is the value accepted by --verdict (e.g. "wa").
	Code string `json:"code"`
}

// Dir is the output subdirectory used for submissions with this verdict.
func (v Verdict) Dir() string { return VerdictDir(v.Name) }

// VerdictDir turns a raw verdict into a single directory name, e.g.
// "WRONG_ANSWER" gives "wrong_answer". Raw values come from the judge, so
// anything outside [a-z0-9_-] is slugified away; "../x" gives "x".
func VerdictDir(raw string) string {
	d := slug.Make(strings.TrimSpace(raw))
	if d == "" {
		return kUnknownVerdictDir
	}
	return d
}

// Catalog is the immutable language/verdict table loaded once at startup.
// Lookups by raw judge value are case-insensitive.
type Catalog struct {
	verdicts []Verdict

	languageByName map[string]Language
	verdictByName  map[string]Verdict
	languageCodes  map[string]struct{}
	verdictByCode  map[string]Verdict
}

// LoadCatalog reads a JSON catalog document from path.
func LoadCatalog(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("configuration file is missing: %s: %w", path, err)
		}
		return nil, fmt.Errorf("read configuration file %s: %w", path, err)
	}
	c, err := ParseCatalog(b)
	if err != nil {
		return nil, fmt.Errorf("parse configuration file %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes and validates a catalog document.
func ParseCatalog(b []byte) (*Catalog, error) {
	var raw struct {
		Languages *[]Language `json:"languages"`
		Verdicts  *[]Verdict  `json:"verdicts"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	if raw.Languages == nil {
		return nil, fmt.Errorf("configuration of programming languages is missing")
	}
	if raw.Verdicts == nil {
		return nil, fmt.Errorf("configuration of verdicts is missing")
	}
	return NewCatalog(*raw.Languages, *raw.Verdicts)
}

// NewCatalog builds a catalog from entries, rejecting empty names or codes,
// duplicate names, and the reserved code "all".
//
// Several judge names may share one code (every Python 3 flavour maps to
// "py3"), but a verdict code must map to exactly one verdict name so that it
// names exactly one directory.
func NewCatalog(languages []Language, verdicts []Verdict) (*Catalog, error) {
	c := &Catalog{
		languageByName: make(map[string]Language, len(languages)),
		verdictByName:  make(map[string]Verdict, len(verdicts)),
		languageCodes:  make(map[string]struct{}, len(languages)),
		verdictByCode:  make(map[string]Verdict, len(verdicts)),
	}

	for i, l := range languages {
		l.Name = strings.TrimSpace(l.Name)
		l.Code = strings.ToLower(strings.TrimSpace(l.Code))
		l.Extension = strings.TrimPrefix(strings.TrimSpace(l.Extension), ".")
		if l.Name == "" || l.Code == "" {
			return nil, fmt.Errorf("languages[%d]: name and code are required", i)
		}
		if l.Code == All {
			return nil, fmt.Errorf("languages[%d]: code %q is reserved", i, All)
		}
		if l.Extension == "" {
			l.Extension = FallbackExtension
		}
		key := strings.ToLower(l.Name)
		if _, dup := c.languageByName[key]; dup {
			return nil, fmt.Errorf("languages[%d]: duplicate name %q", i, l.Name)
		}
		c.languageByName[key] = l
		c.languageCodes[l.Code] = struct{}{}
	}

	for i, v := range verdicts {
		v.Name = strings.TrimSpace(v.Name)
		v.Code = strings.ToLower(strings.TrimSpace(v.Code))
		if v.Name == "" || v.Code == "" {
			return nil, fmt.Errorf("verdicts[%d]: name and code are required", i)
		}
		if v.Code == All {
			return nil, fmt.Errorf("verdicts[%d]: code %q is reserved", i, All)
		}
		key := strings.ToLower(v.Name)
		if _, dup := c.verdictByName[key]; dup {
			return nil, fmt.Errorf("verdicts[%d]: duplicate name %q", i, v.Name)
		}
		if prev, dup := c.verdictByCode[v.Code]; dup {
			return nil, fmt.Errorf("verdicts[%d]: code %q already used by %q", i, v.Code, prev.Name)
		}
		c.verdictByName[key] = v
		c.verdictByCode[v.Code] = v
		c.verdicts = append(c.verdicts, v)
	}

	return c, nil
}

// Verdicts returns the verdict entries in catalog order.
func (c *Catalog) Verdicts() []Verdict {
	return append([]Verdict(nil), c.verdicts...)
}

// LanguageCode returns the filter code for a judge-reported language.
func (c *Catalog) LanguageCode(raw string) (string, bool) {
	l, ok := c.languageByName[strings.ToLower(strings.TrimSpace(raw))]
	return l.Code, ok
}

// Extension returns the file extension for a judge-reported language,
// or FallbackExtension when the language is unknown.
func (c *Catalog) Extension(raw string) string {
	if l, ok := c.languageByName[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return l.Extension
	}
	return FallbackExtension
}

// VerdictCode returns the filter code for a judge-reported verdict.
func (c *Catalog) VerdictCode(raw string) (string, bool) {
	v, ok := c.verdictByName[strings.ToLower(strings.TrimSpace(raw))]
	return v.Code, ok
}

// VerdictByCode returns the verdict entry for a filter code.
func (c *Catalog) VerdictByCode(code string) (Verdict, bool) {
	v, ok := c.verdictByCode[strings.ToLower(strings.TrimSpace(code))]
	return v, ok
}

// HasLanguageCode reports whether code is a known language filter code.
func (c *Catalog) HasLanguageCode(code string) bool {
	_, ok := c.languageCodes[strings.ToLower(strings.TrimSpace(code))]
	return ok
}

// LanguageCodes returns the distinct language filter codes, sorted.
func (c *Catalog) LanguageCodes() []string {
	out := make([]string, 0, len(c.languageCodes))
	for code := range c.languageCodes {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// VerdictCodes returns the verdict filter codes, sorted.
func (c *Catalog) VerdictCodes() []string {
	out := make([]string, 0, len(c.verdictByCode))
	for code := range c.verdictByCode {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
