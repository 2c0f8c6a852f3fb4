package converge

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Catalog holds the static tables the flow renders from: the fixed option
// set per dimension, human-readable step labels, and the per-code error
// message table used by the classifier.
type Catalog struct {
	Options         map[string][]DimensionOption `yaml:"options"`
	StepLabels      map[string]string            `yaml:"step_labels"`
	ErrorMessages   map[string]string            `yaml:"error_messages"`
	FallbackMessage string                       `yaml:"fallback_message"`
}

// ParseCatalog parses YAML (or JSON, which yaml handles) into a Catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// DefaultCatalog returns the embedded catalog. The embedded data is
// validated by tests, so a parse failure here is a build defect.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog invalid: %v", err))
	}
	return c
}

// Validate checks the catalog covers every enumeration member, so no step,
// dimension or error code can silently fall through to an empty table entry.
func (c *Catalog) Validate() error {
	if c == nil {
		return fmt.Errorf("catalog is nil")
	}
	for _, dim := range Dimensions {
		opts := c.Options[string(dim)]
		if len(opts) == 0 {
			return fmt.Errorf("catalog missing options for dimension %q", dim)
		}
		seen := make(map[string]bool, len(opts))
		for _, opt := range opts {
			id := strings.TrimSpace(opt.ID)
			if id == "" {
				return fmt.Errorf("catalog dimension %q has option with empty id", dim)
			}
			if seen[id] {
				return fmt.Errorf("catalog dimension %q has duplicate option %q", dim, id)
			}
			seen[id] = true
		}
	}
	for _, step := range Steps {
		if strings.TrimSpace(c.StepLabels[string(step)]) == "" {
			return fmt.Errorf("catalog missing label for step %q", step)
		}
	}
	codes := []string{
		ErrCodeInsufficientBalance,
		ErrCodeActiveSessionExists,
		ErrCodeSessionExpired,
		ErrCodeSessionNotFound,
		ErrCodeRegenerationLimit,
		ErrCodeGenerationFailed,
		ErrCodeInvalidDimension,
		ErrCodeNoActiveSession,
		ErrCodeInvalidStep,
	}
	for _, code := range codes {
		if strings.TrimSpace(c.ErrorMessages[code]) == "" {
			return fmt.Errorf("catalog missing error message for code %q", code)
		}
	}
	if strings.TrimSpace(c.FallbackMessage) == "" {
		return fmt.Errorf("catalog missing fallback message")
	}
	return nil
}

// OptionsFor returns the static option set for a dimension.
func (c *Catalog) OptionsFor(dim Dimension) []DimensionOption {
	if c == nil {
		return nil
	}
	return copyOptions(c.Options[string(dim)])
}

// StepLabel returns the display label for a step.
func (c *Catalog) StepLabel(step Step) string {
	if c == nil {
		return ""
	}
	return c.StepLabels[string(step)]
}

// MessageFor returns the user-facing message for an error code, falling back
// to the generic message for unknown codes.
func (c *Catalog) MessageFor(code string) string {
	if c == nil {
		return ""
	}
	if msg, ok := c.ErrorMessages[code]; ok && strings.TrimSpace(msg) != "" {
		return msg
	}
	return c.FallbackMessage
}
