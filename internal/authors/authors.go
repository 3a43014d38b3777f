// Package authors loads the list of tracked authors from YAML.
package authors

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Status values accepted in the authors file. An empty status is treated as
// inactive.
const (
	StatusActive   = "active"
	StatusPaused   = "paused"
	StatusInactive = "inactive"
)

// Author is one tracked author.
type Author struct {
	Name     string `yaml:"name" validate:"required"`
	SourceID string `yaml:"source_id" validate:"required"`
	Status   string `yaml:"status" validate:"omitempty,oneof=active paused inactive"`

	// LegacyID is the older spelling of source_id.
	LegacyID string `yaml:"book_notification_id" validate:"-"`
}

// Active reports whether the author should be fetched.
func (a Author) Active() bool {
	return a.Status == StatusActive
}

type file struct {
	Authors []Author `yaml:"authors"`
}

// ValidationError lists every invalid entry in the authors file.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid authors file: " + strings.Join(e.Problems, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Load reads and validates the authors file at path.
func Load(path string) ([]Author, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read authors file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates an authors document. Unknown keys are
// rejected.
func Parse(data []byte) ([]Author, error) {
	var doc file
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse authors file: %w", err)
	}

	var problems []string
	for i := range doc.Authors {
		a := &doc.Authors[i]
		a.Name = strings.TrimSpace(a.Name)
		a.SourceID = strings.TrimSpace(a.SourceID)
		a.LegacyID = strings.TrimSpace(a.LegacyID)
		if a.SourceID == "" {
			a.SourceID = a.LegacyID
		}
		a.Status = strings.ToLower(strings.TrimSpace(a.Status))
		if err := validate.Struct(a); err != nil {
			problems = append(problems, describe(i, a.Name, err)...)
		}
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return doc.Authors, nil
}

// Active filters authors down to the ones with status active, preserving
// order.
func Active(all []Author) []Author {
	out := make([]Author, 0, len(all))
	for _, a := range all {
		if a.Active() {
			out = append(out, a)
		}
	}
	return out
}

func describe(index int, name string, err error) []string {
	label := fmt.Sprintf("authors[%d]", index)
	if name != "" {
		label = fmt.Sprintf("%s (%s)", label, name)
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{fmt.Sprintf("%s: %v", label, err)}
	}
	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, fmt.Sprintf("%s: %s %s", label, fe.Field(), friendlyMessage(fe)))
	}
	return out
}

func friendlyMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
