package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/devnovate-blog-api/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	tagRegex  = regexp.MustCompile(`^[a-z0-9][a-z0-9+#.-]*$`)
	slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

const (
	MaxTitleLength = 200
	MaxTagLength   = 32
	MaxTags        = 10
	MaxBioLength   = 500
	MaxNameLength  = 100
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// validate is the shared validator instance for struct checks outside gin
var validate = New()

// New returns a validator with the custom rules registered
func New() *validator.Validate {
	v := validator.New()
	_ = Register(v)
	return v
}

// Register adds the custom rules to v. Gin's binding engine is passed here
// at router construction.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		return err
	}
	if err := v.RegisterValidation("tag", validTag); err != nil {
		return err
	}
	if err := v.RegisterValidation("slug", validSlug); err != nil {
		return err
	}
	return v.RegisterValidation("maxwords", maxWords)
}

// notBlank rejects strings that are empty after trimming whitespace
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validTag(fl validator.FieldLevel) bool {
	return IsValidTag(fl.Field().String())
}

func validSlug(fl validator.FieldLevel) bool {
	return slugRegex.MatchString(fl.Field().String())
}

func maxWords(fl validator.FieldLevel) bool {
	return len(strings.Fields(fl.Field().String())) <= models.MaxCommentWords
}

// Struct validates s with the shared instance and flattens the result
func Struct(s interface{}) []ValidationError {
	return Translate(validate.Struct(s))
}

// Translate converts validator errors into field errors. Other errors
// (for example malformed JSON) become a single "body" error.
func Translate(err error) []ValidationError {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationError{{Field: "body", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{
			Field:   toSnake(fe.Field()),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "tag":
		return "tags must be lowercase letters, digits or -+#."
	case "slug":
		return "must be kebab-case (lowercase letters, numbers, hyphens)"
	case "maxwords":
		return fmt.Sprintf("exceeds maximum of %d words", models.MaxCommentWords)
	case "oneof":
		return "must be one of: " + fe.Param()
	case "uuid":
		return "invalid UUID format"
	case "url":
		return "must be a URL"
	default:
		return "is invalid"
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ValidateArticle checks an authored title/content/tags triple
func ValidateArticle(title, content string, tags []string) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(title) == "" {
		errs = append(errs, ValidationError{Field: "title", Message: "title is required"})
	} else if utf8.RuneCountInString(title) > MaxTitleLength {
		errs = append(errs, ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("title exceeds maximum of %d characters", MaxTitleLength),
		})
	}

	if strings.TrimSpace(content) == "" {
		errs = append(errs, ValidationError{Field: "content", Message: "content is required"})
	}

	if len(tags) > MaxTags {
		errs = append(errs, ValidationError{
			Field:   "tags",
			Message: fmt.Sprintf("at most %d tags allowed", MaxTags),
		})
	}
	for _, t := range tags {
		if !IsValidTag(t) {
			errs = append(errs, ValidationError{Field: "tags", Message: "invalid tag", Value: t})
			break
		}
	}

	return errs
}

// ValidateComment checks a comment body
func ValidateComment(content string) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(content) == "" {
		errs = append(errs, ValidationError{Field: "content", Message: "content is required"})
	} else {
		// Check word count (max 500 words)
		wordCount := len(strings.Fields(content))
		if wordCount > models.MaxCommentWords {
			errs = append(errs, ValidationError{
				Field:   "content",
				Message: fmt.Sprintf("content exceeds maximum of %d words (has %d)", models.MaxCommentWords, wordCount),
			})
		}
	}

	return errs
}

// NormalizeTags trims, lowercases and de-duplicates tags, preserving
// first-seen order. Empty entries are dropped.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// IsValidTag checks a normalized tag
func IsValidTag(s string) bool {
	return len(s) <= MaxTagLength && tagRegex.MatchString(s)
}

// IsValidSlug checks kebab-case
func IsValidSlug(s string) bool {
	return slugRegex.MatchString(s)
}

// IsValidUUID checks if a string is a UUID in canonical 8-4-4-4-12 form
func IsValidUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
