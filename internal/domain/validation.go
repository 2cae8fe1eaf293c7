package domain

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	TitleMinLength   = 5
	TitleMaxLength   = 200
	ContentMinLength = 50
)

var imageExtRegex = regexp.MustCompile(`(?i)\.(jpe?g|gif|png|webp|svg)$`)

// validate is safe for concurrent use once custom rules are registered.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("imageurl", imageURL); err != nil {
		panic(err)
	}
	return v
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// imageURL accepts absolute http(s) URLs whose path ends in an image extension.
func imageURL(fl validator.FieldLevel) bool {
	return IsImageURL(fl.Field().String())
}

// IsImageURL reports whether raw is an absolute http(s) URL pointing at an image file.
func IsImageURL(raw string) bool {
	u, err := url.ParseRequestURI(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return false
	}
	return imageExtRegex.MatchString(u.Path)
}

// fieldRule binds a field name to its validator tag and the message shown
// for a failing tag.
type fieldRule struct {
	field   string
	tag     string
	message func(failedTag string) string
}

var (
	titleRule = fieldRule{
		field: "title",
		tag:   fmt.Sprintf("required,notblank,min=%d,max=%d", TitleMinLength, TitleMaxLength),
		message: func(tag string) string {
			if tag == "min" || tag == "max" {
				return fmt.Sprintf("title must be between %d and %d characters", TitleMinLength, TitleMaxLength)
			}
			return "title is required"
		},
	}
	authorRule = fieldRule{
		field:   "author",
		tag:     "required,notblank",
		message: func(string) string { return "author is required" },
	}
	categoryRule = fieldRule{
		field:   "category",
		tag:     "required",
		message: func(string) string { return "category is required" },
	}
	contentRule = fieldRule{
		field: "content",
		tag:   fmt.Sprintf("required,notblank,min=%d", ContentMinLength),
		message: func(tag string) string {
			if tag == "min" {
				return fmt.Sprintf("content must be at least %d characters", ContentMinLength)
			}
			return "content is required"
		},
	}
	imageRule = fieldRule{
		field: "image",
		tag:   "url,imageurl",
		message: func(string) string {
			return "image must be a valid URL ending in jpeg, jpg, gif, png, webp or svg"
		},
	}
	tagsRule = fieldRule{
		field:   "tags",
		tag:     fmt.Sprintf("max=%d", MaxTags),
		message: func(string) string { return fmt.Sprintf("no more than %d tags are allowed", MaxTags) },
	}
	dateRule = fieldRule{
		field:   "date",
		tag:     "datetime=" + DateLayout,
		message: func(string) string { return "date must use the YYYY-MM-DD format" },
	}
)

// check is one (rule, value) pair scheduled for validation.
type check struct {
	rule  fieldRule
	value interface{}
}

// run evaluates every check and collects all violations (no fail-fast).
func run(checks []check) error {
	var violations []string
	for _, c := range checks {
		err := validate.Var(c.value, c.rule.tag)
		if err == nil {
			continue
		}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			violations = append(violations, c.rule.message(fieldErrs[0].Tag()))
			continue
		}
		violations = append(violations, fmt.Sprintf("%s: %v", c.rule.field, err))
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// ValidateInput applies the full rule set to a new article.
func ValidateInput(in ArticleInput) error {
	checks := []check{
		{titleRule, in.Title},
		{authorRule, in.Author},
		{categoryRule, in.Category},
		{contentRule, in.Content},
	}
	if in.Image != "" {
		checks = append(checks, check{imageRule, in.Image})
	}
	if in.Tags != nil {
		checks = append(checks, check{tagsRule, in.Tags})
	}
	if in.Date != "" {
		checks = append(checks, check{dateRule, in.Date})
	}
	return run(checks)
}

// ValidatePatch checks only the fields present in the patch.
// An empty image clears the image and is always accepted.
func ValidatePatch(p ArticlePatch) error {
	var checks []check
	if p.Title != nil {
		checks = append(checks, check{titleRule, *p.Title})
	}
	if p.Author != nil {
		checks = append(checks, check{authorRule, *p.Author})
	}
	if p.Category != nil {
		checks = append(checks, check{categoryRule, *p.Category})
	}
	if p.Content != nil {
		checks = append(checks, check{contentRule, *p.Content})
	}
	if p.Image != nil && *p.Image != "" {
		checks = append(checks, check{imageRule, *p.Image})
	}
	if p.Tags != nil {
		checks = append(checks, check{tagsRule, *p.Tags})
	}
	if p.Date != nil {
		checks = append(checks, check{dateRule, *p.Date})
	}
	return run(checks)
}

// ValidateArticle applies the full rule set to a stored article (import path).
func ValidateArticle(a *Article) error {
	if a == nil {
		return &ValidationError{Violations: []string{"article is empty"}}
	}
	return ValidateInput(ArticleInput{
		Title:    a.Title,
		Author:   a.Author,
		Category: a.Category,
		Content:  a.Content,
		Image:    a.Image,
		Tags:     a.Tags,
		Date:     a.Date,
	})
}
