// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Publication categories. The category is an immutable discriminant set at
// creation time; it decides which extra field is required beyond the title.
const (
	CategoryArticle        = "ARTICLE"
	CategoryNewsletter     = "NEWSLETTER"
	CategoryOfficialLetter = "OFFICIAL_LETTER"
	CategoryPodcast        = "PODCAST"
)

// ValidCategories contains all valid publication categories.
var ValidCategories = []string{
	CategoryArticle,
	CategoryNewsletter,
	CategoryOfficialLetter,
	CategoryPodcast,
}

// IsValidCategory reports whether category is one of the known values.
func IsValidCategory(category string) bool {
	for _, c := range ValidCategories {
		if c == category {
			return true
		}
	}
	return false
}

// PublicationFields carries the category-sensitive fields of a publication
// for validation. Only the field named by the category's rule is checked;
// the others may be blank regardless of category.
type PublicationFields struct {
	Content  string
	FileURL  string
	AudioURL string
}

// categoryRule describes the single extra field a category requires.
type categoryRule struct {
	field   string
	message string
	value   func(PublicationFields) string
}

// categoryRules maps each category to its requiredness rule. Categories
// without an entry (none today) require only a title.
var categoryRules = map[string]categoryRule{
	CategoryArticle: {
		field:   "content",
		message: "Articles require content",
		value:   func(f PublicationFields) string { return f.Content },
	},
	CategoryNewsletter: {
		field:   "content",
		message: "Newsletters require content",
		value:   func(f PublicationFields) string { return f.Content },
	},
	CategoryOfficialLetter: {
		field:   "fileUrl",
		message: "Official letters require a file",
		value:   func(f PublicationFields) string { return f.FileURL },
	},
	CategoryPodcast: {
		field:   "audioUrl",
		message: "Podcasts require an audio file",
		value:   func(f PublicationFields) string { return f.AudioURL },
	},
}

// ValidateCategoryFields checks the category-specific requiredness rule
// against the supplied fields. It returns the offending field name and a
// user-facing message when the rule is violated, or ok=true when satisfied.
// The category must already be validated with IsValidCategory.
func ValidateCategoryFields(category string, fields PublicationFields) (field, message string, ok bool) {
	rule, exists := categoryRules[category]
	if !exists {
		return "", "", true
	}
	if rule.value(fields) == "" {
		return rule.field, rule.message, false
	}
	return "", "", true
}

// RequiresMarkdown reports whether a category's content field holds markdown
// that should be rendered to HTML on the public detail response.
func RequiresMarkdown(category string) bool {
	return category == CategoryArticle || category == CategoryNewsletter
}
