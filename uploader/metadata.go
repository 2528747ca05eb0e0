package uploader

import (
	"strings"

	"shortsbot/config"
)

// Metadata describes an upload
type Metadata struct {
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Privacy     string
}

// NewMetadata fills defaults around title
func NewMetadata(title string) Metadata {
	return Metadata{Title: title}.WithDefaults()
}

// WithDefaults fills empty fields and caps the title at 100 characters
func (m Metadata) WithDefaults() Metadata {
	m.Title = strings.TrimSpace(m.Title)
	if r := []rune(m.Title); len(r) > config.MaxTitleLength {
		m.Title = string(r[:config.MaxTitleLength-3]) + "..."
	}
	if strings.TrimSpace(m.Description) == "" {
		m.Description = config.DefaultDescription
	}
	if len(m.Tags) == 0 {
		m.Tags = append([]string(nil), config.DefaultUploadTags...)
	}
	if m.CategoryID == "" {
		m.CategoryID = config.DefaultCategoryID
	}
	if m.Privacy == "" {
		m.Privacy = config.DefaultPrivacyStatus
	}
	return m
}
