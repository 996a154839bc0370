// Package model defines data structures for the report assistant.
package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTitleLength is the maximum number of characters in a report title.
const MaxTitleLength = 100

// MaxDescriptionLength is the maximum number of characters in an extracted description.
const MaxDescriptionLength = 500

// Category is the department bucket a report is routed to.
type Category string

const (
	CategoryInfrastructure Category = "infrastructure"
	CategorySocial         Category = "social"
	CategoryAdministrative Category = "administrative"
	CategoryAid            Category = "aid"
)

// Categories lists every valid category in routing priority order.
var Categories = []Category{
	CategoryInfrastructure,
	CategorySocial,
	CategoryAdministrative,
	CategoryAid,
}

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryInfrastructure, CategorySocial, CategoryAdministrative, CategoryAid:
		return true
	}
	return false
}

// ParseCategory maps free text to a category, falling back to infrastructure.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.Valid() {
		return c
	}
	return CategoryInfrastructure
}

// Urgency is how quickly a report needs attention.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Valid reports whether u is one of the enumerated urgency levels.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

// ParseUrgency maps free text to an urgency, falling back to medium.
func ParseUrgency(s string) Urgency {
	u := Urgency(strings.ToLower(strings.TrimSpace(s)))
	if u.Valid() {
		return u
	}
	return UrgencyMedium
}

// ReportFields is the structured content of a citizen report.
type ReportFields struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Category    Category `json:"category"`
	Urgency     Urgency  `json:"urgency"`
}

// Normalize returns a copy with enum fields coerced into their closed sets
// and the title capped at MaxTitleLength characters.
func (f ReportFields) Normalize() ReportFields {
	f.Title = TruncateRunes(strings.TrimSpace(f.Title), MaxTitleLength, "")
	f.Description = strings.TrimSpace(f.Description)
	f.Location = strings.TrimSpace(f.Location)
	f.Category = ParseCategory(string(f.Category))
	f.Urgency = ParseUrgency(string(f.Urgency))
	return f
}

// Draft is an extracted report awaiting confirmation from its owner.
type Draft struct {
	ID        string       `json:"id"`
	OwnerID   string       `json:"ownerId"`
	Fields    ReportFields `json:"fields"`
	CreatedAt time.Time    `json:"createdAt"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// Expired reports whether the draft is past its expiry at now.
func (d *Draft) Expired(now time.Time) bool {
	return now.After(d.ExpiresAt)
}

// CreateReportRequest is handed to the report backend once a draft is confirmed.
type CreateReportRequest struct {
	OwnerID string       `json:"ownerId"`
	DraftID string       `json:"-"`
	Fields  ReportFields `json:"fields"`
}

// CreatedReport is the persisted report returned by the report backend.
type CreatedReport struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Category    Category  `json:"category"`
	Urgency     Urgency   `json:"urgency"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// ReportSummary is a short view of an existing report.
type ReportSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// AreaStats summarizes report counts for an administrative area.
type AreaStats struct {
	Area     string         `json:"area"`
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

// TruncateRunes cuts s to at most max characters, appending suffix when cut.
func TruncateRunes(s string, max int, suffix string) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	keep := max - utf8.RuneCountInString(suffix)
	if keep < 0 {
		keep = 0
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:keep]), " ") + suffix
}
