package domain

import (
	"strings"
	"time"

	apperrors "github.com/shopifake/catalog/pkg/errors"
)

// Status is the publish lifecycle state of a product.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusScheduled Status = "SCHEDULED"
)

// ParseStatus parses a status string case-insensitively into the enum.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusDraft:
		return StatusDraft, nil
	case StatusPublished:
		return StatusPublished, nil
	case StatusScheduled:
		return StatusScheduled, nil
	default:
		return "", apperrors.Validationf("invalid product status: %s", s)
	}
}

// FilterValue is a concrete value bound to a product for a filter definition.
// It is owned by its product and replaced wholesale on update. The definition
// fields (key, type, display name, unit) are denormalized into responses.
type FilterValue struct {
	FilterID     string     `json:"filterId"`
	Key          string     `json:"key,omitempty"`
	Type         FilterType `json:"type,omitempty"`
	DisplayName  *string    `json:"displayName,omitempty"`
	Unit         *string    `json:"unit,omitempty"`
	TextValue    *string    `json:"textValue,omitempty"`
	NumericValue *float64   `json:"numericValue,omitempty"`
	MinValue     *float64   `json:"minValue,omitempty"`
	MaxValue     *float64   `json:"maxValue,omitempty"`
	StartAt      *time.Time `json:"startAt,omitempty"`
	EndAt        *time.Time `json:"endAt,omitempty"`
}

// Product is the catalog aggregate: identity, imagery, category links, and
// filter-value assignments, scoped to a site. SKU is stored uppercase and is
// unique across all sites.
type Product struct {
	ID                 string        `json:"id"`
	SiteID             string        `json:"siteId"`
	Name               string        `json:"name"`
	Description        string        `json:"description"`
	Images             []string      `json:"images"`
	Categories         []Category    `json:"categories"`
	SKU                string        `json:"sku"`
	Status             Status        `json:"status"`
	ScheduledPublishAt *time.Time    `json:"scheduledPublishAt,omitempty"`
	PublishedAt        *time.Time    `json:"publishedAt,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
	Filters            []FilterValue `json:"filters"`
}

// CategoryIDs returns the ids of the product's linked categories.
func (p *Product) CategoryIDs() []string {
	ids := make([]string, len(p.Categories))
	for i, c := range p.Categories {
		ids[i] = c.ID
	}
	return ids
}
