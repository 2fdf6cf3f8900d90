package domain

import "time"

// FilterType determines the value shape a filter accepts.
type FilterType string

const (
	FilterTypeCategorical  FilterType = "CATEGORICAL"
	FilterTypeQuantitative FilterType = "QUANTITATIVE"
	FilterTypeDatetime     FilterType = "DATETIME"
)

// ValidFilterTypes returns the set of supported filter types.
func ValidFilterTypes() []FilterType {
	return []FilterType{FilterTypeCategorical, FilterTypeQuantitative, FilterTypeDatetime}
}

// IsValidFilterType reports whether t is a supported filter type.
func IsValidFilterType(t FilterType) bool {
	for _, v := range ValidFilterTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// Filter is a typed attribute definition scoped to a site and a category.
// Products reference filters through value assignments. Filters are immutable
// after creation; key uniqueness is case-insensitive within {site, category}.
type Filter struct {
	ID            string     `json:"id"`
	SiteID        string     `json:"siteId"`
	CategoryID    string     `json:"categoryId"`
	CategoryName  string     `json:"categoryName,omitempty"`
	Key           string     `json:"key"`
	Type          FilterType `json:"type"`
	DisplayName   *string    `json:"displayName,omitempty"`
	Unit          *string    `json:"unit,omitempty"`
	AllowedValues []string   `json:"values,omitempty"`
	MinValue      *float64   `json:"minValue,omitempty"`
	MaxValue      *float64   `json:"maxValue,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}
