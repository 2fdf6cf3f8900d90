package domain

import "time"

// Category is a per-site grouping products are assigned to. Categories are
// immutable after creation; name uniqueness is case-insensitive within a site.
type Category struct {
	ID        string    `json:"id"`
	SiteID    string    `json:"siteId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
