package domain

import (
	users "roloApp/internal/modules/users/domain"
)

// LocationSummary is the resolved display form of a referenced location.
type LocationSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Snapshot is the enriched form of a post: referenced ids resolved into their
// current display fields. The outer fields shadow the raw reference ids of
// the embedded Post during serialization.
type Snapshot struct {
	Post
	Author   users.PublicProfile `json:"author"`
	Location *LocationSummary    `json:"location,omitempty"`
}
