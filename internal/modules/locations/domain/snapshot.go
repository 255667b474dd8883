package domain

import (
	users "roloApp/internal/modules/users/domain"
)

// Snapshot is the enriched form of a location with the creator resolved into
// display fields.
type Snapshot struct {
	Location
	CreatedBy users.PublicProfile `json:"createdBy"`
}
