// Package policy holds the authorization and quota decisions consulted before
// any mutation of accounts or listings.
package policy

import (
	"strings"

	"marketplace/internal/apperr"
	"marketplace/internal/models"
)

// CanonicalID is the single representation used for identity comparisons.
// Ids are UUID strings, which compare case-insensitively.
func CanonicalID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// IsOwnerOrAdmin fails closed: a missing owner, a missing actor id or an
// unknown role is always a denial, even for admins when no owner resolves.
func IsOwnerOrAdmin(ownerID *string, actor models.Identity) bool {
	if ownerID == nil || CanonicalID(*ownerID) == "" {
		return false
	}
	if !actor.Role.Valid() || CanonicalID(actor.SubjectID) == "" {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return CanonicalID(*ownerID) == CanonicalID(actor.SubjectID)
}

// Authorize is IsOwnerOrAdmin as an error value.
func Authorize(ownerID *string, actor models.Identity) error {
	if !IsOwnerOrAdmin(ownerID, actor) {
		return apperr.Unauthorized("only the owner or an admin may change this resource")
	}
	return nil
}

// RequireAdmin guards admin-only reads.
func RequireAdmin(actor models.Identity) error {
	if actor.Role != models.RoleAdmin || CanonicalID(actor.SubjectID) == "" {
		return apperr.Unauthorized("admin role required")
	}
	return nil
}
