// Package authz provides composable authorization predicates. The historical
// behavior of a global "super admin bypasses everything" early return is
// re-expressed as an explicit first predicate in a disjunction, evaluated
// once per decision point instead of being layered over every check.
package authz

import "github.com/google/uuid"

// Subject is the acting user as seen by authorization decisions
type Subject struct {
	UserID       uuid.UUID
	Roles        []string
	IsSuperAdmin bool
}

// Resource is the target of an authorization decision
type Resource struct {
	Kind    string    // e.g. "billing.invoice"
	ID      uuid.UUID
	OwnerID uuid.UUID
}

// Predicate decides whether a subject may act on a resource
type Predicate func(s Subject, r Resource) bool

// SuperAdmin grants access to super administrators
func SuperAdmin() Predicate {
	return func(s Subject, _ Resource) bool {
		return s.IsSuperAdmin
	}
}

// HasRole grants access to subjects carrying the given role
func HasRole(role string) Predicate {
	return func(s Subject, _ Resource) bool {
		for _, r := range s.Roles {
			if r == role {
				return true
			}
		}
		return false
	}
}

// Owner grants access to the resource owner
func Owner() Predicate {
	return func(s Subject, r Resource) bool {
		return r.OwnerID != uuid.Nil && s.UserID == r.OwnerID
	}
}

// Any grants access when at least one predicate grants it
func Any(preds ...Predicate) Predicate {
	return func(s Subject, r Resource) bool {
		for _, p := range preds {
			if p(s, r) {
				return true
			}
		}
		return false
	}
}

// All grants access only when every predicate grants it
func All(preds ...Predicate) Predicate {
	return func(s Subject, r Resource) bool {
		for _, p := range preds {
			if !p(s, r) {
				return false
			}
		}
		return true
	}
}

// Allow is the standard decision shape: super admins pass, everyone else is
// subject to the specific rule.
func Allow(specificRule Predicate) Predicate {
	return Any(SuperAdmin(), specificRule)
}
