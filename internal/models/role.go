package models

// Role is a single named permission. Each role occupies one bit so a user's
// full role assignment fits in a single integer column.
type Role int

const (
	RoleUser       Role = 1
	RoleAdmin      Role = 2
	RoleInstructor Role = 4
	RoleStudent    Role = 8
	RoleReviewer   Role = 16
	RoleStaff      Role = 32
)

// allRoles in ascending bit order. Decode depends on this ordering.
var allRoles = []Role{RoleUser, RoleAdmin, RoleInstructor, RoleStudent, RoleReviewer, RoleStaff}

var roleNames = map[Role]string{
	RoleUser:       "User",
	RoleAdmin:      "Admin",
	RoleInstructor: "Instructor",
	RoleStudent:    "Student",
	RoleReviewer:   "Reviewer",
	RoleStaff:      "Staff",
}

// String returns the display name for a role, or "Unknown" for an
// unrecognized bit.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "Unknown"
}

// RoleSet wraps the roles bitmask stored on a user row. All role arithmetic
// goes through this type; callers never touch raw bits.
type RoleSet int

// EncodeRoles builds a RoleSet from a list of roles. A nil or empty list
// encodes to the empty set; duplicates do not double-count.
func EncodeRoles(roles []Role) RoleSet {
	var set RoleSet
	for _, r := range roles {
		set |= RoleSet(r)
	}
	return set
}

// Decode returns the roles held by the set in ascending bit order.
// A zero or negative mask decodes to an empty list rather than an error,
// matching the "no roles" interpretation of bad data.
func (s RoleSet) Decode() []Role {
	if s <= 0 {
		return []Role{}
	}
	roles := make([]Role, 0, len(allRoles))
	for _, r := range allRoles {
		if s&RoleSet(r) != 0 {
			roles = append(roles, r)
		}
	}
	return roles
}

// Has reports whether the set contains the given role.
func (s RoleSet) Has(role Role) bool {
	if s <= 0 {
		return false
	}
	return s&RoleSet(role) != 0
}

// HasAll reports whether the set contains every required role.
// An empty requirement is vacuously satisfied.
func (s RoleSet) HasAll(required ...Role) bool {
	for _, r := range required {
		if !s.Has(r) {
			return false
		}
	}
	return true
}

// HasAny reports whether the set contains at least one of the required roles.
// An empty requirement is never satisfied; the asymmetry with HasAll is
// intentional and callers rely on it.
func (s RoleSet) HasAny(required ...Role) bool {
	for _, r := range required {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Add returns the set with the role's bit set. Idempotent.
func (s RoleSet) Add(role Role) RoleSet {
	if s < 0 {
		s = 0
	}
	return s | RoleSet(role)
}

// Remove returns the set with the role's bit cleared. Idempotent.
func (s RoleSet) Remove(role Role) RoleSet {
	if s < 0 {
		return 0
	}
	return s &^ RoleSet(role)
}

// IsEmpty reports whether no roles are held.
func (s RoleSet) IsEmpty() bool {
	return s <= 0
}

// Names returns the display names of the held roles in ascending bit order.
func (s RoleSet) Names() []string {
	roles := s.Decode()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return names
}

// IsValid reports whether the mask only uses known role bits.
func (s RoleSet) IsValid() bool {
	if s < 0 {
		return false
	}
	known := EncodeRoles(allRoles)
	return s&^known == 0
}
