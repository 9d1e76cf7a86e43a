package gate

import (
	"context"
	"sort"
)

// Profile represents a role with a set of permissions.
type Profile interface {
	Name() string
	Label() string
	HasPermission(permission Permission) bool
	Permissions() []Permission
}

// ProfileResolver resolves a subject to its profile.
// U is the subject type (e.g. a role name or a user id).
type ProfileResolver[U any] interface {
	Resolve(ctx context.Context, subject U) (Profile, error)
}

// StaticProfile is a simple in-memory profile implementation.
type StaticProfile struct {
	name        string
	label       string
	permissions map[Permission]bool
}

// NewStaticProfile creates a profile with the given permissions.
func NewStaticProfile(name, label string, permissions ...Permission) *StaticProfile {
	p := &StaticProfile{
		name:        name,
		label:       label,
		permissions: make(map[Permission]bool),
	}
	for _, perm := range permissions {
		p.permissions[perm] = true
	}
	return p
}

func (p *StaticProfile) Name() string  { return p.name }
func (p *StaticProfile) Label() string { return p.label }

// Permissions returns all permissions in this profile, sorted.
func (p *StaticProfile) Permissions() []Permission {
	perms := make([]Permission, 0, len(p.permissions))
	for perm := range p.permissions {
		perms = append(perms, perm)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

// HasPermission checks if the profile has the requested permission.
// Supports wildcard matching.
func (p *StaticProfile) HasPermission(requested Permission) bool {
	for perm := range p.permissions {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}

// StaticResolver is a fixed subject-to-profile table.
type StaticResolver[U comparable] struct {
	profiles map[U]Profile
}

// NewStaticResolver creates an empty resolver.
func NewStaticResolver[U comparable]() *StaticResolver[U] {
	return &StaticResolver[U]{profiles: make(map[U]Profile)}
}

// Set assigns a profile to a subject.
func (r *StaticResolver[U]) Set(subject U, profile Profile) {
	r.profiles[subject] = profile
}

// Resolve returns the profile for the given subject, or nil when unknown.
func (r *StaticResolver[U]) Resolve(_ context.Context, subject U) (Profile, error) {
	if profile, ok := r.profiles[subject]; ok {
		return profile, nil
	}
	return nil, nil
}
