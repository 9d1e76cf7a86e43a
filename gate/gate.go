package gate

import (
	"context"
	"errors"
)

// Sentinel errors returned by Gate.Authorize.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoProfile    = errors.New("no profile for subject")
)

// Gate answers permission questions for a subject by resolving its profile.
// It has no notion of resource ownership: every subject with the same
// profile is treated alike.
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
}

// New creates a gate backed by the given resolver.
func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{resolver: resolver}
}

// Authorize returns ErrUnauthorized unless the subject is non-zero and its
// profile grants resource:action.
func (g *Gate[U]) Authorize(ctx context.Context, subject U, action Action, resourceType string) error {
	var zero U
	if subject == zero {
		return ErrUnauthorized
	}
	profile, err := g.resolver.Resolve(ctx, subject)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrNoProfile
	}
	if !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrUnauthorized
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate[U]) Can(ctx context.Context, subject U, action Action, resourceType string) bool {
	return g.Authorize(ctx, subject, action, resourceType) == nil
}

// Profile returns the subject's profile, or nil.
func (g *Gate[U]) Profile(ctx context.Context, subject U) Profile {
	p, err := g.resolver.Resolve(ctx, subject)
	if err != nil {
		return nil
	}
	return p
}
