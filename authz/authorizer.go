package authz

import (
	"context"
	"errors"
	"fmt"

	"taskflow/backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the read view the authorizer uses to re-load ownership fields
// immediately before deciding. Implementations return ErrNotFound (wrapped or
// bare) when the entity is absent.
type Store interface {
	ProjectByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	TaskByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type Authorizer struct {
	store Store
}

func NewAuthorizer(store Store) *Authorizer {
	return &Authorizer{store: store}
}

// AuthorizeCreate decides whether the identity may create entities of the
// given resource kind. Creates have no stored target; the decision is a pure
// role lookup.
func (a *Authorizer) AuthorizeCreate(identity Identity, resource Resource) (Decision, error) {
	r, ok := policy[resource][OpCreate][identity.Role]
	if !ok {
		return Decision{}, fmt.Errorf("%w: role %s may not create %s", ErrForbidden, identity.Role, resource)
	}
	return Decision{MutableFields: r.mutable}, nil
}

// Authorize decides an update or delete against the entity identified by
// targetID. The target's ownership fields are re-read from the store here, so
// a manager stripped of a project loses rights on the very next call.
//
// Probing policy, fixed for every resource and role: an absent target answers
// NotFound. For an existing target, Admin and Manager denials answer
// Forbidden; a User-role caller is answered Forbidden only when the target is
// within their visibility, and NotFound otherwise, so probing ids never
// confirms existence to them.
func (a *Authorizer) Authorize(ctx context.Context, identity Identity, op Operation, resource Resource, targetID primitive.ObjectID) (Decision, Target, error) {
	if op == OpCreate {
		d, err := a.AuthorizeCreate(identity, resource)
		return d, Target{}, err
	}

	target, err := a.loadTarget(ctx, resource, targetID)
	if err != nil {
		return Decision{}, Target{}, err
	}

	r, ok := policy[resource][op][identity.Role]
	if !ok {
		return Decision{}, Target{}, deny(identity, op, resource, target, targetID)
	}
	if r.owns != nil && !r.owns(identity, target) {
		return Decision{}, Target{}, deny(identity, op, resource, target, targetID)
	}
	return Decision{MutableFields: r.mutable}, target, nil
}

// deny shapes the error for a refused mutation on an existing target. The
// NotFound branch reuses targetErr's message shape so a masked denial is
// indistinguishable from a genuinely absent entity.
func deny(identity Identity, op Operation, resource Resource, target Target, targetID primitive.ObjectID) error {
	if identity.Role == models.RoleUser && !canSeeTarget(identity, resource, target) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, resource, targetID.Hex())
	}
	return fmt.Errorf("%w: not entitled to %s this %s", ErrForbidden, op, resource)
}

// canSeeTarget resolves visibility of a loaded target for the denial path.
// Task visibility for User-role callers depends only on the assignee field,
// so no parent project lookup is needed here.
func canSeeTarget(identity Identity, resource Resource, target Target) bool {
	switch resource {
	case ResourceProject:
		return CanSeeProject(identity, target.Project)
	case ResourceTask:
		return CanSeeTask(identity, target.Task, nil)
	case ResourceUser:
		return target.User.ID == identity.UserID
	default:
		return false
	}
}

func (a *Authorizer) loadTarget(ctx context.Context, resource Resource, id primitive.ObjectID) (Target, error) {
	switch resource {
	case ResourceProject:
		p, err := a.store.ProjectByID(ctx, id)
		if err != nil {
			return Target{}, targetErr(err, resource, id)
		}
		return Target{Project: p}, nil
	case ResourceTask:
		t, err := a.store.TaskByID(ctx, id)
		if err != nil {
			return Target{}, targetErr(err, resource, id)
		}
		return Target{Task: t}, nil
	case ResourceUser:
		u, err := a.store.UserByID(ctx, id)
		if err != nil {
			return Target{}, targetErr(err, resource, id)
		}
		return Target{User: u}, nil
	default:
		return Target{}, fmt.Errorf("%w: unknown resource %q", ErrValidation, resource)
	}
}

func targetErr(err error, resource Resource, id primitive.ObjectID) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, resource, id.Hex())
	}
	return err
}
