// Package policy decides whether an actor may perform an action on a resource.
// Every check is a plain predicate over the actor's profile flag and ownership.
// A nil actor is anonymous and is always denied.
package policy

import (
	"github.com/google/uuid"

	"github.com/rpupo63/blogd/errs"
	"github.com/rpupo63/blogd/models"
)

// Decision is the outcome of a check. Reason is set when Allowed is false.
type Decision struct {
	Allowed bool
	Reason  string
}

// Err turns a denial into a permission error.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return errs.NewPermissionError(d.Reason)
}

const (
	reasonAnonymous = "authentication credentials were not provided"
	reasonNotAdmin  = "only blog admins can perform this action"
	reasonNotOwner  = "only the author or a blog admin can modify this"
)

var allow = Decision{Allowed: true}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

func requireAdmin(actor *models.User, reason string) Decision {
	switch {
	case actor == nil:
		return deny(reasonAnonymous)
	case actor.IsBlogAdmin():
		return allow
	default:
		return deny(reason)
	}
}

func requireOwnerOrAdmin(actor *models.User, ownerID uuid.UUID) Decision {
	switch {
	case actor == nil:
		return deny(reasonAnonymous)
	case actor.Is(ownerID), actor.IsBlogAdmin():
		return allow
	default:
		return deny(reasonNotOwner)
	}
}

func CanCreateCategory(actor *models.User) Decision {
	return requireAdmin(actor, "only blog admins can create categories")
}

func CanMutateCategory(actor *models.User) Decision {
	return requireAdmin(actor, "only blog admins can modify categories")
}

func CanCreatePost(actor *models.User) Decision {
	return requireAdmin(actor, "only blog admins can create posts")
}

// CanMutatePost allows the post's author and any blog admin.
func CanMutatePost(actor *models.User, post *models.BlogPost) Decision {
	return requireOwnerOrAdmin(actor, post.AuthorID)
}

// CanMutateComment allows the comment's author and any blog admin.
func CanMutateComment(actor *models.User, comment *models.Comment) Decision {
	return requireOwnerOrAdmin(actor, comment.AuthorID)
}

func CanApproveComment(actor *models.User) Decision {
	return requireAdmin(actor, "only blog admins can approve comments")
}

func CanViewAdminPosts(actor *models.User) Decision {
	return requireAdmin(actor, reasonNotAdmin)
}
