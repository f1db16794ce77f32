package backend

import (
	"context"

	"github.com/charmbracelet/roster/pkg/access"
	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/db/models"
	"github.com/charmbracelet/roster/pkg/proto"
)

// RemoveMember removes a member from an organization. Admins cannot remove
// themselves, they have to leave instead.
func (b *Backend) RemoveMember(ctx context.Context, c proto.Caller, org, membership string) error {
	if err := authenticated(c); err != nil {
		return err
	}

	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		if _, err := b.admin(ctx, tx, c, org, proto.ErrAdminToRemove); err != nil {
			return err
		}

		target, err := b.orgMembership(ctx, tx, org, membership)
		if err != nil {
			return err
		}

		if target.UserID == c.UserID && !access.CanRemoveSelf() {
			return proto.ErrCannotRemoveSelf
		}

		admins, err := b.adminCount(ctx, tx, org)
		if err != nil {
			return err
		}
		if !access.CanRemoveOrLeave(admins, target.Role) {
			return proto.ErrCannotRemoveLastAdmin
		}

		if err := b.store.DeleteMembership(ctx, tx, target.ID); err != nil {
			return notFound(err, proto.ErrMembershipNotFound)
		}

		if target.Role.IsAdmin() {
			return b.keepAdmin(ctx, tx, org, proto.ErrCannotRemoveLastAdmin)
		}
		return nil
	}); err != nil {
		return err
	}

	membershipsRemovedCounter.WithLabelValues("removed").Inc()
	b.logger.Info("member removed", "organization", org, "membership", membership, "by", c.UserID)
	return nil
}

// ChangeMemberRole changes the role of a member. The last admin of an
// organization cannot be demoted.
func (b *Backend) ChangeMemberRole(ctx context.Context, c proto.Caller, org, membership string, role access.Role) (proto.Member, error) {
	if err := authenticated(c); err != nil {
		return proto.Member{}, err
	}

	if !role.IsValid() {
		return proto.Member{}, proto.ErrInvalidRole
	}

	var member models.Member
	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		if _, err := b.admin(ctx, tx, c, org, proto.ErrAdminToChangeRole); err != nil {
			return err
		}

		target, err := b.orgMembership(ctx, tx, org, membership)
		if err != nil {
			return err
		}

		if target.Role != role {
			demotion := target.Role.IsAdmin() && !role.IsAdmin()
			if demotion {
				admins, err := b.adminCount(ctx, tx, org)
				if err != nil {
					return err
				}
				if !access.CanDemote(admins, target.Role) {
					return proto.ErrCannotDemoteLastAdmin
				}
			}

			if err := b.store.SetMembershipRole(ctx, tx, target.ID, role); err != nil {
				return notFound(err, proto.ErrMembershipNotFound)
			}
			target.Role = role

			if demotion {
				if err := b.keepAdmin(ctx, tx, org, proto.ErrCannotDemoteLastAdmin); err != nil {
					return err
				}
			}
		}

		u, err := b.user(ctx, tx, target.UserID)
		if err != nil {
			return err
		}

		member = models.Member{
			Membership: target,
			UserName:   u.Name,
			UserEmail:  u.Email,
		}
		return nil
	}); err != nil {
		return proto.Member{}, err
	}

	b.logger.Info("member role changed", "organization", org, "membership", membership, "role", role, "by", c.UserID)
	return toMember(member), nil
}

// LeaveOrganization removes the caller from an organization. The last admin
// cannot leave.
func (b *Backend) LeaveOrganization(ctx context.Context, c proto.Caller, org string) error {
	if err := authenticated(c); err != nil {
		return err
	}

	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		m, err := b.membership(ctx, tx, c, org, proto.ErrNotOrgMemberToLeave)
		if err != nil {
			return err
		}

		admins, err := b.adminCount(ctx, tx, org)
		if err != nil {
			return err
		}
		if !access.CanRemoveOrLeave(admins, m.Role) {
			return proto.ErrCannotLeaveLastAdmin
		}

		if err := b.store.DeleteMembership(ctx, tx, m.ID); err != nil {
			return notFound(err, proto.ErrNotOrgMemberToLeave)
		}

		if m.Role.IsAdmin() {
			return b.keepAdmin(ctx, tx, org, proto.ErrCannotLeaveLastAdmin)
		}
		return nil
	}); err != nil {
		return err
	}

	membershipsRemovedCounter.WithLabelValues("left").Inc()
	b.logger.Info("member left", "organization", org, "user", c.UserID)
	return nil
}
