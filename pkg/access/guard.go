package access

// The functions below decide whether a change to an organization's
// membership keeps at least one admin in place. They never read data
// themselves: adminCount must be read in the same transaction as the write
// it guards.

// CanDemote reports whether a member holding target may be demoted to
// member.
func CanDemote(adminCount int, target Role) bool {
	return !(target.IsAdmin() && adminCount <= 1)
}

// CanRemoveOrLeave reports whether a member holding target may be removed
// from, or leave, the organization.
func CanRemoveOrLeave(adminCount int, target Role) bool {
	return !(target.IsAdmin() && adminCount <= 1)
}

// CanRemoveSelf reports whether an admin may remove their own membership
// through the member removal path. Leaving goes through departure instead.
func CanRemoveSelf() bool {
	return false
}
