package store

// Store is an interface for managing users, organizations, memberships,
// invitations and their adjacent records.
type Store interface {
	UserStore
	OrgStore
	MembershipStore
	InvitationStore
	CategoryStore
	DeliveryStore
}
