// Package policy holds the visibility rules applied before any listing is
// returned. Everything here is a pure mapping from (actor, entity) to a
// permitted view; persistence and error reporting belong to the callers.
package policy

import "movemarket/auth"

// RequestScope narrows a moving-request listing for one actor. Zero-value
// fields mean "no filter"; Denied means the actor may not list at all.
type RequestScope struct {
	CustomerID  string
	PendingOnly bool
	Denied      bool
}

// ScopeRequests returns the listing scope for the actor's role:
// customers see their own requests in every status, movers see the open
// (pending) market, admins see everything.
func ScopeRequests(actor auth.Identity) RequestScope {
	switch actor.Role {
	case auth.RoleCustomer:
		return RequestScope{CustomerID: actor.UserID}
	case auth.RoleMover:
		return RequestScope{PendingOnly: true}
	case auth.RoleAdmin:
		return RequestScope{}
	default:
		return RequestScope{Denied: true}
	}
}

// CanViewRequestBids reports whether the actor may read the bid ledger of
// a request owned by ownerID. Movers and admins always may, including
// competitors' bids; a customer only on their own request.
func CanViewRequestBids(actor auth.Identity, ownerID string) bool {
	switch actor.Role {
	case auth.RoleMover, auth.RoleAdmin:
		return true
	case auth.RoleCustomer:
		return actor.UserID == ownerID
	default:
		return false
	}
}

// CanSeeContact reports whether the role may read mover phone numbers on
// live-feed posts. Everyone else gets the redacted public view.
func CanSeeContact(role auth.Role) bool {
	return role == auth.RoleMover || role == auth.RoleAdmin
}

// CanPostLive reports whether the actor may publish to the live feed.
func CanPostLive(actor auth.Identity) bool {
	return actor.Role == auth.RoleMover
}

// CanCreateRequest reports whether the actor may open a moving request.
func CanCreateRequest(actor auth.Identity) bool {
	return actor.Role == auth.RoleCustomer
}

// CanPlaceBid reports whether the actor may bid on requests.
func CanPlaceBid(actor auth.Identity) bool {
	return actor.Role == auth.RoleMover
}

// IsAdmin reports whether the actor holds the admin role.
func IsAdmin(actor auth.Identity) bool {
	return actor.Role == auth.RoleAdmin
}
