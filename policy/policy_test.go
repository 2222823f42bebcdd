package policy

import (
	"testing"

	"movemarket/auth"
)

func identity(role auth.Role) auth.Identity {
	return auth.Identity{UserID: "actor-1", Role: role}
}

func TestScopeRequests(t *testing.T) {
	tests := []struct {
		name  string
		actor auth.Identity
		want  RequestScope
	}{
		{"customer sees own", identity(auth.RoleCustomer), RequestScope{CustomerID: "actor-1"}},
		{"mover sees open market", identity(auth.RoleMover), RequestScope{PendingOnly: true}},
		{"admin sees everything", identity(auth.RoleAdmin), RequestScope{}},
		{"moderator denied", identity(auth.RoleModerator), RequestScope{Denied: true}},
		{"unknown role denied", identity(auth.Role("ghost")), RequestScope{Denied: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScopeRequests(tt.actor); got != tt.want {
				t.Fatalf("expected %+v got %+v", tt.want, got)
			}
		})
	}
}

func TestCanViewRequestBids(t *testing.T) {
	const ownerID = "cust-owner"

	tests := []struct {
		name  string
		actor auth.Identity
		want  bool
	}{
		{"owner customer", auth.Identity{UserID: ownerID, Role: auth.RoleCustomer}, true},
		{"other customer", auth.Identity{UserID: "cust-other", Role: auth.RoleCustomer}, false},
		{"any mover, including competitors", identity(auth.RoleMover), true},
		{"admin", identity(auth.RoleAdmin), true},
		{"moderator", identity(auth.RoleModerator), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanViewRequestBids(tt.actor, ownerID); got != tt.want {
				t.Fatalf("expected %v got %v", tt.want, got)
			}
		})
	}
}

func TestRoleGates(t *testing.T) {
	if !CanCreateRequest(identity(auth.RoleCustomer)) || CanCreateRequest(identity(auth.RoleMover)) {
		t.Fatal("only customers may create requests")
	}
	if !CanPlaceBid(identity(auth.RoleMover)) || CanPlaceBid(identity(auth.RoleCustomer)) || CanPlaceBid(identity(auth.RoleAdmin)) {
		t.Fatal("only movers may place bids")
	}
	if !CanPostLive(identity(auth.RoleMover)) || CanPostLive(identity(auth.RoleAdmin)) {
		t.Fatal("only movers may post to the live feed")
	}
	if !IsAdmin(identity(auth.RoleAdmin)) || IsAdmin(identity(auth.RoleModerator)) {
		t.Fatal("IsAdmin must match the admin role only")
	}
}

func TestCanSeeContact(t *testing.T) {
	if !CanSeeContact(auth.RoleMover) || !CanSeeContact(auth.RoleAdmin) {
		t.Fatal("movers and admins see contact details")
	}
	if CanSeeContact(auth.RoleCustomer) || CanSeeContact(auth.RoleModerator) {
		t.Fatal("customers and moderators get the redacted view")
	}
}
