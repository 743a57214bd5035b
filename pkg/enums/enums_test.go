package enums

import "testing"

func TestCartStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to CartStatus
		ok       bool
	}{
		{CartStatusActive, CartStatusPending, true},
		{CartStatusPending, CartStatusApproved, true},
		{CartStatusPending, CartStatusRejected, true},
		{CartStatusApproved, CartStatusReleased, true},
		{CartStatusPending, CartStatusActive, false},
		{CartStatusApproved, CartStatusActive, false},
		{CartStatusRejected, CartStatusApproved, false},
		{CartStatusReleased, CartStatusApproved, false},
		{CartStatusActive, CartStatusApproved, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.ok, got)
		}
	}
}

func TestParseEnums(t *testing.T) {
	if _, err := ParseCartStatus("pending"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseCartStatus("converted"); err == nil {
		t.Fatal("expected unknown cart status to fail")
	}
	if _, err := ParseOutboundOrigin("guest_release"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseRole("owner"); err == nil {
		t.Fatal("expected unknown role to fail")
	}
	if !MovementReasonRequestReject.IsValid() {
		t.Fatal("expected request_reject to be valid")
	}
}

func TestRoleIsStaff(t *testing.T) {
	if !RoleAdmin.IsStaff() || !RoleSuperAdmin.IsStaff() {
		t.Fatal("admins are staff")
	}
	if RoleEmployee.IsStaff() {
		t.Fatal("employees are not staff")
	}
}
