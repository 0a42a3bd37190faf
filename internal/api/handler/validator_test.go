package handler

import (
	"strings"
	"testing"
)

func TestValidator_Messages(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&createTicketRequest{VIN: "V", ServiceDate: "2024-02-30"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "service_date must be a date in YYYY-MM-DD format") {
		t.Fatalf("missing date message: %s", msg)
	}
	if !strings.Contains(msg, "customer_id is required") {
		t.Fatalf("missing customer message: %s", msg)
	}
}

func TestValidator_OptionalPointers(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(&updateTicketRequest{}); err != nil {
		t.Fatalf("empty partial update should pass: %v", err)
	}
	bad := "tomorrow"
	if err := v.Validate(&updateTicketRequest{ServiceDate: &bad}); err == nil {
		t.Fatalf("expected invalid date to fail")
	}
	neg := -1.0
	if err := v.Validate(&updatePartRequest{Price: &neg}); err == nil {
		t.Fatalf("expected negative price to fail")
	}
}

func TestValidator_EditMembers(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(&editMembersRequest{AddIDs: []int64{1, 2}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Validate(&editMembersRequest{RemoveIDs: []int64{0}}); err == nil {
		t.Fatalf("expected non-positive id to fail")
	}
}
