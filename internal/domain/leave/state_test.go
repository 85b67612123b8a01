package leave

import (
	"errors"
	"testing"
)

func TestValidateStatusTransition_Allowed(t *testing.T) {
	cases := []struct {
		from LeaveStatus
		to   LeaveStatus
	}{
		{StatusSubmitted, StatusPending},
		{StatusSubmitted, StatusApproved},
		{StatusSubmitted, StatusRejected},
		{StatusSubmitted, StatusReturned},
		{StatusSubmitted, StatusCancelled},
		{StatusPending, StatusApproved},
		{StatusPending, StatusRejected},
		{StatusPending, StatusReturned},
		{StatusPending, StatusCancelled},
		{StatusReturned, StatusPending},
		{StatusReturned, StatusCancelled},
		{StatusApproved, StatusRecalled},
		{StatusApproved, StatusCancellationRequested},
		{StatusApproved, StatusCancelled},
		{StatusCancellationRequested, StatusCancelled},
		{StatusCancellationRequested, StatusApproved},
	}
	for _, c := range cases {
		if err := ValidateStatusTransition(c.from, c.to); err != nil {
			t.Errorf("ValidateStatusTransition(%s, %s) = %v, want nil", c.from, c.to, err)
		}
	}
}

func TestValidateStatusTransition_Illegal(t *testing.T) {
	cases := []struct {
		from LeaveStatus
		to   LeaveStatus
	}{
		{StatusSubmitted, StatusRecalled},
		{StatusPending, StatusSubmitted},
		{StatusReturned, StatusApproved},
		{StatusReturned, StatusRejected},
		{StatusApproved, StatusPending},
		{StatusApproved, StatusReturned},
		{StatusRejected, StatusPending},
		{StatusRejected, StatusApproved},
		{StatusRecalled, StatusApproved},
		{StatusCancelled, StatusSubmitted},
		{StatusCancelled, StatusPending},
		{StatusCancellationRequested, StatusPending},
	}
	for _, c := range cases {
		err := ValidateStatusTransition(c.from, c.to)
		if err == nil {
			t.Errorf("ValidateStatusTransition(%s, %s) = nil, want error", c.from, c.to)
			continue
		}
		var illegal *IllegalTransitionError
		if !errors.As(err, &illegal) {
			t.Errorf("ValidateStatusTransition(%s, %s) error type = %T, want *IllegalTransitionError", c.from, c.to, err)
			continue
		}
		if illegal.From != c.from || illegal.To != c.to {
			t.Errorf("IllegalTransitionError = {%s -> %s}, want {%s -> %s}", illegal.From, illegal.To, c.from, c.to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []LeaveStatus{StatusRejected, StatusRecalled, StatusCancelled}
	for _, s := range terminal {
		if !IsTerminal(s) {
			t.Errorf("IsTerminal(%s) = false, want true", s)
		}
	}
	active := []LeaveStatus{
		StatusSubmitted, StatusPending, StatusApproved,
		StatusReturned, StatusCancellationRequested,
	}
	for _, s := range active {
		if IsTerminal(s) {
			t.Errorf("IsTerminal(%s) = true, want false", s)
		}
	}
}

func TestIsDecidable(t *testing.T) {
	decidable := []LeaveStatus{StatusSubmitted, StatusPending}
	for _, s := range decidable {
		if !IsDecidable(s) {
			t.Errorf("IsDecidable(%s) = false, want true", s)
		}
	}
	notDecidable := []LeaveStatus{
		StatusApproved, StatusRejected, StatusReturned,
		StatusRecalled, StatusCancellationRequested, StatusCancelled,
	}
	for _, s := range notDecidable {
		if IsDecidable(s) {
			t.Errorf("IsDecidable(%s) = true, want false", s)
		}
	}
}
