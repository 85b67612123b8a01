package leave

// legalTransitions is the exhaustive set of permitted status transitions.
// Every lifecycle operation must pass ValidateStatusTransition before any
// other side effect; rejected and cancelled are terminal, recalled is
// terminal.
var legalTransitions = map[LeaveStatus][]LeaveStatus{
	StatusSubmitted: {
		StatusPending,
		StatusApproved,
		StatusRejected,
		StatusReturned,
		StatusCancelled,
	},
	StatusPending: {
		StatusApproved,
		StatusRejected,
		StatusReturned,
		StatusCancelled,
	},
	StatusReturned: {
		StatusPending,
		StatusCancelled,
	},
	StatusApproved: {
		StatusRecalled,
		StatusCancellationRequested,
		StatusCancelled,
	},
	StatusCancellationRequested: {
		StatusCancelled,
		StatusApproved,
	},
	StatusRejected:  {},
	StatusRecalled:  {},
	StatusCancelled: {},
}

// ValidateStatusTransition fails with IllegalTransitionError when the pair is
// not in the allowed set.
func ValidateStatusTransition(current, requested LeaveStatus) error {
	for _, next := range legalTransitions[current] {
		if next == requested {
			return nil
		}
	}
	return &IllegalTransitionError{From: current, To: requested}
}

// IsTerminal reports whether no outbound transition exists from s
func IsTerminal(s LeaveStatus) bool {
	return len(legalTransitions[s]) == 0
}

// IsDecidable reports whether an approver may act on a request in status s
func IsDecidable(s LeaveStatus) bool {
	return s == StatusSubmitted || s == StatusPending
}
