package leave

import "github.com/peoplecore/leave-backend-go/internal/domain/user"

// defaultChain covers every leave type without a dedicated chain.
var defaultChain = []user.Role{user.RoleHRAdmin, user.RoleDeptHead, user.RoleHRHead}

// chainOverrides lists the leave types whose approval chain differs from the
// default. Casual leave skips the HR head; quarantine is decided by HR alone.
var chainOverrides = map[LeaveType][]user.Role{
	TypeCasual:     {user.RoleHRAdmin, user.RoleDeptHead},
	TypeQuarantine: {user.RoleHRAdmin, user.RoleHRHead},
}

// ChainFor returns the ordered list of approver roles for a leave type.
func ChainFor(t LeaveType) []user.Role {
	if chain, ok := chainOverrides[t]; ok {
		return chain
	}
	return defaultChain
}

// NextApprover returns the role responsible for the next chain step given the
// approvals taken so far, or false when the chain is exhausted (the request
// becomes fully approved).
func NextApprover(chain []user.Role, approvals []Approval) (user.Role, bool) {
	completed := 0
	for _, a := range approvals {
		if a.Decision == DecisionApproved || a.Decision == DecisionForwarded {
			completed++
		}
	}
	if completed >= len(chain) {
		return "", false
	}
	return chain[completed], true
}
