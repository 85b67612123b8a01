package leave

import (
	"testing"

	"github.com/peoplecore/leave-backend-go/internal/domain/user"
)

func TestChainFor(t *testing.T) {
	cases := []struct {
		leaveType LeaveType
		want      []user.Role
	}{
		{TypeEarned, []user.Role{user.RoleHRAdmin, user.RoleDeptHead, user.RoleHRHead}},
		{TypeMedical, []user.Role{user.RoleHRAdmin, user.RoleDeptHead, user.RoleHRHead}},
		{TypeMaternity, []user.Role{user.RoleHRAdmin, user.RoleDeptHead, user.RoleHRHead}},
		{TypeCasual, []user.Role{user.RoleHRAdmin, user.RoleDeptHead}},
		{TypeQuarantine, []user.Role{user.RoleHRAdmin, user.RoleHRHead}},
	}
	for _, c := range cases {
		got := ChainFor(c.leaveType)
		if len(got) != len(c.want) {
			t.Errorf("ChainFor(%s) length = %d, want %d", c.leaveType, len(got), len(c.want))
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("ChainFor(%s)[%d] = %s, want %s", c.leaveType, i, got[i], c.want[i])
			}
		}
	}
}

func TestNextApprover_EmptyHistory(t *testing.T) {
	chain := ChainFor(TypeEarned)
	role, ok := NextApprover(chain, nil)
	if !ok {
		t.Fatal("NextApprover with no approvals = false, want true")
	}
	if role != user.RoleHRAdmin {
		t.Errorf("NextApprover first step = %s, want %s", role, user.RoleHRAdmin)
	}
}

func TestNextApprover_Progression(t *testing.T) {
	chain := ChainFor(TypeEarned)

	approvals := []Approval{
		{Step: 1, StepRole: user.RoleHRAdmin, Decision: DecisionForwarded},
	}
	role, ok := NextApprover(chain, approvals)
	if !ok || role != user.RoleDeptHead {
		t.Errorf("after one forward NextApprover = (%s, %v), want (%s, true)", role, ok, user.RoleDeptHead)
	}

	approvals = append(approvals, Approval{Step: 2, StepRole: user.RoleDeptHead, Decision: DecisionForwarded})
	role, ok = NextApprover(chain, approvals)
	if !ok || role != user.RoleHRHead {
		t.Errorf("after two forwards NextApprover = (%s, %v), want (%s, true)", role, ok, user.RoleHRHead)
	}
}

func TestNextApprover_ChainExhausted(t *testing.T) {
	chain := ChainFor(TypeCasual)
	approvals := []Approval{
		{Step: 1, StepRole: user.RoleHRAdmin, Decision: DecisionForwarded},
		{Step: 2, StepRole: user.RoleDeptHead, Decision: DecisionApproved},
	}
	if _, ok := NextApprover(chain, approvals); ok {
		t.Error("NextApprover on completed chain = true, want false")
	}
}

func TestNextApprover_IgnoresNonAdvancingDecisions(t *testing.T) {
	chain := ChainFor(TypeEarned)
	approvals := []Approval{
		{Step: 1, StepRole: user.RoleHRAdmin, Decision: DecisionPending},
		{Step: 1, StepRole: user.RoleHRAdmin, Decision: DecisionRejected},
	}
	role, ok := NextApprover(chain, approvals)
	if !ok || role != user.RoleHRAdmin {
		t.Errorf("NextApprover ignoring pending/rejected = (%s, %v), want (%s, true)", role, ok, user.RoleHRAdmin)
	}
}
