package leave

import (
	"testing"
	"time"

	"github.com/peoplecore/leave-backend-go/internal/config"
	"github.com/peoplecore/leave-backend-go/internal/domain/leave"
	"github.com/stretchr/testify/assert"
)

func testPolicyEngine() *PolicyEngine {
	return NewPolicyEngine(config.LeavePolicyConfig{
		MaxDayIncrease:       3,
		CertificateAfterDays: 3,
		MinReasonLength:      3,
		MinNoticeDays:        0,
	})
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeDate(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	in := time.Date(2026, 3, 2, 23, 45, 12, 99, loc)
	got := NormalizeDate(in)
	assert.Equal(t, date(2026, 3, 2), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestCountWorkingDays(t *testing.T) {
	e := testPolicyEngine()
	none := HolidaySet{}

	// Mon 2026-03-02 through Fri 2026-03-13 spans two full weeks
	assert.Equal(t, 10, e.CountWorkingDays(date(2026, 3, 2), date(2026, 3, 13), none))

	// Single working day
	assert.Equal(t, 1, e.CountWorkingDays(date(2026, 3, 2), date(2026, 3, 2), none))

	// Weekend-only range
	assert.Equal(t, 0, e.CountWorkingDays(date(2026, 3, 7), date(2026, 3, 8), none))

	// Holiday on Mon 2026-03-09 drops one day from the two-week range
	holidays := NewHolidaySet([]leave.Holiday{
		{Date: date(2026, 3, 9), Name: "Founders Day"},
	})
	assert.Equal(t, 9, e.CountWorkingDays(date(2026, 3, 2), date(2026, 3, 13), holidays))

	// Holiday on a Saturday changes nothing
	saturdayHoliday := NewHolidaySet([]leave.Holiday{
		{Date: date(2026, 3, 7), Name: "Weekend Festival"},
	})
	assert.Equal(t, 10, e.CountWorkingDays(date(2026, 3, 2), date(2026, 3, 13), saturdayHoliday))
}

func TestViolatesCasualSideTouch(t *testing.T) {
	e := testPolicyEngine()
	none := HolidaySet{}

	// Tue 2026-03-03 through Thu 2026-03-05 touches nothing
	assert.False(t, e.ViolatesCasualSideTouch(date(2026, 3, 3), date(2026, 3, 5), none))

	// Mon 2026-03-09 start is preceded by Sunday
	assert.True(t, e.ViolatesCasualSideTouch(date(2026, 3, 9), date(2026, 3, 11), none))

	// Fri 2026-03-06 end is followed by Saturday
	assert.True(t, e.ViolatesCasualSideTouch(date(2026, 3, 4), date(2026, 3, 6), none))

	// Holiday on Wed 2026-03-04 makes a Thu start adjacent
	holidays := NewHolidaySet([]leave.Holiday{
		{Date: date(2026, 3, 4), Name: "Founders Day"},
	})
	assert.True(t, e.ViolatesCasualSideTouch(date(2026, 3, 5), date(2026, 3, 5), holidays))
}

func TestCertificateRequired(t *testing.T) {
	e := testPolicyEngine()

	assert.False(t, e.CertificateRequired(leave.TypeMedical, 3))
	assert.True(t, e.CertificateRequired(leave.TypeMedical, 4))
	assert.False(t, e.CertificateRequired(leave.TypeEarned, 10))
	assert.False(t, e.CertificateRequired(leave.TypeCasual, 10))
}

func TestValidateReason(t *testing.T) {
	e := testPolicyEngine()

	assert.False(t, e.ValidateReason(""))
	assert.False(t, e.ValidateReason("ok"))
	assert.True(t, e.ValidateReason("flu"))
	assert.True(t, e.ValidateReason("family event out of town"))
}

func TestValidateNotice(t *testing.T) {
	e := NewPolicyEngine(config.LeavePolicyConfig{
		MaxDayIncrease:       3,
		CertificateAfterDays: 3,
		MinReasonLength:      3,
		MinNoticeDays:        2,
	})
	today := date(2026, 3, 2)

	assert.False(t, e.ValidateNotice(leave.TypeEarned, date(2026, 3, 3), today))
	assert.True(t, e.ValidateNotice(leave.TypeEarned, date(2026, 3, 4), today))

	// Medical and quarantine leave are exempt from the notice period
	assert.True(t, e.ValidateNotice(leave.TypeMedical, today, today))
	assert.True(t, e.ValidateNotice(leave.TypeQuarantine, today, today))
}

func TestHolidaySetContains(t *testing.T) {
	set := NewHolidaySet([]leave.Holiday{
		{Date: date(2026, 5, 1), Name: "Labour Day"},
	})

	assert.True(t, set.Contains(date(2026, 5, 1)))
	assert.False(t, set.Contains(date(2026, 5, 4)))

	// Lookup is date-only regardless of the instant
	assert.True(t, set.Contains(time.Date(2026, 5, 1, 18, 30, 0, 0, time.UTC)))
}
