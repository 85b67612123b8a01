package leave

import (
	"time"

	"github.com/peoplecore/leave-backend-go/internal/config"
	"github.com/peoplecore/leave-backend-go/internal/domain/leave"
)

// HolidaySet is a date-keyed lookup built from the holiday calendar
type HolidaySet map[string]bool

// NewHolidaySet builds the lookup from holiday rows
func NewHolidaySet(holidays []leave.Holiday) HolidaySet {
	set := make(HolidaySet, len(holidays))
	for _, h := range holidays {
		set[h.Date.Format("2006-01-02")] = true
	}
	return set
}

// Contains reports whether d is a listed holiday
func (s HolidaySet) Contains(d time.Time) bool {
	return s[d.Format("2006-01-02")]
}

// PolicyEngine holds the pure leave policy rules. No I/O; the holiday
// calendar is passed in by the caller.
type PolicyEngine struct {
	cfg config.LeavePolicyConfig
}

func NewPolicyEngine(cfg config.LeavePolicyConfig) *PolicyEngine {
	return &PolicyEngine{cfg: cfg}
}

// NormalizeDate truncates t to midnight UTC. All date comparisons in the
// leave engine are date-only, never instant-based.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsNonWorkingDay reports whether d is a weekend day or listed holiday
func IsNonWorkingDay(d time.Time, holidays HolidaySet) bool {
	if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		return true
	}
	return holidays.Contains(d)
}

// CountWorkingDays counts business days in the inclusive range [start, end],
// excluding Saturdays, Sundays and listed holidays. Deterministic and pure.
func (e *PolicyEngine) CountWorkingDays(start, end time.Time, holidays HolidaySet) int {
	start = NormalizeDate(start)
	end = NormalizeDate(end)

	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsNonWorkingDay(d, holidays) {
			continue
		}
		days++
	}
	return days
}

// ViolatesCasualSideTouch reports whether a casual leave range is immediately
// adjacent to a weekend or holiday. The rule prevents stretching a long
// weekend with casual leave.
func (e *PolicyEngine) ViolatesCasualSideTouch(start, end time.Time, holidays HolidaySet) bool {
	dayBefore := NormalizeDate(start).AddDate(0, 0, -1)
	dayAfter := NormalizeDate(end).AddDate(0, 0, 1)
	return IsNonWorkingDay(dayBefore, holidays) || IsNonWorkingDay(dayAfter, holidays)
}

// CertificateRequired reports whether a leave of this type and length must
// carry a medical certificate.
func (e *PolicyEngine) CertificateRequired(t leave.LeaveType, workingDays int) bool {
	return t == leave.TypeMedical && workingDays > e.cfg.CertificateAfterDays
}

// ValidateReason checks the configured minimum reason length
func (e *PolicyEngine) ValidateReason(reason string) bool {
	return len(reason) >= e.cfg.MinReasonLength
}

// ValidateNotice checks the minimum notice period before the start date.
// Medical and quarantine leave are exempt: they are unplannable.
func (e *PolicyEngine) ValidateNotice(t leave.LeaveType, start, today time.Time) bool {
	if t == leave.TypeMedical || t == leave.TypeQuarantine {
		return true
	}
	minStart := NormalizeDate(today).AddDate(0, 0, e.cfg.MinNoticeDays)
	return !NormalizeDate(start).Before(minStart)
}
