package report

import (
	"time"

	"github.com/peoplecore/leave-backend-go/internal/pkg/validator"
)

type YearlyReportRequest struct {
	Year int `json:"year"`
}

func (r *YearlyReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Year < 2000 || r.Year > time.Now().Year()+1 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be a plausible calendar year",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
