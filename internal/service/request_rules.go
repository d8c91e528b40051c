package service

import (
	"fmt"
	"strings"

	"github.com/oneaiguru/wfm-portal-api/internal/models"
	appErrors "github.com/oneaiguru/wfm-portal-api/pkg/errors"
)

const (
	maxTitleLength         = 200
	minReasonLength        = 10
	maxReasonLength        = 2000
	maxVacationDays        = 60
	sickCertificateAfter   = 3
	maxOvertimeHoursPerDay = 24
)

// fieldRule validates one constraint against a built request and reports the
// offending payload field. An empty return means the rule passed.
type fieldRule struct {
	field string
	check func(r *models.Request) string
}

// commonRequestRules apply to every request type.
var commonRequestRules = []fieldRule{
	{"type", func(r *models.Request) string {
		if !r.Type.Valid() {
			return fmt.Sprintf("unsupported request type %q", r.Type)
		}
		return ""
	}},
	{"priority", func(r *models.Request) string {
		if !r.Priority.Valid() {
			return fmt.Sprintf("unsupported priority %q", r.Priority)
		}
		return ""
	}},
	{"title", func(r *models.Request) string {
		if strings.TrimSpace(r.Title) == "" {
			return "title is required"
		}
		if len(r.Title) > maxTitleLength {
			return fmt.Sprintf("title must not exceed %d characters", maxTitleLength)
		}
		return ""
	}},
	{"reason", func(r *models.Request) string {
		reason := strings.TrimSpace(r.Reason)
		if reason == "" {
			return "reason is required"
		}
		if len(reason) < minReasonLength {
			return fmt.Sprintf("reason must be at least %d characters", minReasonLength)
		}
		if len(r.Reason) > maxReasonLength {
			return fmt.Sprintf("reason must not exceed %d characters", maxReasonLength)
		}
		return ""
	}},
	{"startDate", func(r *models.Request) string {
		if r.StartDate.IsZero() {
			return "startDate is required"
		}
		return ""
	}},
	{"endDate", func(r *models.Request) string {
		if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
			return "endDate must not precede startDate"
		}
		return ""
	}},
}

// typeRequestRules hold the per-type constraints. Adding a request type means
// adding an entry here, not another validation branch.
var typeRequestRules = map[models.RequestType][]fieldRule{
	models.RequestTypeVacation: {
		{"endDate", func(r *models.Request) string {
			if r.EndDate == nil {
				return "endDate is required for vacation requests"
			}
			return ""
		}},
		{"endDate", func(r *models.Request) string {
			if days := spanDays(r); days > maxVacationDays {
				return fmt.Sprintf("vacation must not exceed %d days", maxVacationDays)
			}
			return ""
		}},
	},
	models.RequestTypeSickLeave: {
		{"medicalCertificate", func(r *models.Request) string {
			if spanDays(r) > sickCertificateAfter && (r.MedicalCertificate == nil || !*r.MedicalCertificate) {
				return fmt.Sprintf("sick leave longer than %d days requires a medical certificate", sickCertificateAfter)
			}
			return ""
		}},
	},
	models.RequestTypeTimeOff: {
		{"halfDay", func(r *models.Request) string {
			if r.HalfDay != nil && *r.HalfDay && r.EndDate != nil && !r.EndDate.Equal(r.StartDate) {
				return "half-day time off must cover a single date"
			}
			return ""
		}},
	},
	models.RequestTypeShiftChange: {
		{"currentShiftId", func(r *models.Request) string {
			if r.CurrentShiftID == nil || *r.CurrentShiftID == "" {
				return "currentShiftId is required for shift changes"
			}
			return ""
		}},
		{"requestedShiftId", func(r *models.Request) string {
			if r.RequestedShiftID == nil || *r.RequestedShiftID == "" {
				return "requestedShiftId is required for shift changes"
			}
			return ""
		}},
		{"requestedShiftId", func(r *models.Request) string {
			if r.CurrentShiftID != nil && r.RequestedShiftID != nil && *r.CurrentShiftID == *r.RequestedShiftID {
				return "requested shift must differ from the current shift"
			}
			return ""
		}},
		{"exchangePartnerId", func(r *models.Request) string {
			if r.ExchangePartnerID == nil || *r.ExchangePartnerID == "" {
				return "exchangePartnerId is required for shift changes"
			}
			return ""
		}},
		{"exchangePartnerId", func(r *models.Request) string {
			if r.ExchangePartnerID != nil && *r.ExchangePartnerID == r.EmployeeID {
				return "exchange partner must be another employee"
			}
			return ""
		}},
	},
	models.RequestTypeOvertime: {
		{"overtimeHours", func(r *models.Request) string {
			if r.OvertimeHours == nil {
				return "overtimeHours is required for overtime requests"
			}
			if *r.OvertimeHours <= 0 || *r.OvertimeHours > maxOvertimeHoursPerDay {
				return fmt.Sprintf("overtimeHours must be between 0 and %d", maxOvertimeHoursPerDay)
			}
			return ""
		}},
	},
}

// validateRequestModel runs the common rules followed by the rules of the
// request's type, returning a field-keyed validation error on first failure.
func validateRequestModel(r *models.Request) error {
	for _, rule := range commonRequestRules {
		if msg := rule.check(r); msg != "" {
			return appErrors.Field(rule.field, msg)
		}
	}
	for _, rule := range typeRequestRules[r.Type] {
		if msg := rule.check(r); msg != "" {
			return appErrors.Field(rule.field, msg)
		}
	}
	return nil
}

// spanDays counts the inclusive calendar days covered by the request.
func spanDays(r *models.Request) int {
	if r.StartDate.IsZero() {
		return 0
	}
	end := r.StartDate
	if r.EndDate != nil {
		end = *r.EndDate
	}
	if end.Before(r.StartDate) {
		return 0
	}
	return int(end.Sub(r.StartDate).Hours()/24) + 1
}
