package service

import (
	"strings"
	"time"

	"github.com/oneaiguru/wfm-portal-api/internal/dto"
	"github.com/oneaiguru/wfm-portal-api/internal/models"
)

// Tracker step keys. The keys are stable API vocabulary; only labels localize.
const (
	stepDraft     = "draft"
	stepSubmitted = "submitted"
	stepReview    = "review"
	stepDecision  = "decision"
	stepApproved  = "approved"
	stepRejected  = "rejected"
	stepCancelled = "cancelled"
	stepExchange  = "exchange"
)

const (
	exchangeAwaiting = "exchange_awaiting"
	exchangeAccepted = "exchange_accepted"
	exchangeDeclined = "exchange_declined"
)

// trackerLabels maps locale -> step key -> display label.
var trackerLabels = map[string]map[string]string{
	"en": {
		stepDraft:        "Draft",
		stepSubmitted:    "Submitted",
		stepReview:       "Under review",
		stepDecision:     "Decision",
		stepApproved:     "Approved",
		stepRejected:     "Rejected",
		stepCancelled:    "Cancelled",
		exchangeAwaiting: "Awaiting counterpart",
		exchangeAccepted: "Counterpart accepted",
		exchangeDeclined: "Counterpart declined",
	},
	"ru": {
		stepDraft:        "Черновик",
		stepSubmitted:    "Подана",
		stepReview:       "На рассмотрении",
		stepDecision:     "Решение",
		stepApproved:     "Одобрена",
		stepRejected:     "Отклонена",
		stepCancelled:    "Отменена",
		exchangeAwaiting: "Ожидает ответа коллеги",
		exchangeAccepted: "Коллега подтвердил обмен",
		exchangeDeclined: "Коллега отклонил обмен",
	},
}

// normalizeLocale collapses locale tags to a supported label set.
func normalizeLocale(locale string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(locale)), "ru") {
		return "ru"
	}
	return "en"
}

// BuildTracker projects a request into its progression view. The projection is
// pure: it derives everything from the request row. Exactly one terminal step
// appears for finished requests; the outcomes that did not happen are omitted.
func BuildTracker(request *models.Request, locale string) dto.TrackerView {
	labels := trackerLabels[normalizeLocale(locale)]
	view := dto.TrackerView{
		RequestID: request.ID,
		Status:    string(request.Status),
	}

	step := func(key, state string, ts *time.Time) dto.TrackerStep {
		return dto.TrackerStep{Key: key, Label: labels[key], State: state, Timestamp: ts}
	}
	created := request.CreatedAt

	switch request.Status {
	case models.RequestStatusDraft:
		view.Steps = []dto.TrackerStep{
			step(stepDraft, dto.StepCurrent, &created),
			step(stepSubmitted, dto.StepUpcoming, nil),
			step(stepReview, dto.StepUpcoming, nil),
			step(stepDecision, dto.StepUpcoming, nil),
		}
	case models.RequestStatusSubmitted:
		view.Steps = []dto.TrackerStep{
			step(stepDraft, dto.StepCompleted, &created),
			step(stepSubmitted, dto.StepCurrent, request.SubmittedAt),
			step(stepReview, dto.StepUpcoming, nil),
			step(stepDecision, dto.StepUpcoming, nil),
		}
	case models.RequestStatusPendingApproval:
		view.Steps = []dto.TrackerStep{
			step(stepDraft, dto.StepCompleted, &created),
			step(stepSubmitted, dto.StepCompleted, request.SubmittedAt),
			step(stepReview, dto.StepCurrent, nil),
			step(stepDecision, dto.StepUpcoming, nil),
		}
	case models.RequestStatusApproved, models.RequestStatusRejected:
		outcomeKey := stepApproved
		if request.Status == models.RequestStatusRejected {
			outcomeKey = stepRejected
		}
		outcome := step(outcomeKey, dto.StepCompleted, request.DecidedAt)
		outcome.Comments = request.ApproverComments
		outcome.Approver = request.ApproverName
		view.Steps = []dto.TrackerStep{
			step(stepDraft, dto.StepCompleted, &created),
			step(stepSubmitted, dto.StepCompleted, request.SubmittedAt),
			step(stepReview, dto.StepCompleted, nil),
			outcome,
		}
	case models.RequestStatusCancelled:
		updated := request.UpdatedAt
		view.Steps = []dto.TrackerStep{step(stepDraft, dto.StepCompleted, &created)}
		if request.SubmittedAt != nil {
			view.Steps = append(view.Steps, step(stepSubmitted, dto.StepCompleted, request.SubmittedAt))
		}
		view.Steps = append(view.Steps, step(stepCancelled, dto.StepCompleted, &updated))
	}

	if request.Type == models.RequestTypeShiftChange && request.ExchangePartnerID != nil {
		view.Exchange = exchangeStep(request, labels)
	}
	return view
}

func exchangeStep(request *models.Request, labels map[string]string) *dto.TrackerStep {
	status := models.ExchangePending
	if request.ExchangeStatus != nil {
		status = *request.ExchangeStatus
	}
	step := &dto.TrackerStep{Key: stepExchange, Approver: request.ExchangePartnerID}
	switch status {
	case models.ExchangeAccepted:
		step.Label = labels[exchangeAccepted]
		step.State = dto.StepCompleted
	case models.ExchangeDeclined:
		step.Label = labels[exchangeDeclined]
		step.State = dto.StepCompleted
	default:
		step.Label = labels[exchangeAwaiting]
		step.State = dto.StepCurrent
	}
	return step
}
