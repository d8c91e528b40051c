package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	appErrors "github.com/oneaiguru/wfm-portal-api/pkg/errors"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name   string
		from   RequestStatus
		action RequestAction
		want   RequestStatus
		valid  bool
	}{
		{"submit draft", RequestStatusDraft, ActionSubmit, RequestStatusSubmitted, true},
		{"cancel draft", RequestStatusDraft, ActionCancel, RequestStatusCancelled, true},
		{"review submitted", RequestStatusSubmitted, ActionReview, RequestStatusPendingApproval, true},
		{"approve submitted directly", RequestStatusSubmitted, ActionApprove, RequestStatusApproved, true},
		{"reject submitted directly", RequestStatusSubmitted, ActionReject, RequestStatusRejected, true},
		{"cancel submitted", RequestStatusSubmitted, ActionCancel, RequestStatusCancelled, true},
		{"approve pending", RequestStatusPendingApproval, ActionApprove, RequestStatusApproved, true},
		{"reject pending", RequestStatusPendingApproval, ActionReject, RequestStatusRejected, true},
		{"cancel pending", RequestStatusPendingApproval, ActionCancel, RequestStatusCancelled, true},
		{"approve draft", RequestStatusDraft, ActionApprove, "", false},
		{"review draft", RequestStatusDraft, ActionReview, "", false},
		{"submit submitted", RequestStatusSubmitted, ActionSubmit, "", false},
		{"review pending", RequestStatusPendingApproval, ActionReview, "", false},
		{"approve approved", RequestStatusApproved, ActionApprove, "", false},
		{"cancel approved", RequestStatusApproved, ActionCancel, "", false},
		{"submit rejected", RequestStatusRejected, ActionSubmit, "", false},
		{"approve cancelled", RequestStatusCancelled, ActionApprove, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Transition(tt.from, tt.action)
			if !tt.valid {
				require.Error(t, err)
				var appErr *appErrors.Error
				require.True(t, errors.As(err, &appErr))
				require.Equal(t, appErrors.ErrInvalidTransition.Code, appErr.Code)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, next)
		})
	}
}

func TestTerminalStatusesPermitNothing(t *testing.T) {
	actions := []RequestAction{ActionSubmit, ActionReview, ActionApprove, ActionReject, ActionCancel}
	for _, status := range []RequestStatus{RequestStatusApproved, RequestStatusRejected, RequestStatusCancelled} {
		require.True(t, status.Terminal())
		for _, action := range actions {
			_, err := Transition(status, action)
			require.Error(t, err, "status %s should not permit %s", status, action)
		}
	}
}

func TestActionSources(t *testing.T) {
	require.ElementsMatch(t,
		[]RequestStatus{RequestStatusDraft},
		ActionSources(ActionSubmit))
	require.ElementsMatch(t,
		[]RequestStatus{RequestStatusSubmitted},
		ActionSources(ActionReview))
	require.ElementsMatch(t,
		[]RequestStatus{RequestStatusSubmitted, RequestStatusPendingApproval},
		ActionSources(ActionApprove))
	require.ElementsMatch(t,
		[]RequestStatus{RequestStatusSubmitted, RequestStatusPendingApproval},
		ActionSources(ActionReject))
	require.ElementsMatch(t,
		[]RequestStatus{RequestStatusDraft, RequestStatusSubmitted, RequestStatusPendingApproval},
		ActionSources(ActionCancel))
}

func TestEditableOnlyDraft(t *testing.T) {
	require.True(t, RequestStatusDraft.Editable())
	for _, status := range []RequestStatus{RequestStatusSubmitted, RequestStatusPendingApproval, RequestStatusApproved, RequestStatusRejected, RequestStatusCancelled} {
		require.False(t, status.Editable(), "status %s must not be editable", status)
	}
}

func TestRequestTypeValid(t *testing.T) {
	for _, rt := range RequestTypes {
		require.True(t, rt.Valid())
	}
	require.False(t, RequestType("HOLIDAY").Valid())
	require.False(t, RequestType("").Valid())
}
