package usecase

import (
	"rental-booking/internal/data/entity"
	"rental-booking/pkg/apperror"
)

type RefundAction string

const (
	ActionStartReview RefundAction = "start_review"
	ActionApprove     RefundAction = "approve"
	ActionReject      RefundAction = "reject"
	ActionProcess     RefundAction = "process"
	ActionComplete    RefundAction = "complete"
	ActionFail        RefundAction = "fail"
	ActionWithdraw    RefundAction = "withdraw"
)

type transitionActor int

const (
	// property admins, platform admins and operators
	actorManager transitionActor = iota
	// only the guest who requested the refund
	actorRequester
)

type transitionRule struct {
	from  []entity.RefundStatus
	to    entity.RefundStatus
	actor transitionActor
}

var refundTransitions = map[RefundAction]transitionRule{
	ActionStartReview: {
		from:  []entity.RefundStatus{entity.RefundStatusRequested},
		to:    entity.RefundStatusUnderReview,
		actor: actorManager,
	},
	ActionApprove: {
		from:  []entity.RefundStatus{entity.RefundStatusRequested, entity.RefundStatusUnderReview},
		to:    entity.RefundStatusApproved,
		actor: actorManager,
	},
	ActionReject: {
		from:  []entity.RefundStatus{entity.RefundStatusRequested, entity.RefundStatusUnderReview},
		to:    entity.RefundStatusRejected,
		actor: actorManager,
	},
	ActionProcess: {
		from:  []entity.RefundStatus{entity.RefundStatusApproved},
		to:    entity.RefundStatusProcessing,
		actor: actorManager,
	},
	ActionComplete: {
		from:  []entity.RefundStatus{entity.RefundStatusProcessing},
		to:    entity.RefundStatusCompleted,
		actor: actorManager,
	},
	ActionFail: {
		from:  []entity.RefundStatus{entity.RefundStatusProcessing},
		to:    entity.RefundStatusFailed,
		actor: actorManager,
	},
	ActionWithdraw: {
		from:  []entity.RefundStatus{entity.RefundStatusRequested, entity.RefundStatusUnderReview, entity.RefundStatusApproved},
		to:    entity.RefundStatusWithdrawn,
		actor: actorRequester,
	},
}

// nextStatus returns the target status of action from current, or an
// InvalidStateTransition error. Terminal states never move.
func nextStatus(action RefundAction, current entity.RefundStatus) (entity.RefundStatus, error) {
	rule, ok := refundTransitions[action]
	if !ok {
		return "", apperror.InvalidTransition(string(current), string(action))
	}

	if current.IsTerminal() {
		return "", apperror.InvalidTransition(string(current), string(rule.to))
	}

	for _, from := range rule.from {
		if from == current {
			return rule.to, nil
		}
	}
	return "", apperror.InvalidTransition(string(current), string(rule.to))
}

// authorizeTransition checks the actor's role for action.
func authorizeTransition(action RefundAction, access *refundAccess) error {
	rule, ok := refundTransitions[action]
	if !ok {
		return apperror.Permission("unknown refund action")
	}

	switch rule.actor {
	case actorRequester:
		if !access.isGuest {
			return apperror.Permission("only the requesting guest can " + string(action) + " this refund")
		}
	default:
		if !access.isManager {
			return apperror.Permission("only property administrators can " + string(action) + " refunds")
		}
	}
	return nil
}
