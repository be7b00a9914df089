package order

import (
	"strings"

	"github.com/wichananm65/cod-storefront/internal/apperror"
)

type Status string

const (
	StatusRequested Status = "requested"
	StatusShipping  Status = "shipping"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusRequested, StatusShipping, StatusDelivered, StatusCancelled}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if st == known {
			return st, nil
		}
	}
	return "", apperror.Invalid("status", "unknown status "+s)
}

// Terminal reports whether no action can leave s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type Action string

const (
	ActionDispatch Action = "dispatch"
	ActionDeliver  Action = "deliver"
	ActionCancel   Action = "cancel"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionDispatch, ActionDeliver, ActionCancel:
		return a, nil
	}
	return "", apperror.Invalid("action", "unknown action "+s)
}

var transitions = map[Status]map[Action]Status{
	StatusRequested: {
		ActionDispatch: StatusShipping,
		ActionCancel:   StatusCancelled,
	},
	StatusShipping: {
		ActionDeliver: StatusDelivered,
	},
}

// Next returns the status reached by applying a to from.
func Next(from Status, a Action) (Status, error) {
	if to, ok := transitions[from][a]; ok {
		return to, nil
	}
	return from, &apperror.InvalidTransitionError{From: string(from), Action: string(a)}
}

// Actions returns the actions allowed from s.
func Actions(s Status) []Action {
	out := make([]Action, 0, 2)
	for _, a := range []Action{ActionDispatch, ActionDeliver, ActionCancel} {
		if _, ok := transitions[s][a]; ok {
			out = append(out, a)
		}
	}
	return out
}
