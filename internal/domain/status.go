package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a status change would move backwards
// or leave a terminal state.
var ErrInvalidTransition = errors.New("invalid status transition")

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestContacted RequestStatus = "contacted"
	RequestScheduled RequestStatus = "scheduled"
	RequestCompleted RequestStatus = "completed"
	RequestCancelled RequestStatus = "cancelled"
)

// requestOrder is the forward path; cancelled sits outside it.
var requestOrder = map[RequestStatus]int{
	RequestPending:   0,
	RequestContacted: 1,
	RequestScheduled: 2,
	RequestCompleted: 3,
}

func (s RequestStatus) Valid() bool {
	_, ok := requestOrder[s]
	return ok || s == RequestCancelled
}

func (s RequestStatus) Terminal() bool {
	return s == RequestCompleted || s == RequestCancelled
}

// CanTransition reports whether a request may move from s to next.
// Requests only move forward; any open request may be cancelled.
func (s RequestStatus) CanTransition(next RequestStatus) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	if next == RequestCancelled {
		return true
	}
	return requestOrder[next] > requestOrder[s]
}

// Next lists the statuses reachable from s in one step.
func (s RequestStatus) Next() []RequestStatus {
	var out []RequestStatus
	for _, c := range []RequestStatus{RequestContacted, RequestScheduled, RequestCompleted, RequestCancelled} {
		if s.CanTransition(c) {
			out = append(out, c)
		}
	}
	return out
}

// TransitionRequest validates a status change and returns a descriptive error.
func TransitionRequest(from, to RequestStatus) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("request %s -> %s: %w", from, to, ErrInvalidTransition)
	}
	return nil
}

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return true
	}
	return false
}

// CanTransition: pending reviews are approved or rejected once.
func (s ReviewStatus) CanTransition(next ReviewStatus) bool {
	return s == ReviewPending && (next == ReviewApproved || next == ReviewRejected)
}

func TransitionReview(from, to ReviewStatus) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("review %s -> %s: %w", from, to, ErrInvalidTransition)
	}
	return nil
}
