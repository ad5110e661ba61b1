package models

// LifecycleEvent is an action that moves an article between statuses
type LifecycleEvent string

const (
	EventSave    LifecycleEvent = "save"
	EventSubmit  LifecycleEvent = "submit"
	EventPublish LifecycleEvent = "publish"
	EventApprove LifecycleEvent = "approve"
	EventReject  LifecycleEvent = "reject"
	EventHide    LifecycleEvent = "hide"
	EventUnhide  LifecycleEvent = "unhide"
	EventDelete  LifecycleEvent = "delete"
)

var transitions = map[BlogStatus]map[LifecycleEvent]BlogStatus{
	StatusDraft: {
		EventSave:    StatusDraft,
		EventSubmit:  StatusPendingReview,
		EventPublish: StatusPublished,
		EventDelete:  StatusDeleted,
	},
	StatusPendingReview: {
		EventApprove: StatusPublished,
		EventReject:  StatusRejected,
		EventDelete:  StatusDeleted,
	},
	StatusPublished: {
		EventHide:   StatusHidden,
		EventDelete: StatusDeleted,
	},
	StatusRejected: {
		EventSave:   StatusDraft,
		EventDelete: StatusDeleted,
	},
	StatusHidden: {
		EventUnhide: StatusPublished,
		EventDelete: StatusDeleted,
	},
}

// Next returns the status reached by applying ev, and false when the
// event is not allowed from s. DELETED has no outgoing transitions.
func (s BlogStatus) Next(ev LifecycleEvent) (BlogStatus, bool) {
	next, ok := transitions[s][ev]
	return next, ok
}

// IsValid reports whether s is a known status
func (s BlogStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusPublished, StatusRejected, StatusHidden, StatusDeleted:
		return true
	}
	return false
}
