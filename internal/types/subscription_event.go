package types

import (
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionEventKind is the kind of a subscription lifecycle event
type SubscriptionEventKind string

const (
	SubscriptionEventCreate          SubscriptionEventKind = "create"
	SubscriptionEventTransfer        SubscriptionEventKind = "transfer"
	SubscriptionEventChange          SubscriptionEventKind = "change"
	SubscriptionEventCancel          SubscriptionEventKind = "cancel"
	SubscriptionEventUncancel        SubscriptionEventKind = "uncancel"
	SubscriptionEventUndoChange      SubscriptionEventKind = "undo_change"
	SubscriptionEventPhaseTransition SubscriptionEventKind = "phase_transition"
	SubscriptionEventBcdUpdate       SubscriptionEventKind = "bcd_update"
	SubscriptionEventRecreate        SubscriptionEventKind = "recreate"
)

var SubscriptionEventKindValues = []SubscriptionEventKind{
	SubscriptionEventCreate,
	SubscriptionEventTransfer,
	SubscriptionEventChange,
	SubscriptionEventCancel,
	SubscriptionEventUncancel,
	SubscriptionEventUndoChange,
	SubscriptionEventPhaseTransition,
	SubscriptionEventBcdUpdate,
	SubscriptionEventRecreate,
}

func (k SubscriptionEventKind) String() string {
	return string(k)
}

func (k SubscriptionEventKind) Validate() error {
	if !lo.Contains(SubscriptionEventKindValues, k) {
		return ierr.NewError("invalid subscription event kind").
			WithHint("Invalid subscription event kind").
			WithReportableDetails(map[string]any{
				"kind":           k,
				"allowed_values": SubscriptionEventKindValues,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsOperationMarker reports whether the kind only records that another
// event was superseded. Markers deactivate their target and are never
// part of the replayed active set.
func (k SubscriptionEventKind) IsOperationMarker() bool {
	return k == SubscriptionEventUncancel || k == SubscriptionEventUndoChange
}

// IsStarting reports whether the kind opens an active segment on replay.
func (k SubscriptionEventKind) IsStarting() bool {
	return k == SubscriptionEventCreate ||
		k == SubscriptionEventTransfer ||
		k == SubscriptionEventRecreate
}

// SubscriptionEventFilter selects which active events a read returns
// relative to an as-of time.
type SubscriptionEventFilter string

const (
	// SubscriptionEventFilterAll returns every active event
	SubscriptionEventFilterAll SubscriptionEventFilter = "all"
	// SubscriptionEventFilterFuture returns active events strictly after the as-of time
	SubscriptionEventFilterFuture SubscriptionEventFilter = "future"
	// SubscriptionEventFilterFutureOrPresent returns active events at or after the as-of time
	SubscriptionEventFilterFutureOrPresent SubscriptionEventFilter = "future_or_present"
)

func (f SubscriptionEventFilter) Validate() error {
	allowed := []SubscriptionEventFilter{
		SubscriptionEventFilterAll,
		SubscriptionEventFilterFuture,
		SubscriptionEventFilterFutureOrPresent,
	}
	if !lo.Contains(allowed, f) {
		return ierr.NewError("invalid subscription event filter").
			WithHint("Invalid subscription event filter").
			WithReportableDetails(map[string]any{
				"filter":         f,
				"allowed_values": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
