package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/pharmalink/backend/internal/domain/shared"
)

// TrackingStatus is a delivery-progress state. The happy path runs
// PENDING -> ACCEPTED -> READY_TO_DELIVER -> ON_THE_WAY -> a delivery
// terminal; IN_QUEUE is the alternate entry for next-day queueing orders,
// and REJECTED/CANCELLED terminate any non-terminal order that has not yet
// gone on the way. An order already ON_THE_WAY can only finish delivery or
// be pulled back to an earlier state, which reverses its stock decrement.
type TrackingStatus string

const (
	TrackingInQueue          TrackingStatus = "IN_QUEUE"
	TrackingPending          TrackingStatus = "PENDING"
	TrackingAccepted         TrackingStatus = "ACCEPTED"
	TrackingReadyToDeliver   TrackingStatus = "READY_TO_DELIVER"
	TrackingOnTheWay         TrackingStatus = "ON_THE_WAY"
	TrackingDelivered        TrackingStatus = "DELIVERED"
	TrackingPartialDelivered TrackingStatus = "PARTIAL_DELIVERED"
	TrackingFullReturned     TrackingStatus = "FULL_RETURNED"
	TrackingCompleted        TrackingStatus = "COMPLETED"
	TrackingRejected         TrackingStatus = "REJECTED"
	TrackingCancelled        TrackingStatus = "CANCELLED"
)

// IsValid returns true for a known tracking status
func (s TrackingStatus) IsValid() bool {
	switch s {
	case TrackingInQueue, TrackingPending, TrackingAccepted, TrackingReadyToDeliver,
		TrackingOnTheWay, TrackingDelivered, TrackingPartialDelivered,
		TrackingFullReturned, TrackingCompleted, TrackingRejected, TrackingCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s TrackingStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further tracking events may follow
func (s TrackingStatus) IsTerminal() bool {
	switch s {
	case TrackingDelivered, TrackingPartialDelivered, TrackingFullReturned,
		TrackingCompleted, TrackingRejected, TrackingCancelled:
		return true
	}
	return false
}

// IsInFlight reports whether the order holds an orderable-stock reservation
func (s TrackingStatus) IsInFlight() bool {
	switch s {
	case TrackingInQueue, TrackingPending, TrackingAccepted, TrackingReadyToDeliver, TrackingOnTheWay:
		return true
	}
	return false
}

// CanTransitionTo validates a transition out of s
func (s TrackingStatus) CanTransitionTo(target TrackingStatus) bool {
	if s.IsTerminal() || s == target {
		return false
	}
	switch s {
	case TrackingInQueue:
		switch target {
		case TrackingPending, TrackingAccepted, TrackingRejected, TrackingCancelled:
			return true
		}
	case TrackingPending:
		switch target {
		case TrackingAccepted, TrackingReadyToDeliver, TrackingOnTheWay,
			TrackingRejected, TrackingCancelled:
			return true
		}
	case TrackingAccepted:
		switch target {
		case TrackingReadyToDeliver, TrackingOnTheWay, TrackingRejected, TrackingCancelled:
			return true
		}
	case TrackingReadyToDeliver:
		switch target {
		case TrackingOnTheWay, TrackingRejected, TrackingCancelled:
			return true
		}
	case TrackingOnTheWay:
		switch target {
		case TrackingDelivered, TrackingPartialDelivered, TrackingFullReturned, TrackingCompleted,
			TrackingInQueue, TrackingPending, TrackingAccepted, TrackingReadyToDeliver:
			return true
		}
	}
	return false
}

// ReversesOnTheWay reports whether moving from ON_THE_WAY to this status
// pulls the order back and must reverse the on-the-way stock decrement.
func (s TrackingStatus) ReversesOnTheWay() bool {
	switch s {
	case TrackingInQueue, TrackingPending, TrackingAccepted, TrackingReadyToDeliver:
		return true
	}
	return false
}

// ReservingStatuses lists the tracking statuses whose attached movements
// still count against orderable stock. ON_THE_WAY is absent: dispatch has
// already taken its quantity out of the published ecom stock.
func ReservingStatuses() []string {
	return []string{
		TrackingPending.String(),
		TrackingAccepted.String(),
		TrackingReadyToDeliver.String(),
	}
}

// QueueingReservingStatuses is the narrower list for queueing (delayed)
// orders, which hold no reservation while ACCEPTED.
func QueueingReservingStatuses() []string {
	return []string{
		TrackingPending.String(),
		TrackingReadyToDeliver.String(),
	}
}

// TrackingEvent is one entry in an order's append-only tracking history. The
// order's current status is always the status of its latest event.
type TrackingEvent struct {
	shared.BaseEntity
	TenantID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	OrderID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_tracking_order_seq,priority:1"`
	Sequence      int64          `gorm:"not null;index:idx_tracking_order_seq,priority:2"`
	Status        TrackingStatus `gorm:"type:varchar(30);not null"`
	FailureReason string         `gorm:"type:text"`
	RecordedAt    time.Time      `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (TrackingEvent) TableName() string {
	return "order_tracking_events"
}

// NewTrackingEvent creates a tracking event for an order. Sequence is assigned
// by the repository at append time.
func NewTrackingEvent(tenantID, orderID uuid.UUID, status TrackingStatus, failureReason string) (*TrackingEvent, error) {
	if tenantID == uuid.Nil || orderID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Tenant and order are required")
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invalid tracking status")
	}
	return &TrackingEvent{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		OrderID:       orderID,
		Status:        status,
		FailureReason: failureReason,
		RecordedAt:    time.Now(),
	}, nil
}
