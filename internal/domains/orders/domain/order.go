package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates order progression.
type Status string

const (
	StatusPendingInquiry Status = "pending_inquiry"
	StatusPendingPayment Status = "pending_payment"
	StatusConfirmed      Status = "confirmed"
	StatusCancelled      Status = "cancelled"
	StatusCompleted      Status = "completed"
)

// PaymentStatus tracks settlement independently of the order status.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

var (
	ErrInvalidBuyer       = errors.New("buyer id must be greater than zero")
	ErrInvalidListing     = errors.New("listing id must be greater than zero")
	ErrInvalidQuantity    = errors.New("quantity must be at least one")
	ErrInvalidUnitPrice   = errors.New("unit price must be greater than zero")
	ErrNoLines            = errors.New("order requires at least one line")
	ErrInvalidStatus      = errors.New("order status is invalid")
	ErrTerminalState      = errors.New("order is in a terminal state")
	ErrInvalidTransition  = errors.New("order status transition not allowed")
	ErrAlreadyPaid        = errors.New("order is already paid")
	ErrPaidWithoutConfirm = errors.New("paid order must be confirmed or completed")
	ErrNotOwner           = errors.New("order belongs to another buyer")
	ErrLineNotFound       = errors.New("order line not found")
)

// transitions lists the statuses reachable from each non-terminal status.
var transitions = map[Status][]Status{
	StatusPendingInquiry: {StatusPendingPayment, StatusConfirmed, StatusCancelled},
	StatusPendingPayment: {StatusConfirmed, StatusCancelled},
}

// Line is one listing within an order. UnitPrice is captured when the order
// is created and never recomputed.
type Line struct {
	ID        int64
	OrderID   int64
	ListingID int64
	Quantity  int32
	UnitPrice decimal.Decimal
}

// Subtotal returns unit price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt32(l.Quantity))
}

// LineDraft describes a line before it is persisted.
type LineDraft struct {
	ListingID int64
	Quantity  int32
	UnitPrice decimal.Decimal
}

// Order is the purchase aggregate.
type Order struct {
	ID            int64
	BuyerID       int64
	Status        Status
	PaymentStatus PaymentStatus
	Total         decimal.Decimal
	Note          string
	Lines         []Line
	CreatedAt     time.Time
	UpdatedAt     time.Time

	events []Event
}

// NewOrder validates lines and computes the total from their price snapshots.
func NewOrder(buyerID int64, status Status, note string, drafts []LineDraft, now time.Time) (*Order, error) {
	if buyerID <= 0 {
		return nil, ErrInvalidBuyer
	}
	if status != StatusPendingInquiry && status != StatusPendingPayment {
		return nil, fmt.Errorf("%w: new orders start pending, got %q", ErrInvalidStatus, status)
	}
	if len(drafts) == 0 {
		return nil, ErrNoLines
	}
	order := &Order{
		BuyerID:       buyerID,
		Status:        status,
		PaymentStatus: PaymentPending,
		Note:          strings.TrimSpace(note),
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
	total := decimal.Zero
	for _, d := range drafts {
		line := Line{ListingID: d.ListingID, Quantity: d.Quantity, UnitPrice: d.UnitPrice}
		if err := line.validate(); err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, line)
		total = total.Add(line.Subtotal())
	}
	order.Total = total
	return order, nil
}

func (l Line) validate() error {
	if l.ListingID <= 0 {
		return ErrInvalidListing
	}
	if l.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if !l.UnitPrice.IsPositive() {
		return ErrInvalidUnitPrice
	}
	return nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if o.BuyerID <= 0 {
		return ErrInvalidBuyer
	}
	if !isValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	if len(o.Lines) == 0 {
		return ErrNoLines
	}
	for _, line := range o.Lines {
		if err := line.validate(); err != nil {
			return err
		}
	}
	if o.PaymentStatus == PaymentPaid && o.Status != StatusConfirmed && o.Status != StatusCompleted {
		return ErrPaidWithoutConfirm
	}
	return nil
}

// IsTerminal reports whether no further status transition is allowed.
func (o *Order) IsTerminal() bool {
	return IsTerminal(o.Status)
}

// IsPending reports whether the order still awaits approval or payment.
func (o *Order) IsPending() bool {
	return IsPendingStatus(o.Status)
}

// IsPaid reports whether payment has settled.
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentPaid
}

// Supersedes reports whether writing o over stored is a legal step. Only an
// unpaid order changes; a confirmed one may only be paid, so a stale pending
// copy can never undo a confirmation or revive a cancelled order.
func (o *Order) Supersedes(stored *Order) bool {
	if stored.IsPaid() {
		return false
	}
	for _, from := range UpdatableFrom(o.Status) {
		if stored.Status == from {
			return true
		}
	}
	return false
}

// UpdatableFrom lists the stored statuses a write with status next may replace.
func UpdatableFrom(next Status) []Status {
	from := []Status{StatusPendingInquiry, StatusPendingPayment}
	if next == StatusConfirmed || next == StatusCompleted {
		from = append(from, StatusConfirmed)
	}
	return from
}

// OwnedBy reports whether buyerID placed the order.
func (o *Order) OwnedBy(buyerID int64) bool {
	return o.BuyerID == buyerID
}

// Line returns the line with the given id.
func (o *Order) Line(lineID int64) (Line, error) {
	for _, line := range o.Lines {
		if line.ID == lineID {
			return line, nil
		}
	}
	return Line{}, ErrLineNotFound
}

// ListingIDs returns the listings referenced by the order lines.
func (o *Order) ListingIDs() []int64 {
	ids := make([]int64, 0, len(o.Lines))
	for _, line := range o.Lines {
		ids = append(ids, line.ListingID)
	}
	return ids
}

// Confirm moves a pending order to confirmed.
func (o *Order) Confirm(now time.Time) error {
	if err := o.transition(StatusConfirmed, now); err != nil {
		return err
	}
	o.record(OrderConfirmed{BaseEvent: BaseEvent{Timestamp: o.UpdatedAt}, OrderID: o.ID, BuyerID: o.BuyerID})
	return nil
}

// Cancel moves a pending order to cancelled. Listings are left untouched.
func (o *Order) Cancel(reason string, now time.Time) error {
	if err := o.transition(StatusCancelled, now); err != nil {
		return err
	}
	o.record(OrderCancelled{BaseEvent: BaseEvent{Timestamp: o.UpdatedAt}, OrderID: o.ID, BuyerID: o.BuyerID, Reason: reason})
	return nil
}

// MarkPaid settles payment. A pending order is confirmed on the way; an
// order a farmer already confirmed only changes its payment status.
func (o *Order) MarkPaid(reference string, now time.Time) error {
	if o.IsPaid() {
		return ErrAlreadyPaid
	}
	switch {
	case o.IsPending():
		if err := o.transition(StatusConfirmed, now); err != nil {
			return err
		}
	case o.Status == StatusConfirmed:
	default:
		return fmt.Errorf("%w: cannot pay order in status %q", ErrTerminalState, o.Status)
	}
	o.PaymentStatus = PaymentPaid
	o.UpdatedAt = now.UTC()
	o.record(PaymentCaptured{BaseEvent: BaseEvent{Timestamp: o.UpdatedAt}, OrderID: o.ID, BuyerID: o.BuyerID, Reference: reference, Amount: o.Total})
	return nil
}

func (o *Order) transition(to Status, now time.Time) error {
	if o.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrTerminalState, o.Status)
	}
	for _, allowed := range transitions[o.Status] {
		if allowed == to {
			o.Status = to
			o.UpdatedAt = now.UTC()
			return nil
		}
	}
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, o.Status, to)
}

// Summary returns the order header without its lines.
func (o *Order) Summary() Summary {
	return Summary{
		ID:            o.ID,
		BuyerID:       o.BuyerID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Total:         o.Total,
		CreatedAt:     o.CreatedAt,
	}
}

// Clone returns a deep copy without pending events.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Lines = append([]Line(nil), o.Lines...)
	clone.events = nil
	return &clone
}

// Events returns domain events recorded since the last ClearEvents.
func (o *Order) Events() []Event {
	return append([]Event(nil), o.events...)
}

// ClearEvents drops recorded events.
func (o *Order) ClearEvents() {
	o.events = nil
}

func (o *Order) record(event Event) {
	o.events = append(o.events, event)
}

// IsTerminal reports whether status admits no further transition.
func IsTerminal(status Status) bool {
	switch status {
	case StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsPendingStatus reports whether status still awaits approval or payment.
func IsPendingStatus(status Status) bool {
	return status == StatusPendingInquiry || status == StatusPendingPayment
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusPendingInquiry, StatusPendingPayment, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// Summary is the order header used when joining lines to their parent order.
type Summary struct {
	ID            int64
	BuyerID       int64
	Status        Status
	PaymentStatus PaymentStatus
	Total         decimal.Decimal
	CreatedAt     time.Time
}

// SaleLine pairs an order line with its parent order for the farmer's sales queue.
type SaleLine struct {
	Line  Line
	Order Summary
}
