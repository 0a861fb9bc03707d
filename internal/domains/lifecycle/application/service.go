package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/livestock-marketplace/internal/domains/lifecycle/ports"
	listingports "github.com/Apurer/livestock-marketplace/internal/domains/listings/ports"
	orderapp "github.com/Apurer/livestock-marketplace/internal/domains/orders/application"
	orderdomain "github.com/Apurer/livestock-marketplace/internal/domains/orders/domain"
	"github.com/Apurer/livestock-marketplace/internal/shared/identity"
)

const reasonSoldElsewhere = "listing sold to another buyer"

// Service applies order lifecycle transitions. Each transition runs inside a
// single transaction; events and outbound payment requests happen after commit.
type Service struct {
	tx           ports.Transactor
	references   ports.PaymentReferenceStore
	gateway      ports.PaymentGateway
	publisher    ports.EventPublisher
	logger       *slog.Logger
	clock        func() time.Time
	newReference func() string
}

type Option func(*Service)

func WithPaymentGateway(gateway ports.PaymentGateway) Option {
	return func(s *Service) {
		if gateway != nil {
			s.gateway = gateway
		}
	}
}

func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithReferenceGenerator(next func() string) Option {
	return func(s *Service) {
		if next != nil {
			s.newReference = next
		}
	}
}

func NewService(tx ports.Transactor, references ports.PaymentReferenceStore, opts ...Option) *Service {
	s := &Service{
		tx:           tx,
		references:   references,
		gateway:      ports.NoopPaymentGateway{},
		publisher:    ports.NoopPublisher{},
		logger:       slog.Default(),
		clock:        time.Now,
		newReference: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder creates a pending_payment order for one listing and issues a
// payment reference. A buyer with a pending order for the same listing gets
// that order back instead of a second one, unless the listing was sold to
// someone else meanwhile: then the order is cancelled and ErrConflict returned.
func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*ports.Checkout, error) {
	buyer, err := requireBuyer(input.Actor)
	if err != nil {
		return nil, err
	}
	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be at least one", ErrInvalidInput)
	}

	var (
		checkout ports.Checkout
		lost     bool
		events   []orderdomain.Event
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, stores ports.Stores) error {
		// The listing row lock serialises concurrent checkouts of one listing.
		listing, err := stores.Listings.GetForUpdate(ctx, input.ListingID)
		if err != nil {
			return err
		}
		store := orderapp.NewStore(stores.Orders, stores.Listings, s.clock)
		existing, err := store.FindPendingOrderForListing(ctx, buyer.AccountID, listing.ID)
		if err != nil {
			return err
		}
		if existing != nil && !listing.IsAvailable() {
			// The pending order already lost the listing.
			lost = true
			order, err := stores.Orders.GetByID(ctx, existing.ID)
			if err != nil {
				return err
			}
			if !order.IsPending() {
				return nil
			}
			if err := order.Cancel(reasonSoldElsewhere, s.clock()); err != nil {
				return err
			}
			if _, err := stores.Orders.Update(ctx, order); err != nil {
				return err
			}
			events = order.Events()
			return nil
		}
		if existing != nil {
			checkout.Order = existing
			checkout.Existing = true
			return nil
		}
		if !listing.IsAvailable() {
			return fmt.Errorf("%w: listing %d is no longer for sale", ErrConflict, listing.ID)
		}
		order, err := store.CreateOrder(ctx, buyer.AccountID,
			[]orderapp.LineRequest{{ListingID: listing.ID, Quantity: quantity}},
			orderdomain.StatusPendingPayment, input.Note)
		if err != nil {
			return err
		}
		checkout.Order = order
		events = append(events, orderdomain.OrderPlaced{
			BaseEvent: orderdomain.BaseEvent{Timestamp: order.CreatedAt},
			OrderID:   order.ID,
			BuyerID:   order.BuyerID,
			Status:    order.Status,
			Total:     order.Total,
		})
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, events...)
	if lost {
		return nil, fmt.Errorf("%w: %s, order cancelled", ErrConflict, reasonSoldElsewhere)
	}

	reference, err := s.issueReference(ctx, checkout.Order)
	if err != nil {
		return nil, err
	}
	checkout.Reference = reference
	return &checkout, nil
}

// CompletePayment applies a payment simulator callback. A failure leaves the
// order untouched. A success claims the order's listings; if another buyer
// already holds one, nothing changes and ErrConflict is returned.
func (s *Service) CompletePayment(ctx context.Context, callback ports.PaymentCallback) (*ports.PaymentResult, error) {
	if callback.Reference == "" {
		return nil, fmt.Errorf("%w: payment reference is required", ErrInvalidInput)
	}
	if callback.Outcome != ports.OutcomeSuccess && callback.Outcome != ports.OutcomeFailure {
		return nil, fmt.Errorf("%w: unknown payment outcome %q", ErrInvalidInput, callback.Outcome)
	}
	ref, err := s.references.Resolve(ctx, callback.Reference)
	if err != nil {
		return nil, mapError(err)
	}
	if callback.Outcome == ports.OutcomeFailure {
		s.publish(ctx, orderdomain.PaymentDeclined{
			BaseEvent: orderdomain.BaseEvent{Timestamp: s.clock().UTC()},
			OrderID:   ref.OrderID,
			BuyerID:   ref.BuyerID,
			Reference: ref.Reference,
		})
		return nil, fmt.Errorf("%w: order %d remains pending", ErrPaymentDeclined, ref.OrderID)
	}

	var (
		result ports.PaymentResult
		events []orderdomain.Event
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, stores ports.Stores) error {
		events = events[:0]
		order, err := stores.Orders.GetByID(ctx, ref.OrderID)
		if err != nil {
			return err
		}
		if !order.OwnedBy(ref.BuyerID) {
			return fmt.Errorf("%w: reference does not belong to order buyer", ErrForbidden)
		}
		if order.IsPaid() {
			result = ports.PaymentResult{Order: order, Duplicate: true}
			return nil
		}
		if order.IsPending() {
			now := s.clock().UTC()
			for _, listingID := range order.ListingIDs() {
				if err := stores.Listings.ClaimForSale(ctx, listingID); err != nil {
					if errors.Is(err, listingports.ErrNotAvailable) {
						return fmt.Errorf("%w: listing %d was sold to another buyer", ErrConflict, listingID)
					}
					return err
				}
				events = append(events, orderdomain.ListingSold{BaseEvent: orderdomain.BaseEvent{Timestamp: now}, ListingID: listingID, OrderID: order.ID})
			}
		}
		if err := order.MarkPaid(ref.Reference, s.clock()); err != nil {
			return err
		}
		saved, err := stores.Orders.Update(ctx, order)
		if err != nil {
			return err
		}
		events = append(events, order.Events()...)
		result = ports.PaymentResult{Order: saved}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, events...)
	return &result, nil
}

// ApproveInquiry lets the listing's farmer accept the order holding lineID.
// The listing is sold to this order; ErrConflict means another order got it first.
func (s *Service) ApproveInquiry(ctx context.Context, actor identity.Actor, lineID int64) (*orderdomain.Order, error) {
	farmer, err := requireFarmer(actor)
	if err != nil {
		return nil, err
	}
	return s.decideInquiry(ctx, farmer, lineID, func(ctx context.Context, stores ports.Stores, order *orderdomain.Order, line orderdomain.Line) ([]orderdomain.Event, error) {
		if err := stores.Listings.ClaimForSale(ctx, line.ListingID); err != nil {
			if errors.Is(err, listingports.ErrNotAvailable) {
				return nil, fmt.Errorf("%w: listing %d is already sold", ErrConflict, line.ListingID)
			}
			return nil, err
		}
		if err := order.Confirm(s.clock()); err != nil {
			return nil, err
		}
		sold := orderdomain.ListingSold{BaseEvent: orderdomain.BaseEvent{Timestamp: s.clock().UTC()}, ListingID: line.ListingID, OrderID: order.ID}
		return []orderdomain.Event{sold}, nil
	})
}

// RejectInquiry lets the listing's farmer cancel the order holding lineID.
// The listing stays on the market.
func (s *Service) RejectInquiry(ctx context.Context, actor identity.Actor, lineID int64) (*orderdomain.Order, error) {
	farmer, err := requireFarmer(actor)
	if err != nil {
		return nil, err
	}
	return s.decideInquiry(ctx, farmer, lineID, func(_ context.Context, _ ports.Stores, order *orderdomain.Order, _ orderdomain.Line) ([]orderdomain.Event, error) {
		return nil, order.Cancel("rejected by farmer", s.clock())
	})
}

type inquiryDecision func(ctx context.Context, stores ports.Stores, order *orderdomain.Order, line orderdomain.Line) ([]orderdomain.Event, error)

func (s *Service) decideInquiry(ctx context.Context, farmer identity.Farmer, lineID int64, decide inquiryDecision) (*orderdomain.Order, error) {
	var (
		saved  *orderdomain.Order
		events []orderdomain.Event
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, stores ports.Stores) error {
		order, err := stores.Orders.GetByLineID(ctx, lineID)
		if err != nil {
			return err
		}
		line, err := order.Line(lineID)
		if err != nil {
			return err
		}
		listing, err := stores.Listings.GetByID(ctx, line.ListingID)
		if err != nil {
			return err
		}
		if !listing.OwnedBy(farmer.AccountID) {
			return fmt.Errorf("%w: listing %d belongs to another farmer", ErrForbidden, listing.ID)
		}
		if order.IsTerminal() {
			return fmt.Errorf("%w: order %d is %s", ErrInvalidState, order.ID, order.Status)
		}
		extra, err := decide(ctx, stores, order, line)
		if err != nil {
			return err
		}
		saved, err = stores.Orders.Update(ctx, order)
		if err != nil {
			return err
		}
		events = append(extra, order.Events()...)
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, events...)
	return saved, nil
}

// RetryPayment re-issues a payment reference for a pending order. When a
// listing on the order was sold to someone else meanwhile, the order is
// cancelled, the cancellation is committed and ErrConflict is returned.
func (s *Service) RetryPayment(ctx context.Context, actor identity.Actor, orderID int64) (*ports.Checkout, error) {
	buyer, err := requireBuyer(actor)
	if err != nil {
		return nil, err
	}

	var (
		checkout ports.Checkout
		lost     bool
		events   []orderdomain.Event
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, stores ports.Stores) error {
		store := orderapp.NewStore(stores.Orders, stores.Listings, s.clock)
		order, err := store.GetOrder(ctx, orderID, buyer.AccountID)
		if err != nil {
			return err
		}
		if order.IsPaid() {
			checkout = ports.Checkout{Order: order, AlreadyPaid: true}
			return nil
		}
		if order.Status == orderdomain.StatusCancelled || order.Status == orderdomain.StatusCompleted {
			return fmt.Errorf("%w: order %d is %s", ErrInvalidState, order.ID, order.Status)
		}
		if order.IsPending() {
			for _, listingID := range order.ListingIDs() {
				listing, err := stores.Listings.GetByID(ctx, listingID)
				if err != nil {
					return err
				}
				if listing.IsAvailable() {
					continue
				}
				if err := order.Cancel(reasonSoldElsewhere, s.clock()); err != nil {
					return err
				}
				saved, err := stores.Orders.Update(ctx, order)
				if err != nil {
					return err
				}
				events = order.Events()
				checkout = ports.Checkout{Order: saved}
				lost = true
				return nil
			}
		}
		checkout = ports.Checkout{Order: order}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	if lost {
		s.publish(ctx, events...)
		return nil, fmt.Errorf("%w: %s, order %d cancelled", ErrConflict, reasonSoldElsewhere, orderID)
	}
	if checkout.AlreadyPaid {
		return &checkout, nil
	}
	reference, err := s.issueReference(ctx, checkout.Order)
	if err != nil {
		return nil, err
	}
	checkout.Reference = reference
	return &checkout, nil
}

func (s *Service) issueReference(ctx context.Context, order *orderdomain.Order) (string, error) {
	ref := ports.PaymentReference{
		Reference: s.newReference(),
		OrderID:   order.ID,
		BuyerID:   order.BuyerID,
		IssuedAt:  s.clock().UTC(),
	}
	if err := s.references.Save(ctx, ref); err != nil {
		return "", fmt.Errorf("store payment reference: %w", err)
	}
	err := s.gateway.RequestPayment(ctx, ports.PaymentRequest{Reference: ref.Reference, OrderID: order.ID, Amount: order.Total})
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "payment simulator request failed",
			slog.String("payment.reference", ref.Reference),
			slog.Int64("order.id", order.ID),
			slog.String("error", err.Error()))
	}
	return ref.Reference, nil
}

func (s *Service) publish(ctx context.Context, events ...orderdomain.Event) {
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish lifecycle events",
			slog.Int("events.count", len(events)),
			slog.String("error", err.Error()))
	}
}

func requireBuyer(actor identity.Actor) (identity.Buyer, error) {
	switch a := actor.(type) {
	case identity.Buyer:
		return a, nil
	case identity.Farmer:
		return identity.Buyer{}, fmt.Errorf("%w: only buyers can order and pay", ErrForbidden)
	default:
		return identity.Buyer{}, ErrUnauthenticated
	}
}

func requireFarmer(actor identity.Actor) (identity.Farmer, error) {
	switch a := actor.(type) {
	case identity.Farmer:
		return a, nil
	case identity.Buyer:
		return identity.Farmer{}, fmt.Errorf("%w: only farmers can decide inquiries", ErrForbidden)
	default:
		return identity.Farmer{}, ErrUnauthenticated
	}
}

var _ ports.Service = (*Service)(nil)
