// Package checkout owns order creation and the order state machine, and
// triggers stock processing exactly once when a sale is confirmed.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/tiendaviva/tienda/internal/domain"
	"github.com/tiendaviva/tienda/internal/store"
	"github.com/tiendaviva/tienda/pkg/common"
	"github.com/tiendaviva/tienda/pkg/metrics"
	"go.uber.org/zap"
)

// TopicOrderConfirmed fires once per order, on the transition into the
// sale-confirmed state
const TopicOrderConfirmed = "order.confirmed"

var (
	ErrEmptyOrder        = errors.New("order has no items")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// OrderRepository handles order persistence
type OrderRepository interface {
	Insert(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// Notifier fans out order notifications (email, webhook)
type Notifier interface {
	NotifyOrderConfirmed(order *domain.Order)
}

// Service creates orders and drives their lifecycle:
// pending_payment -> processing -> completed, with cancelled reachable from
// either of the first two states. Entering processing publishes
// TopicOrderConfirmed, whose subscriber commits the stock reduction; the
// processor itself carries no idempotency guard, the state machine is what
// makes the trigger fire once.
type Service struct {
	orders    OrderRepository
	processor *store.OrderStockProcessor
	bus       EventBus.Bus
	notifier  Notifier
}

func NewService(orders OrderRepository, processor *store.OrderStockProcessor, bus EventBus.Bus) *Service {
	s := &Service{orders: orders, processor: processor, bus: bus}
	if err := bus.Subscribe(TopicOrderConfirmed, s.onOrderConfirmed); err != nil {
		zap.L().Error("order.confirmed subscription failed", zap.Error(err))
	}
	return s
}

// WithNotifier attaches the notification fan-out
func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

// VerifyStock runs the read-only stock verification for checkout feedback
func (s *Service) VerifyStock(ctx context.Context, items []domain.OrderItem) store.StockCheck {
	return s.processor.VerifyOrderStock(ctx, items)
}

// CreateOrder snapshots the given line items into a new pending-payment
// order
func (s *Service) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if len(order.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range order.Items {
		if item.Quantity < 1 {
			return nil, errors.Errorf("line item %s has quantity %d", item.Name, item.Quantity)
		}
	}

	total := 0.0
	for _, item := range order.Items {
		total += item.Price * float64(item.Quantity)
	}

	now := time.Now()
	order.ID = common.UUIDint64()
	order.OrderNumber = fmt.Sprintf("TV-%s-%04d", now.Format("20060102"), order.ID%10000)
	order.Total = total
	order.Status = domain.OrderStatusPendingPayment
	order.CreatedAt = now
	order.UpdatedAt = now

	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, errors.Wrap(err, "insert order")
	}
	metrics.Counter(metrics.OrdersCreated)
	zap.L().Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.Float64("total", order.Total),
		zap.Int("items", len(order.Items)))
	return order, nil
}

// TransitionStatus moves an order along its lifecycle, rejecting anything
// the state machine does not allow
func (s *Service) TransitionStatus(ctx context.Context, orderID int64, to string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "order %d", orderID)
	}
	if !domain.CanTransition(order.Status, to) {
		return nil, errors.Wrapf(ErrInvalidTransition, "%s -> %s", order.Status, to)
	}
	if err := s.orders.UpdateStatus(ctx, orderID, to); err != nil {
		return nil, errors.Wrap(err, "update order status")
	}
	order.Status = to

	if to == domain.OrderStatusProcessing {
		s.bus.Publish(TopicOrderConfirmed, order)
	}
	return order, nil
}

// onOrderConfirmed commits the stock reduction for the confirmed sale and
// fans out notifications. Reduction failures surface only as the coarse
// batch boolean; the order keeps moving regardless.
func (s *Service) onOrderConfirmed(order *domain.Order) {
	if ok := s.processor.ProcessOrderStock(context.Background(), order.Items); !ok {
		zap.L().Warn("stock update had a problem",
			zap.String("order_number", order.OrderNumber))
	}
	if s.notifier != nil {
		s.notifier.NotifyOrderConfirmed(order)
	}
}
