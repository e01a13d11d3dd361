package checkout

import (
	"fmt"

	"github.com/guonaihong/gout"
	"github.com/panjf2000/ants/v2"
	"github.com/tiendaviva/tienda/config"
	"github.com/tiendaviva/tienda/internal/domain"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// OrderNotifier delivers confirmation email and webhook calls through a
// shared worker pool so checkout never waits on outbound I/O.
type OrderNotifier struct {
	cfg  *config.AppConfig
	pool *ants.Pool
}

func NewOrderNotifier(cfg *config.AppConfig) (*OrderNotifier, error) {
	workers := cfg.Notify.Workers
	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	return &OrderNotifier{cfg: cfg, pool: pool}, nil
}

// NotifyOrderConfirmed queues the email and webhook deliveries for a
// confirmed order. Delivery failures are logged, never propagated.
func (n *OrderNotifier) NotifyOrderConfirmed(order *domain.Order) {
	if n.cfg.Smtp.Enable && order.CustomerEmail != "" {
		o := order
		if err := n.pool.Submit(func() { n.sendOrderEmail(o) }); err != nil {
			zap.L().Warn("notify pool rejected email task", zap.Error(err))
		}
	}
	if n.cfg.Notify.Enable && n.cfg.Notify.WebhookURL != "" {
		o := order
		if err := n.pool.Submit(func() { n.sendOrderWebhook(o) }); err != nil {
			zap.L().Warn("notify pool rejected webhook task", zap.Error(err))
		}
	}
}

func (n *OrderNotifier) sendOrderEmail(order *domain.Order) {
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.Smtp.From)
	m.SetHeader("To", order.CustomerEmail)
	m.SetHeader("Subject", fmt.Sprintf("Tu pedido %s fue confirmado", order.OrderNumber))
	m.SetBody("text/plain", fmt.Sprintf(
		"Hola %s,\n\nTu pedido %s fue confirmado. Total: $%.2f.\n\nGracias por tu compra.",
		order.CustomerName, order.OrderNumber, order.Total))

	d := gomail.NewDialer(n.cfg.Smtp.Host, n.cfg.Smtp.Port, n.cfg.Smtp.Username, n.cfg.Smtp.Password)
	if err := d.DialAndSend(m); err != nil {
		zap.L().Warn("order email delivery failed",
			zap.String("order_number", order.OrderNumber), zap.Error(err))
		return
	}
	zap.L().Info("order email sent", zap.String("order_number", order.OrderNumber))
}

func (n *OrderNotifier) sendOrderWebhook(order *domain.Order) {
	var code int
	err := gout.POST(n.cfg.Notify.WebhookURL).
		SetJSON(gout.H{
			"event":        "order.confirmed",
			"order_number": order.OrderNumber,
			"total":        order.Total,
			"status":       order.Status,
		}).
		Code(&code).
		Do()
	if err != nil || code >= 300 {
		zap.L().Warn("order webhook delivery failed",
			zap.String("order_number", order.OrderNumber),
			zap.Int("code", code), zap.Error(err))
		return
	}
	zap.L().Info("order webhook sent", zap.String("order_number", order.OrderNumber))
}

// Release stops the worker pool
func (n *OrderNotifier) Release() {
	n.pool.Release()
}
