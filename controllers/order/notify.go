package orderControllers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/mailer"
	"github.com/junaidrashid-git/storefront-api/models"
	"go.uber.org/zap"
)

const notifyTimeout = 10 * time.Second

// Notifier fans order changes out to Kafka, admin websockets and customer email.
// Every step is best effort: failures are logged and never fail the request.
type Notifier struct {
	Mailer    mailer.Mailer
	Templates mailer.Templates
	Publisher events.Publisher
	Hub       *events.Hub
}

// detached outlives the request so a client disconnect does not cut a send short
func detached(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(c.Request.Context()), notifyTimeout)
}

// Changed publishes and broadcasts an order event
func (n *Notifier) Changed(c *gin.Context, eventType string, order *models.Order) {
	e := events.NewEvent(eventType, order.OrderRef, order)
	if n.Publisher != nil {
		ctx, cancel := detached(c)
		defer cancel()
		if err := n.Publisher.Publish(ctx, e); err != nil {
			logger.FromGin(c).Warn("failed to publish order event",
				zap.String("type", eventType), zap.String("order_ref", order.OrderRef), zap.Error(err))
		}
	}
	if n.Hub != nil {
		n.Hub.Broadcast(e)
	}
}

// SendConfirmation emails the order summary to the customer
func (n *Notifier) SendConfirmation(c *gin.Context, order *models.Order) error {
	msg, err := n.Templates.OrderConfirmation(order, order.Email)
	if err != nil {
		return err
	}
	return n.send(c, msg)
}

// SendShippingUpdate emails the new delivery status to the customer
func (n *Notifier) SendShippingUpdate(c *gin.Context, order *models.Order) error {
	msg, err := n.Templates.ShippingUpdate(order, order.Email)
	if err != nil {
		return err
	}
	return n.send(c, msg)
}

func (n *Notifier) send(c *gin.Context, msg mailer.Message) error {
	if len(msg.To) == 0 || msg.To[0] == "" {
		return mailer.ErrNoRecipient
	}
	ctx, cancel := detached(c)
	defer cancel()
	return n.Mailer.Send(ctx, msg)
}

// logEmailError records a failed best-effort email
func logEmailError(c *gin.Context, order *models.Order, kind string, err error) {
	if err == nil {
		return
	}
	logger.FromGin(c).Warn("failed to send order email",
		zap.String("kind", kind), zap.String("order_ref", order.OrderRef), zap.Error(err))
}
