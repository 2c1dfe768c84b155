// Package mailer sends transactional email over SMTP.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	gomail "gopkg.in/gomail.v2"

	"github.com/ergolife/storefront/internal/domain/order"
)

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends order-confirmation email via an SMTP relay.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// New creates a Mailer from the given SMTP settings.
func New(cfg Config) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendOrderConfirmation emails the order summary to the customer. The send
// is bounded by the context deadline; callers decide whether a failure is
// fatal.
func (m *Mailer) SendOrderConfirmation(ctx context.Context, to string, o *order.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Order confirmation %s", o.OrderNumber))
	msg.SetBody("text/plain", confirmationBody(o))

	// gomail has no context support, so the dial and send run on their own
	// goroutine and the context deadline caps the wait. On timeout the
	// goroutine is abandoned to finish or fail on the SMTP socket.
	errc := make(chan error, 1)
	go func() { errc <- m.dialer.DialAndSend(msg) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errc:
		if err != nil {
			return errors.Wrap(err, "send confirmation email")
		}
		return nil
	}
}

func confirmationBody(o *order.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThank you for your order %s.\n\n", o.Name, o.OrderNumber)
	for _, line := range o.Items {
		fmt.Fprintf(&b, "  %dx %s (%s) - %s\n", line.Quantity, line.ProductName, line.ColorName, line.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", o.Subtotal.StringFixed(2))
	if o.DiscountAmount.IsPositive() {
		fmt.Fprintf(&b, "Discount (%s): -%s\n", o.DiscountCode, o.DiscountAmount.StringFixed(2))
	}
	if o.InstallationFee.IsPositive() {
		fmt.Fprintf(&b, "Installation fee: %s\n", o.InstallationFee.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: %s\n", o.Total().StringFixed(2))
	return b.String()
}

// Nop is a Mailer that drops every message. Used when SMTP is not configured.
type Nop struct{}

// SendOrderConfirmation discards the message.
func (Nop) SendOrderConfirmation(ctx context.Context, to string, o *order.Order) error {
	return nil
}
