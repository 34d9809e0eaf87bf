package email

import (
	"fmt"
	"net/smtp"

	"github.com/example/ec-storefront/internal/domain/payment"
)

// sendFunc has the signature of smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service handles email sending via SMTP
type Service struct {
	host     string
	port     string
	from     string
	sendMail sendFunc
}

func NewService(host, port, from string) *Service {
	return &Service{
		host:     host,
		port:     port,
		from:     from,
		sendMail: smtp.SendMail,
	}
}

// SendPaymentReceipt emails the receipt of a paid order to the buyer.
func (s *Service) SendPaymentReceipt(to, transactionID string, receipt payment.Receipt) error {
	if to == "" {
		return ErrNoRecipient
	}
	subject := fmt.Sprintf("Payment received for order %s", shortID(receipt.DraftID))
	body := BuildReceiptBody(transactionID, receipt)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.sendMail(addr, nil, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
