package email

import (
	"context"
	"fmt"
	"net/smtp"
)

// Service handles email sending via SMTP
type Service struct {
	host string
	port string
	from string
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendResetCode sends a password reset code to a staff member
func (s *Service) SendResetCode(_ context.Context, to, code string) error {
	subject := "Код для сброса пароля"
	body := BuildResetCodeBody(code)
	return s.send(to, subject, body)
}

// SendNewOrderAlert notifies the panel inbox about a freshly placed order
func (s *Service) SendNewOrderAlert(to, number, customerName string, total, itemCount int) error {
	subject := fmt.Sprintf("Новый заказ %s", number)
	body := BuildNewOrderBody(number, customerName, total, itemCount)
	return s.send(to, subject, body)
}

// SendCancellationAlert notifies the panel inbox about a cancelled order
func (s *Service) SendCancellationAlert(to, number, priorStatus, reason string) error {
	subject := fmt.Sprintf("Заказ %s отменён", number)
	body := BuildCancellationBody(number, priorStatus, reason)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
