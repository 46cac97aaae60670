package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/cellar-next/internal/config"
	"github.com/cellar-next/internal/constants"
	"github.com/cellar-next/internal/models"
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg      *config.EmailConfig
	siteName string
	siteURL  string
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig, app *config.AppConfig) *EmailService {
	svc := &EmailService{cfg: cfg, siteName: "Cellar"}
	if app != nil {
		if name := strings.TrimSpace(app.Name); name != "" {
			svc.siteName = name
		}
		svc.siteURL = strings.TrimRight(strings.TrimSpace(app.SiteURL), "/")
	}
	return svc
}

// SetConfig 更新运行时邮件配置
func (s *EmailService) SetConfig(cfg *config.EmailConfig) {
	if cfg == nil {
		return
	}
	s.cfg = cfg
}

// Enabled 邮件是否可发送
func (s *EmailService) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled
}

// SendOrderConfirmedEmail 发送下单成功邮件
func (s *EmailService) SendOrderConfirmedEmail(order *models.Order) error {
	if order == nil {
		return ErrOrderNotFound
	}
	subject, body := buildOrderConfirmedContent(s.siteName, s.orderLink(order), order)
	return s.sendTextEmail(order.CustomerEmail, subject, body)
}

// SendOrderStatusEmail 发送订单状态通知
func (s *EmailService) SendOrderStatusEmail(order *models.Order) error {
	if order == nil {
		return ErrOrderNotFound
	}
	subject, body := buildOrderStatusContent(s.siteName, s.orderLink(order), order)
	return s.sendTextEmail(order.CustomerEmail, subject, body)
}

// SendCustomEmail 发送测试邮件或自定义邮件
func (s *EmailService) SendCustomEmail(toEmail, subject, body string) error {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = "SMTP test email"
	}
	body = strings.TrimSpace(body)
	if body == "" {
		body = fmt.Sprintf("This is an SMTP test email from %s. Your mail settings work.", s.siteName)
	}
	return s.sendTextEmail(toEmail, subject, body)
}

func (s *EmailService) orderLink(order *models.Order) string {
	if s.siteURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/order-success?reference=%s", s.siteURL, order.PaystackReference)
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if s.cfg.UseSSL {
		return normalizeEmailSendError(sendMailWithSSL(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
	}
	if s.cfg.UseTLS {
		return normalizeEmailSendError(sendMailWithStartTLS(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
	}
	return normalizeEmailSendError(sendMailPlain(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
}

func buildOrderConfirmedContent(siteName, link string, order *models.Order) (string, string) {
	subject := fmt.Sprintf("[%s] Order confirmed: %s", siteName, order.PaystackReference)

	var buf strings.Builder
	buf.WriteString("Thank you for your order. Your payment was received.\n\n")
	buf.WriteString(fmt.Sprintf("Reference: %s\n", order.PaystackReference))
	buf.WriteString(fmt.Sprintf("Delivery city: %s\n\n", order.DeliveryCity))
	for _, item := range order.Items {
		line := fmt.Sprintf("- %s x%d", item.ProductName, item.Quantity)
		if size := strings.TrimSpace(item.BottleSize); size != "" {
			line += fmt.Sprintf(" (%s)", size)
		}
		buf.WriteString(fmt.Sprintf("%s  %s\n", line, item.LineTotal().Naira()))
	}
	buf.WriteString(fmt.Sprintf("\nSubtotal: %s\n", order.Subtotal.Naira()))
	buf.WriteString(fmt.Sprintf("Delivery fee: %s\n", order.DeliveryFee.Naira()))
	if order.PromoCode != nil && !order.DiscountAmount.Decimal.IsZero() {
		buf.WriteString(fmt.Sprintf("Discount (%s): -%s\n", *order.PromoCode, order.DiscountAmount.Naira()))
	}
	buf.WriteString(fmt.Sprintf("Total paid: %s\n", order.TotalAmount.Naira()))
	if link != "" {
		buf.WriteString(fmt.Sprintf("\nTrack your order: %s\n", link))
	}
	return subject, buf.String()
}

func buildOrderStatusContent(siteName, link string, order *models.Order) (string, string) {
	label := orderStatusLabel(order.OrderStatus)
	subject := fmt.Sprintf("[%s] Order status updated: %s", siteName, label)

	var message string
	switch order.OrderStatus {
	case constants.OrderStatusConfirmed:
		message = "Your order has been confirmed and will be prepared shortly."
	case constants.OrderStatusProcessing:
		message = "Your order is being packed."
	case constants.OrderStatusShipped:
		message = "Your order is on its way."
	case constants.OrderStatusDelivered:
		message = "Your order has been delivered. Enjoy responsibly."
	case constants.OrderStatusCancelled:
		message = "Your order has been cancelled. Contact support if this is unexpected."
	default:
		message = "Your order status has changed."
	}
	body := fmt.Sprintf("%s\n\nReference: %s\nStatus: %s\nTotal: %s\n",
		message, order.PaystackReference, label, order.TotalAmount.Naira())
	if link != "" {
		body += fmt.Sprintf("\nOrder details: %s\n", link)
	}
	return subject, body
}

func orderStatusLabel(status string) string {
	switch status {
	case constants.OrderStatusPending:
		return "Pending"
	case constants.OrderStatusConfirmed:
		return "Confirmed"
	case constants.OrderStatusProcessing:
		return "Processing"
	case constants.OrderStatusShipped:
		return "Shipped"
	case constants.OrderStatusDelivered:
		return "Delivered"
	case constants.OrderStatusCancelled:
		return "Cancelled"
	default:
		return status
	}
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func sendMailWithSSL(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := authenticateSMTP(client, auth); err != nil {
		return err
	}
	return sendSMTPData(client, from, to, msg)
}

func sendMailWithStartTLS(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return err
	}

	if err := authenticateSMTP(client, auth); err != nil {
		return err
	}
	return sendSMTPData(client, from, to, msg)
}

func sendMailPlain(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := authenticateSMTP(client, auth); err != nil {
		return err
	}
	return sendSMTPData(client, from, to, msg)
}

func authenticateSMTP(client *smtp.Client, auth smtp.Auth) error {
	if auth == nil {
		return nil
	}
	if ok, _ := client.Extension("AUTH"); !ok {
		return nil
	}
	return client.Auth(auth)
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return ErrEmailRecipientRejected
	}
	return err
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	directKeywords := []string{
		"no such recipient",
		"no such user",
		"recipient not found",
		"recipient address rejected",
		"invalid recipient",
		"user unknown",
		"unknown user",
		"unknown mailbox",
		"mailbox unavailable",
	}
	for _, keyword := range directKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		hints := []string{"recipient", "user", "mailbox", "address", "rcpt"}
		for _, hint := range hints {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
