// Package notify sends transactional order emails through an EmailJS
// compatible REST endpoint.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shoe-storefront/internal/domain"
	"shoe-storefront/internal/pricing"

	"github.com/samber/lo"
)

const DefaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// Notifier tells customers about their orders.
type Notifier interface {
	OrderCreated(ctx context.Context, order *domain.Order) error
	OrderStatusChanged(ctx context.Context, order *domain.Order) error
}

type Config struct {
	Endpoint             string
	ServiceID            string
	TemplateOrderCreated string
	TemplateStatusUpdate string
	PublicKey            string
	PrivateKey           string
	AdminAddress         string
}

// Enabled reports whether enough is configured to send mail.
func (c Config) Enabled() bool {
	return c.ServiceID != "" && c.PublicKey != ""
}

type EmailJS struct {
	cfg    Config
	client *http.Client
}

func NewEmailJS(cfg Config, client *http.Client) *EmailJS {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &EmailJS{cfg: cfg, client: client}
}

type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	AccessToken    string         `json:"accessToken,omitempty"`
	TemplateParams TemplateParams `json:"template_params"`
}

// TemplateParams is the fixed parameter object shared by both templates.
type TemplateParams struct {
	ToEmail            string `json:"to_email"`
	ToName             string `json:"to_name"`
	AdminEmail         string `json:"admin_email"`
	OrderID            string `json:"order_id"`
	OrderStatus        string `json:"order_status"`
	OrderDate          string `json:"order_date"`
	Items              string `json:"items"`
	Subtotal           string `json:"subtotal"`
	DeliveryFee        string `json:"delivery_fee"`
	Total              string `json:"total"`
	PaymentMethod      string `json:"payment_method"`
	DeliveryTime       string `json:"delivery_time"`
	Address            string `json:"address"`
	Phone              string `json:"phone"`
	CancellationReason string `json:"cancellation_reason"`
}

// NewTemplateParams flattens an order into template parameters.
func NewTemplateParams(order *domain.Order, adminEmail string) TemplateParams {
	items := lo.Map(order.Items, func(it domain.OrderItem, _ int) string {
		line := fmt.Sprintf("%s x%d - %s", it.Name, it.Quantity, it.Price.String())
		if it.Color.Name != "" {
			line += " (" + it.Color.Name + ")"
		}
		return line
	})

	addr := order.DeliveryDetails.Address
	address := strings.Join(lo.Compact([]string{addr.Address, addr.City, addr.PostalCode}), ", ")

	return TemplateParams{
		ToEmail:            order.UserInfo.Email,
		ToName:             order.UserInfo.DisplayName,
		AdminEmail:         adminEmail,
		OrderID:            order.ID.String(),
		OrderStatus:        string(order.Status),
		OrderDate:          order.CreatedAt.Format("2006-01-02 15:04"),
		Items:              strings.Join(items, "\n"),
		Subtotal:           pricing.FormatAmount(order.Subtotal),
		DeliveryFee:        pricing.FormatAmount(order.DeliveryFee),
		Total:              pricing.FormatAmount(order.Total),
		PaymentMethod:      string(order.Payment.Method),
		DeliveryTime:       order.DeliveryDetails.DeliveryTime,
		Address:            address,
		Phone:              order.UserInfo.PhoneNumber,
		CancellationReason: order.CancellationReason,
	}
}

func (e *EmailJS) OrderCreated(ctx context.Context, order *domain.Order) error {
	return e.send(ctx, e.cfg.TemplateOrderCreated, NewTemplateParams(order, e.cfg.AdminAddress))
}

func (e *EmailJS) OrderStatusChanged(ctx context.Context, order *domain.Order) error {
	return e.send(ctx, e.cfg.TemplateStatusUpdate, NewTemplateParams(order, e.cfg.AdminAddress))
}

func (e *EmailJS) send(ctx context.Context, templateID string, params TemplateParams) error {
	body, err := json.Marshal(sendRequest{
		ServiceID:      e.cfg.ServiceID,
		TemplateID:     templateID,
		UserID:         e.cfg.PublicKey,
		AccessToken:    e.cfg.PrivateKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("failed to encode email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// Nop discards notifications.
type Nop struct{}

func (Nop) OrderCreated(context.Context, *domain.Order) error       { return nil }
func (Nop) OrderStatusChanged(context.Context, *domain.Order) error { return nil }
