package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"discount-backend/internal/metrics"
	"discount-backend/internal/models"
)

// SettingGetter reads runtime notification settings
type SettingGetter interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
}

// CustomerMessenger delivers a text to a customer's +880 number (WhatsApp)
type CustomerMessenger interface {
	SendText(ctx context.Context, toE164, body string) error
	Configured() bool
}

// EmailSender is the fallback channel when WhatsApp delivery fails
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
	Configured() bool
}

// StaffPusher sends Web Push notifications to staff browsers by role
type StaffPusher interface {
	SendToRoles(ctx context.Context, roles []models.Role, title, body, url string) error
}

// FeedBroadcaster pushes lifecycle events to connected dashboards
type FeedBroadcaster interface {
	Broadcast(event string, payload interface{})
}

// NotificationService fans lifecycle events out to the customer (WhatsApp
// with e-mail fallback) and to staff (Web Push + live dashboard feed).
// Every delivery is fire-and-forget: failures are logged and swallowed so
// they can never roll back or delay the state change that triggered them.
// Implements LifecycleNotifier.
type NotificationService struct {
	Settings SettingGetter
	WhatsApp CustomerMessenger
	Mailer   EmailSender
	Push     StaffPusher
	Feed     FeedBroadcaster

	// dispatch is replaced in tests to run deliveries synchronously
	dispatch func(fn func(ctx context.Context))
}

const notifyTimeout = 30 * time.Second

func NewNotificationService(settings SettingGetter, wa CustomerMessenger, mailer EmailSender, push StaffPusher, feed FeedBroadcaster) *NotificationService {
	return &NotificationService{
		Settings: settings,
		WhatsApp: wa,
		Mailer:   mailer,
		Push:     push,
		Feed:     feed,
		dispatch: func(fn func(ctx context.Context)) {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
				defer cancel()
				fn(ctx)
			}()
		},
	}
}

// enabled checks a toggle setting; an absent toggle means enabled
func (s *NotificationService) enabled(ctx context.Context, key string) bool {
	if s.Settings == nil {
		return true
	}
	setting, err := s.Settings.Get(ctx, key)
	if err != nil || setting == nil {
		return true
	}
	return setting.Value != "false"
}

// couponMessage renders the customer text from the stored template
func (s *NotificationService) couponMessage(ctx context.Context, req *models.CouponRequest) string {
	tpl := models.DefaultWhatsAppTemplate
	if s.Settings != nil {
		if setting, err := s.Settings.Get(ctx, models.SettingWhatsAppTemplateText); err == nil && setting != nil && setting.Value != "" {
			tpl = setting.Value
		}
	}

	percent := 0
	if req.DiscountPercent != nil {
		percent = *req.DiscountPercent
	}

	repl := strings.NewReplacer(
		"{name}", req.CustomerName,
		"{discount}", fmt.Sprintf("%d", percent),
		"{coupon}", req.CouponCode,
		"{request_code}", req.RequestCode,
	)
	return repl.Replace(tpl)
}

// RequestCreated alerts approvers that a request is waiting
func (s *NotificationService) RequestCreated(req *models.CouponRequest) {
	s.broadcast("request.created", req)

	code, customer := req.RequestCode, req.CustomerName
	s.dispatch(func(ctx context.Context) {
		if !s.enabled(ctx, models.SettingNotifyStaffOnCreate) || s.Push == nil {
			return
		}
		body := fmt.Sprintf("Request %s for %s is waiting for approval", code, customer)
		if err := s.Push.SendToRoles(ctx, []models.Role{models.RoleSuperadmin, models.RoleAdmin}, "New coupon request", body, "/requests"); err != nil {
			metrics.NotificationFailures.WithLabelValues("push").Inc()
			log.Printf("Push notification failed for request %s: %v", code, err)
		}
	})
}

// RequestApproved sends the coupon code to the customer, WhatsApp first,
// e-mail fallback to the cashier's inbox
func (s *NotificationService) RequestApproved(req *models.CouponRequest) {
	s.broadcast("request.approved", req)

	cp := *req
	s.dispatch(func(ctx context.Context) {
		if !s.enabled(ctx, models.SettingNotifyCustomerOnApprove) {
			return
		}

		message := s.couponMessage(ctx, &cp)

		if s.WhatsApp != nil && s.WhatsApp.Configured() {
			err := s.WhatsApp.SendText(ctx, cp.CustomerMobile, message)
			if err == nil {
				return
			}
			metrics.NotificationFailures.WithLabelValues("whatsapp").Inc()
			log.Printf("WhatsApp send failed for request %s: %v", cp.RequestCode, err)
		}

		if s.Mailer == nil || !s.Mailer.Configured() {
			return
		}
		subject := fmt.Sprintf("Coupon for request %s", cp.RequestCode)
		if err := s.Mailer.Send(ctx, "", subject, message); err != nil {
			metrics.NotificationFailures.WithLabelValues("mail").Inc()
			log.Printf("Mail fallback failed for request %s: %v", cp.RequestCode, err)
		}
	})
}

// RequestRejected only updates the dashboards; customers are not notified
// of rejections
func (s *NotificationService) RequestRejected(req *models.CouponRequest) {
	s.broadcast("request.rejected", req)
}

// RequestFinalized only updates the dashboards
func (s *NotificationService) RequestFinalized(req *models.CouponRequest) {
	s.broadcast("request.done", req)
}

func (s *NotificationService) broadcast(event string, req *models.CouponRequest) {
	if s.Feed != nil {
		s.Feed.Broadcast(event, req)
	}
}
