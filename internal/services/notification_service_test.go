package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"discount-backend/internal/models"
)

type mockSettings struct {
	values map[string]string
}

func (m *mockSettings) Get(ctx context.Context, key string) (*models.Setting, error) {
	if v, ok := m.values[key]; ok {
		return &models.Setting{Key: key, Value: v}, nil
	}
	return nil, nil
}

type mockMessenger struct {
	configured bool
	err        error
	sentTo     string
	sentBody   string
}

func (m *mockMessenger) SendText(ctx context.Context, toE164, body string) error {
	m.sentTo, m.sentBody = toE164, body
	return m.err
}

func (m *mockMessenger) Configured() bool { return m.configured }

type mockMailer struct {
	configured bool
	sent       bool
	subject    string
	body       string
}

func (m *mockMailer) Send(ctx context.Context, to, subject, body string) error {
	m.sent, m.subject, m.body = true, subject, body
	return nil
}

func (m *mockMailer) Configured() bool { return m.configured }

type mockPusher struct {
	roles []models.Role
	title string
	body  string
	calls int
}

func (m *mockPusher) SendToRoles(ctx context.Context, roles []models.Role, title, body, url string) error {
	m.roles, m.title, m.body = roles, title, body
	m.calls++
	return nil
}

type mockFeed struct {
	events []string
}

func (m *mockFeed) Broadcast(event string, payload interface{}) {
	m.events = append(m.events, event)
}

// notificationFixture wires a service whose dispatch runs inline so tests
// observe deliveries without sleeping
func notificationFixture(settings *mockSettings, wa *mockMessenger, mail *mockMailer, pusher *mockPusher, feed *mockFeed) *NotificationService {
	svc := NewNotificationService(settings, wa, mail, pusher, feed)
	svc.dispatch = func(fn func(ctx context.Context)) { fn(context.Background()) }
	return svc
}

func approvedRequest() *models.CouponRequest {
	percent := 15
	return &models.CouponRequest{
		ID:              1,
		RequestCode:     "25-030001",
		CustomerName:    "Rahim",
		CustomerMobile:  "+8801712345678",
		CouponCode:      "GOLD-001",
		DiscountPercent: &percent,
		Status:          models.RequestStatusApproved,
	}
}

func TestApprovedSendsWhatsAppWithRenderedTemplate(t *testing.T) {
	wa := &mockMessenger{configured: true}
	mail := &mockMailer{configured: true}
	feed := &mockFeed{}
	svc := notificationFixture(&mockSettings{}, wa, mail, &mockPusher{}, feed)

	svc.RequestApproved(approvedRequest())

	assert.Equal(t, "+8801712345678", wa.sentTo)
	assert.Contains(t, wa.sentBody, "Rahim")
	assert.Contains(t, wa.sentBody, "15")
	assert.Contains(t, wa.sentBody, "GOLD-001")
	assert.Contains(t, wa.sentBody, "25-030001")
	assert.False(t, mail.sent, "mail must not be sent when WhatsApp succeeds")
	assert.Equal(t, []string{"request.approved"}, feed.events)
}

func TestApprovedFallsBackToMail(t *testing.T) {
	wa := &mockMessenger{configured: true, err: errors.New("graph api down")}
	mail := &mockMailer{configured: true}
	svc := notificationFixture(&mockSettings{}, wa, mail, &mockPusher{}, &mockFeed{})

	svc.RequestApproved(approvedRequest())

	assert.True(t, mail.sent)
	assert.Contains(t, mail.subject, "25-030001")
	assert.Contains(t, mail.body, "GOLD-001")
}

func TestApprovedSkipsUnconfiguredWhatsApp(t *testing.T) {
	wa := &mockMessenger{configured: false}
	mail := &mockMailer{configured: true}
	svc := notificationFixture(&mockSettings{}, wa, mail, &mockPusher{}, &mockFeed{})

	svc.RequestApproved(approvedRequest())

	assert.Empty(t, wa.sentTo)
	assert.True(t, mail.sent)
}

func TestApprovedHonorsDisabledToggle(t *testing.T) {
	settings := &mockSettings{values: map[string]string{
		models.SettingNotifyCustomerOnApprove: "false",
	}}
	wa := &mockMessenger{configured: true}
	mail := &mockMailer{configured: true}
	svc := notificationFixture(settings, wa, mail, &mockPusher{}, &mockFeed{})

	svc.RequestApproved(approvedRequest())

	assert.Empty(t, wa.sentTo)
	assert.False(t, mail.sent)
}

func TestApprovedUsesCustomTemplate(t *testing.T) {
	settings := &mockSettings{values: map[string]string{
		models.SettingWhatsAppTemplateText: "Hi {name}, code {coupon}",
	}}
	wa := &mockMessenger{configured: true}
	svc := notificationFixture(settings, wa, &mockMailer{}, &mockPusher{}, &mockFeed{})

	svc.RequestApproved(approvedRequest())

	assert.Equal(t, "Hi Rahim, code GOLD-001", wa.sentBody)
}

func TestCreatedPushesToApprovers(t *testing.T) {
	pusher := &mockPusher{}
	feed := &mockFeed{}
	svc := notificationFixture(&mockSettings{}, &mockMessenger{}, &mockMailer{}, pusher, feed)

	svc.RequestCreated(&models.CouponRequest{RequestCode: "25-030002", CustomerName: "Karim"})

	assert.Equal(t, 1, pusher.calls)
	assert.Equal(t, []models.Role{models.RoleSuperadmin, models.RoleAdmin}, pusher.roles)
	assert.Contains(t, pusher.body, "25-030002")
	assert.Equal(t, []string{"request.created"}, feed.events)
}

func TestCreatedHonorsDisabledToggle(t *testing.T) {
	settings := &mockSettings{values: map[string]string{
		models.SettingNotifyStaffOnCreate: "false",
	}}
	pusher := &mockPusher{}
	feed := &mockFeed{}
	svc := notificationFixture(settings, &mockMessenger{}, &mockMailer{}, pusher, feed)

	svc.RequestCreated(&models.CouponRequest{RequestCode: "25-030002"})

	assert.Zero(t, pusher.calls)
	// The live feed is not a notification channel, toggles don't gate it
	assert.Equal(t, []string{"request.created"}, feed.events)
}

func TestRejectedAndFinalizedBroadcastOnly(t *testing.T) {
	wa := &mockMessenger{configured: true}
	pusher := &mockPusher{}
	feed := &mockFeed{}
	svc := notificationFixture(&mockSettings{}, wa, &mockMailer{configured: true}, pusher, feed)

	svc.RequestRejected(&models.CouponRequest{RequestCode: "25-030003"})
	svc.RequestFinalized(&models.CouponRequest{RequestCode: "25-030003"})

	assert.Equal(t, []string{"request.rejected", "request.done"}, feed.events)
	assert.Empty(t, wa.sentTo)
	assert.Zero(t, pusher.calls)
}
