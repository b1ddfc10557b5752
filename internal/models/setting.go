package models

import "time"

// Setting is a runtime-editable key/value pair
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Setting keys consulted by the notification service
const (
	SettingNotifyCustomerOnApprove = "notify_customer_on_approve"
	SettingNotifyStaffOnCreate     = "notify_staff_on_create"
	SettingWhatsAppTemplateText    = "whatsapp_template_text"
)

// DefaultWhatsAppTemplate is used when no template is stored
const DefaultWhatsAppTemplate = "Dear {name}, your discount {discount}% has been approved.\nCoupon: {coupon}\nRef: {request_code}\nThank you."
