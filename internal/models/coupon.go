package models

import "time"

// CouponGroup is a named discount tier with a pool of coupon codes
type CouponGroup struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Percent   int       `json:"percent"`
	CreatedAt time.Time `json:"created_at"`
}

// Coupon is a single code in a group's pool. A coupon is bound to at most
// one request for its whole life; assignment columns stay NULL until then.
type Coupon struct {
	ID                int        `json:"id"`
	Code              string     `json:"code"`
	GroupID           int        `json:"group_id"`
	GroupName         string     `json:"group_name,omitempty"`
	GroupPercent      int        `json:"group_percent,omitempty"`
	EnlistedAt        time.Time  `json:"enlisted_at"`
	AssignedRequestID *int       `json:"assigned_request_id"`
	AssignedToName    string     `json:"assigned_to_name"`
	AssignedToMobile  string     `json:"assigned_to_mobile"`
	AssignedByUserID  *int       `json:"assigned_by_user_id"`
	AssignedAt        *time.Time `json:"assigned_at"`
	IsActive          bool       `json:"is_active"`
}

// CreateGroupRequest creates a discount tier
type CreateGroupRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Percent int    `json:"percent" validate:"required,gt=0,lte=100"`
}

// EnlistRequest bulk-loads coupon codes into a group's inventory
type EnlistRequest struct {
	GroupID int      `json:"group_id" validate:"required,gt=0"`
	Codes   []string `json:"codes" validate:"required,min=1,dive,required,max=80"`
}

// EnlistResult reports how the batch went
type EnlistResult struct {
	Added   int      `json:"added"`
	Skipped []string `json:"skipped"` // Duplicates within the batch
}

// GroupStock is the free/assigned breakdown for one group
type GroupStock struct {
	Group    CouponGroup `json:"group"`
	Free     int         `json:"free"`
	Assigned int         `json:"assigned"`
}
