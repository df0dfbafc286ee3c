// Package api defines the request and response shapes of the HTTP surface.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string         `json:"message"`
	Kind      string         `json:"kind,omitempty"`
	Params    map[string]any `json:"params,omitempty"`
	RequestId string         `json:"requestId,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	RequestId        string            `json:"requestId,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type RoleAvailability struct {
	RoleId    int `json:"roleId"`
	Capacity  int `json:"capacity"`
	Assigned  int `json:"assigned"`
	Available int `json:"available"`
}

type AvailabilityResponse struct {
	SessionId        int                `json:"sessionId"`
	SessionAvailable int                `json:"sessionAvailable"`
	Roles            []RoleAvailability `json:"roles"`
}

type CartItemRequest struct {
	SessionId int    `json:"sessionId" validate:"required,gt=0"`
	RoleId    *int   `json:"roleId,omitempty" validate:"omitempty,gt=0"`
	ChildId   *int   `json:"childId,omitempty" validate:"omitempty,gt=0"`
	FamilyId  *int   `json:"familyId,omitempty" validate:"omitempty,gt=0"`
	Type      string `json:"type" validate:"required,cart_item_type"`
}

type CreateCartRequest struct {
	Items []CartItemRequest `json:"items" validate:"required,min=1,max=20,dive"`
}

type CartItemResponse struct {
	Id        string          `json:"id"`
	SessionId int             `json:"sessionId"`
	RoleId    *int            `json:"roleId,omitempty"`
	ChildId   *int            `json:"childId,omitempty"`
	FamilyId  *int            `json:"familyId,omitempty"`
	Type      string          `json:"type"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
}

type CartResponse struct {
	Items          []CartItemResponse `json:"items"`
	OriginalTotal  decimal.Decimal    `json:"originalTotal"`
	DiscountAmount decimal.Decimal    `json:"discountAmount"`
	FinalTotal     decimal.Decimal    `json:"finalTotal"`
	Tier           string             `json:"tier"`
}

type CreateOrderRequest struct {
	ParentId int `json:"parentId" validate:"required,gt=0"`
}

type OrderItemResponse struct {
	Id        int             `json:"id"`
	SessionId int             `json:"sessionId"`
	RoleId    *int            `json:"roleId,omitempty"`
	Type      string          `json:"type"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
}

type OrderResponse struct {
	Id             int                 `json:"id"`
	ParentId       int                 `json:"parentId"`
	Status         string              `json:"status"`
	Items          []OrderItemResponse `json:"items"`
	OriginalTotal  decimal.Decimal     `json:"originalTotal"`
	DiscountAmount decimal.Decimal     `json:"discountAmount"`
	FinalTotal     decimal.Decimal     `json:"finalTotal"`
	Tier           string              `json:"tier"`
	CreatedAt      time.Time           `json:"createdAt"`
}

type OrderSummary struct {
	Id         int             `json:"id"`
	Status     string          `json:"status"`
	ItemCount  int             `json:"itemCount"`
	FinalTotal decimal.Decimal `json:"finalTotal"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type ParentOrdersResponse struct {
	Orders   []OrderSummary `json:"orders"`
	Metadata Metadata       `json:"metadata"`
}

type AddWaitlistRequest struct {
	RoleId   *int   `json:"roleId,omitempty" validate:"omitempty,gt=0"`
	ParentId int    `json:"parentId" validate:"required,gt=0"`
	ChildId  *int   `json:"childId,omitempty" validate:"omitempty,gt=0"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type WaitlistEntryData struct {
	Id        string    `json:"id"`
	SessionId int       `json:"sessionId"`
	RoleId    *int      `json:"roleId,omitempty"`
	ParentId  int       `json:"parentId"`
	ChildId   *int      `json:"childId,omitempty"`
	Position  int64     `json:"position"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type WaitlistErrorDetail struct {
	Kind   string         `json:"kind"`
	Params map[string]any `json:"params,omitempty"`
}

// WaitlistResponse is the success/data-or-error envelope of every waitlist
// endpoint.
type WaitlistResponse struct {
	Success bool                 `json:"success"`
	Data    *WaitlistEntryData   `json:"data,omitempty"`
	Error   *WaitlistErrorDetail `json:"error,omitempty"`
}

type WaitlistListResponse struct {
	Success  bool                 `json:"success"`
	Data     []WaitlistEntryData  `json:"data,omitempty"`
	Metadata *Metadata            `json:"metadata,omitempty"`
	Error    *WaitlistErrorDetail `json:"error,omitempty"`
}

type RewardData struct {
	Id        string `json:"id"`
	Threshold int    `json:"threshold"`
	Label     string `json:"label"`
}

type RewardsResponse struct {
	SessionId   int          `json:"sessionId"`
	SessionType string       `json:"sessionType"`
	Unlocked    []RewardData `json:"unlocked"`
	NextReward  *RewardData  `json:"nextReward,omitempty"`
	Progress    int          `json:"progress"`
}
