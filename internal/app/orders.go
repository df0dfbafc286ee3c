package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/campscape/registration-engine/api"
	"github.com/campscape/registration-engine/internal/domain"
)

// seatKey identifies one (session, optional role) capacity axis.
type seatKey struct {
	sessionID int
	roleID    int
	hasRole   bool
}

func itemSeatKey(sessionID int, roleID *int) seatKey {
	key := seatKey{sessionID: sessionID}
	if roleID != nil {
		key.roleID = *roleID
		key.hasRole = true
	}

	return key
}

func (k seatKey) role() *int {
	if !k.hasRole {
		return nil
	}

	roleID := k.roleID

	return &roleID
}

// CreateOrderHandler confirms the session's cart snapshot into an order. The
// discount is recomputed server-side, and every non-addon item claims its
// seat through the capacity ledger before the order is persisted; a failure
// along the way releases everything claimed so far.
func (app *application) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.CreateOrderRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	sessionToken := app.sessionManager.Token(r.Context())

	cart, err := app.cartRepo.Get(r.Context(), sessionToken)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			app.errorResponse(w, r, http.StatusNotFound, domain.ErrCartNotFound.Error())
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	// Price again from the snapshot; the stored totals are display values.
	discount := domain.CalculateDiscount(cart.Items)

	reserved, err := app.reserveCartSeats(r.Context(), cart.Items)
	if err != nil {
		app.releaseSeats(r.Context(), reserved)
		app.domainErrorResponse(w, r, err)
		return
	}

	order := &domain.Order{
		ParentID:       input.ParentId,
		Status:         domain.OrderStatusConfirmed,
		OriginalTotal:  discount.OriginalTotal,
		DiscountAmount: discount.DiscountAmount,
		FinalTotal:     discount.FinalTotal,
		Tier:           discount.Tier,
	}

	for _, item := range cart.Items {
		order.Items = append(order.Items, domain.OrderItem{
			SessionID: item.SessionID,
			RoleID:    item.RoleID,
			ChildID:   item.ChildID,
			FamilyID:  item.FamilyID,
			Type:      item.Type,
			Price:     item.Price,
			Discount:  discount.PerItemDiscount[item.ID],
		})
	}

	err = app.orderRepo.Create(r.Context(), order)
	if err != nil {
		app.releaseSeats(r.Context(), reserved)
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.cartRepo.Delete(r.Context(), sessionToken)
	if err != nil {
		logger.Error("failed to delete cart after order confirmation", "error", err)
	}

	logger.Info("order confirmed", "order_id", order.ID, "items", len(order.Items))

	err = app.writeJSON(w, http.StatusCreated, toOrderResponse(order), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := readIntParam(r, "orderId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	order, err := app.orderRepo.GetById(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toOrderResponse(order), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// CancelOrderHandler cancels a confirmed order, releases its seats, and
// sweeps the waitlist for each freed (session, role) pair.
func (app *application) CancelOrderHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	orderID, err := readIntParam(r, "orderId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	order, err := app.orderRepo.GetById(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.orderRepo.UpdateStatus(r.Context(), orderID, domain.OrderStatusConfirmed, domain.OrderStatusCancelled)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	freed := make(map[seatKey]int)

	for _, item := range order.Items {
		if item.Type == domain.CartItemAddon {
			continue
		}

		key := itemSeatKey(item.SessionID, item.RoleID)

		err = app.capacity.Release(r.Context(), item.SessionID, item.RoleID, 1)
		if err != nil {
			logger.Error("failed to release seat on cancellation",
				"order_id", orderID, "session_id", item.SessionID, "error", err)
			continue
		}

		freed[key]++
	}

	for key, count := range freed {
		promoted, err := app.sweeper.SeatFreed(r.Context(), key.sessionID, key.role(), count)
		if err != nil {
			logger.Error("waitlist sweep failed",
				"session_id", key.sessionID, "error", err)
			continue
		}

		if len(promoted) > 0 {
			logger.Info("waitlist entries promoted after cancellation",
				"session_id", key.sessionID, "count", len(promoted))
		}
	}

	order.Status = domain.OrderStatusCancelled

	err = app.writeJSON(w, http.StatusOK, toOrderResponse(order), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) ListParentOrders(w http.ResponseWriter, r *http.Request) {
	parentID, err := readIntParam(r, "parentId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	page, pageSize := readPagination(r)
	pagination := domain.Pagination{Page: page, PageSize: pageSize}

	summaries, metadata, err := app.orderRepo.GetSummariesByParentId(r.Context(), parentID, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ParentOrdersResponse{
		Orders:   make([]api.OrderSummary, 0, len(summaries)),
		Metadata: toApiMetadata(metadata),
	}

	for _, summary := range summaries {
		resp.Orders = append(resp.Orders, api.OrderSummary{
			Id:         summary.OrderID,
			Status:     string(summary.Status),
			ItemCount:  summary.ItemCount,
			FinalTotal: summary.FinalTotal,
			CreatedAt:  summary.CreatedAt,
		})
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// reserveCartSeats claims one seat per non-addon item, returning the claims
// made so far when one fails so the caller can compensate.
func (app *application) reserveCartSeats(ctx context.Context, items []domain.CartItem) (map[seatKey]int, error) {
	reserved := make(map[seatKey]int)

	for _, item := range items {
		if item.IsAddon {
			continue
		}

		err := app.capacity.Reserve(ctx, item.SessionID, item.RoleID, 1)
		if err != nil {
			return reserved, err
		}

		reserved[itemSeatKey(item.SessionID, item.RoleID)]++
	}

	return reserved, nil
}

func (app *application) releaseSeats(ctx context.Context, reserved map[seatKey]int) {
	for key, count := range reserved {
		err := app.capacity.Release(ctx, key.sessionID, key.role(), count)
		if err != nil {
			app.logger.Error("failed to release seat during compensation",
				"session_id", key.sessionID, "error", err)
		}
	}
}

func toOrderResponse(order *domain.Order) api.OrderResponse {
	resp := api.OrderResponse{
		Id:             order.ID,
		ParentId:       order.ParentID,
		Status:         string(order.Status),
		Items:          make([]api.OrderItemResponse, 0, len(order.Items)),
		OriginalTotal:  order.OriginalTotal,
		DiscountAmount: order.DiscountAmount,
		FinalTotal:     order.FinalTotal,
		Tier:           string(order.Tier),
		CreatedAt:      order.CreatedAt,
	}

	for _, item := range order.Items {
		resp.Items = append(resp.Items, api.OrderItemResponse{
			Id:        item.ID,
			SessionId: item.SessionID,
			RoleId:    item.RoleID,
			Type:      string(item.Type),
			Price:     item.Price,
			Discount:  item.Discount,
		})
	}

	return resp
}

func toApiMetadata(metadata *domain.Metadata) api.Metadata {
	if metadata == nil {
		return api.Metadata{}
	}

	return api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		PageSize:     metadata.PageSize,
		TotalRecords: metadata.TotalRecords,
	}
}
