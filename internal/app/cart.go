package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/campscape/registration-engine/api"
	"github.com/campscape/registration-engine/internal/domain"
	"github.com/google/uuid"
)

const cartTTL = 10 * time.Minute

// CreateCartHandler prices a cart preview. Prices always come from the
// session records; a client-supplied total is never trusted, and the final
// order recomputes the discount from scratch anyway.
func (app *application) CreateCartHandler(w http.ResponseWriter, r *http.Request) {
	var input api.CreateCartRequest

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

	items, err := app.buildCartItems(r, input.Items)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	cart := domain.NewCart(items)

	sessionToken := app.sessionManager.Token(r.Context())

	err = app.cartRepo.Set(r.Context(), sessionToken, cart, cartTTL)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toCartResponse(cart), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetCartHandler(w http.ResponseWriter, r *http.Request) {
	sessionToken := app.sessionManager.Token(r.Context())

	cart, err := app.cartRepo.Get(r.Context(), sessionToken)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toCartResponse(*cart), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// buildCartItems resolves each requested line against its session, validating
// role selections and attaching server-side prices.
func (app *application) buildCartItems(r *http.Request, requests []api.CartItemRequest) ([]domain.CartItem, error) {
	sessionIDs := make([]int, 0, len(requests))
	seen := make(map[int]bool)

	for _, req := range requests {
		if !seen[req.SessionId] {
			seen[req.SessionId] = true
			sessionIDs = append(sessionIDs, req.SessionId)
		}
	}

	sessions, err := app.sessionRepo.GetByIds(r.Context(), sessionIDs)
	if err != nil {
		return nil, err
	}

	items := make([]domain.CartItem, 0, len(requests))

	for _, req := range requests {
		session, ok := sessions[req.SessionId]
		if !ok {
			return nil, domain.NewError(domain.ErrKindSessionNotFound, "session_id", req.SessionId)
		}

		itemType := domain.CartItemType(req.Type)

		if itemType != domain.CartItemAddon {
			if err := validateRoleSelection(session, req.RoleId); err != nil {
				return nil, err
			}
		}

		items = append(items, domain.CartItem{
			ID:        uuid.New().String(),
			SessionID: req.SessionId,
			RoleID:    req.RoleId,
			ChildID:   req.ChildId,
			FamilyID:  req.FamilyId,
			IsAddon:   itemType == domain.CartItemAddon,
			Type:      itemType,
			Price:     session.Price,
		})
	}

	return items, nil
}

func validateRoleSelection(session *domain.Session, roleID *int) error {
	if roleID == nil {
		if session.RequiresRole() {
			return domain.NewError(domain.ErrKindMissingRoleSelection, "session_id", session.ID)
		}

		return nil
	}

	if !session.RequiresRole() {
		return domain.NewError(domain.ErrKindNoRolesRequired,
			"session_id", session.ID, "role_id", *roleID)
	}

	if _, ok := session.Role(*roleID); !ok {
		return domain.NewError(domain.ErrKindInvalidRoleId,
			"session_id", session.ID, "role_id", *roleID)
	}

	return nil
}

func toCartResponse(cart domain.Cart) api.CartResponse {
	resp := api.CartResponse{
		Items:          make([]api.CartItemResponse, 0, len(cart.Items)),
		OriginalTotal:  cart.OriginalTotal,
		DiscountAmount: cart.DiscountAmount,
		FinalTotal:     cart.FinalTotal,
		Tier:           string(cart.Tier),
	}

	for _, item := range cart.Items {
		resp.Items = append(resp.Items, api.CartItemResponse{
			Id:        item.ID,
			SessionId: item.SessionID,
			RoleId:    item.RoleID,
			ChildId:   item.ChildID,
			FamilyId:  item.FamilyID,
			Type:      string(item.Type),
			Price:     item.Price,
			Discount:  item.Discount,
		})
	}

	return resp
}
