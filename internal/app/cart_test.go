package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/campscape/registration-engine/api"
	"github.com/campscape/registration-engine/internal/domain"
	"github.com/campscape/registration-engine/internal/mocks"
	"github.com/campscape/registration-engine/internal/validator"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

var (
	testRoleSession = &domain.Session{
		ID:       1,
		Name:     "Forest Explorers",
		Capacity: 10,
		Price:    decimal.NewFromInt(3200),
		Roles: []domain.Role{
			{ID: 1, Name: "Scout", Capacity: 4},
			{ID: 2, Name: "Navigator", Capacity: 6},
		},
	}
	testOpenSession = &domain.Session{
		ID:       2,
		Name:     "Family Campfire",
		Capacity: 5,
		Price:    decimal.NewFromInt(5500),
	}
)

type CartTestSuite struct {
	suite.Suite
	app         *application
	sessionRepo *mocks.MockSessionRepo
	cartRepo    *mocks.MockCartRepo
}

func (s *CartTestSuite) SetupTest() {
	s.sessionRepo = new(mocks.MockSessionRepo)
	s.cartRepo = new(mocks.MockCartRepo)

	s.app = newTestApplication(func(a *application) {
		a.sessionRepo = s.sessionRepo
		a.cartRepo = s.cartRepo
	})
}

func TestCartSuite(t *testing.T) {
	suite.Run(t, new(CartTestSuite))
}

func (s *CartTestSuite) TestCreateCartHandler() {
	tests := []struct {
		name           string
		input          api.CreateCartRequest
		setupMocks     func()
		wantStatus     int
		wantErrMessage string
		wantKind       string
		wantResponse   func(*api.CartResponse)
	}{
		{
			name:           "should fail when item list is empty",
			input:          api.CreateCartRequest{Items: []api.CartItemRequest{}},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: fmt.Sprintf(validator.ErrMinLength, "1"),
		},
		{
			name: "should fail when item type is unknown",
			input: api.CreateCartRequest{
				Items: []api.CartItemRequest{
					{SessionId: 1, Type: "premium"},
				},
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must be one of: individual, family, addon",
		},
		{
			name: "should fail when a session does not exist",
			input: api.CreateCartRequest{
				Items: []api.CartItemRequest{
					{SessionId: 99, ChildId: ptr(1), Type: "individual"},
				},
			},
			setupMocks: func() {
				s.sessionRepo.On("GetByIds", mock.Anything, []int{99}).
					Return(map[int]*domain.Session{}, nil)
			},
			wantStatus: http.StatusNotFound,
			wantKind:   string(domain.ErrKindSessionNotFound),
		},
		{
			name: "should fail when a role session gets no role",
			input: api.CreateCartRequest{
				Items: []api.CartItemRequest{
					{SessionId: 1, ChildId: ptr(1), Type: "individual"},
				},
			},
			setupMocks: func() {
				s.sessionRepo.On("GetByIds", mock.Anything, []int{1}).
					Return(map[int]*domain.Session{1: testRoleSession}, nil)
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   string(domain.ErrKindMissingRoleSelection),
		},
		{
			name: "should fail when the role does not belong to the session",
			input: api.CreateCartRequest{
				Items: []api.CartItemRequest{
					{SessionId: 1, RoleId: ptr(42), ChildId: ptr(1), Type: "individual"},
				},
			},
			setupMocks: func() {
				s.sessionRepo.On("GetByIds", mock.Anything, []int{1}).
					Return(map[int]*domain.Session{1: testRoleSession}, nil)
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   string(domain.ErrKindInvalidRoleId),
		},
		{
			name: "should price two items for distinct children at the middle tier",
			input: api.CreateCartRequest{
				Items: []api.CartItemRequest{
					{SessionId: 1, RoleId: ptr(1), ChildId: ptr(1), Type: "individual"},
					{SessionId: 1, RoleId: ptr(2), ChildId: ptr(2), Type: "individual"},
				},
			},
			setupMocks: func() {
				s.sessionRepo.On("GetByIds", mock.Anything, []int{1}).
					Return(map[int]*domain.Session{1: testRoleSession}, nil)
				s.cartRepo.On("Set", mock.Anything, mock.Anything, mock.Anything, cartTTL).
					Return(nil)
			},
			wantStatus: http.StatusCreated,
			wantResponse: func(resp *api.CartResponse) {
				want := &api.CartResponse{
					Items: []api.CartItemResponse{
						{
							SessionId: 1,
							RoleId:    ptr(1),
							ChildId:   ptr(1),
							Type:      "individual",
							Price:     decimal.NewFromInt(3200),
							Discount:  decimal.NewFromInt(300),
						},
						{
							SessionId: 1,
							RoleId:    ptr(2),
							ChildId:   ptr(2),
							Type:      "individual",
							Price:     decimal.NewFromInt(3200),
							Discount:  decimal.NewFromInt(300),
						},
					},
					OriginalTotal:  decimal.NewFromInt(6400),
					DiscountAmount: decimal.NewFromInt(600),
					FinalTotal:     decimal.NewFromInt(5800),
					Tier:           "300",
				}

				cmpOpts := cmpopts.IgnoreFields(api.CartItemResponse{}, "Id")

				diff := cmp.Diff(want, resp, cmpOpts)
				s.Empty(diff, "Response mismatch (-want +got):\n%s", diff)
			},
		},
		{
			name: "should not require a role for addon items",
			input: api.CreateCartRequest{
				Items: []api.CartItemRequest{
					{SessionId: 1, Type: "addon"},
				},
			},
			setupMocks: func() {
				s.sessionRepo.On("GetByIds", mock.Anything, []int{1}).
					Return(map[int]*domain.Session{1: testRoleSession}, nil)
				s.cartRepo.On("Set", mock.Anything, mock.Anything, mock.Anything, cartTTL).
					Return(nil)
			},
			wantStatus: http.StatusCreated,
			wantResponse: func(resp *api.CartResponse) {
				s.Equal("0", resp.Tier)
				s.True(resp.DiscountAmount.Equal(decimal.Zero))
			},
		},
		{
			name: "should fail when the cart store is unavailable",
			input: api.CreateCartRequest{
				Items: []api.CartItemRequest{
					{SessionId: 2, Type: "family", FamilyId: ptr(1)},
				},
			},
			setupMocks: func() {
				s.sessionRepo.On("GetByIds", mock.Anything, []int{2}).
					Return(map[int]*domain.Session{2: testOpenSession}, nil)
				s.cartRepo.On("Set", mock.Anything, mock.Anything, mock.Anything, cartTTL).
					Return(fmt.Errorf("redis down"))
			},
			wantStatus:     http.StatusInternalServerError,
			wantErrMessage: ErrInternalServer,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			defer s.sessionRepo.AssertExpectations(s.T())
			defer s.cartRepo.AssertExpectations(s.T())

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w, r := executeRequest(s.T(), http.MethodPost, "/cart", tt.input)
			r = setupTestSession(s.T(), s.app, r)

			handler := s.app.sessionManager.LoadAndSave(http.HandlerFunc(s.app.CreateCartHandler))
			handler.ServeHTTP(w, r)

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantKind != "" {
				var errorResp api.ErrorResponse
				s.Require().NoError(json.NewDecoder(w.Body).Decode(&errorResp))
				s.Equal(tt.wantKind, errorResp.Kind)
				return
			}

			if tt.wantResponse != nil {
				var response api.CartResponse
				s.Require().NoError(json.NewDecoder(w.Body).Decode(&response))
				tt.wantResponse(&response)
				return
			}

			checkErrorResponse(s.T(), w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}

func (s *CartTestSuite) TestGetCartHandler() {
	s.Run("should return 404 when no cart exists", func() {
		s.SetupTest()

		s.cartRepo.On("Get", mock.Anything, mock.Anything).
			Return(nil, domain.ErrCartNotFound)

		w, r := executeRequest(s.T(), http.MethodGet, "/cart", nil)
		r = setupTestSession(s.T(), s.app, r)

		handler := s.app.sessionManager.LoadAndSave(http.HandlerFunc(s.app.GetCartHandler))
		handler.ServeHTTP(w, r)

		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("should return the stored cart", func() {
		s.SetupTest()

		cart := domain.NewCart([]domain.CartItem{
			{ID: "item-1", SessionID: 2, FamilyID: ptr(1), Type: domain.CartItemFamily, Price: decimal.NewFromInt(5500)},
		})
		s.cartRepo.On("Get", mock.Anything, mock.Anything).Return(&cart, nil)

		w, r := executeRequest(s.T(), http.MethodGet, "/cart", nil)
		r = setupTestSession(s.T(), s.app, r)

		handler := s.app.sessionManager.LoadAndSave(http.HandlerFunc(s.app.GetCartHandler))
		handler.ServeHTTP(w, r)

		s.Equal(http.StatusOK, w.Code)

		var response api.CartResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&response))
		s.Equal("300", response.Tier)
		s.True(response.FinalTotal.Equal(decimal.NewFromInt(5200)))
	})
}
