package app

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/campscape/registration-engine/api"
	"github.com/campscape/registration-engine/internal/domain"
	"github.com/campscape/registration-engine/internal/mocks"
	"github.com/campscape/registration-engine/internal/waitlist"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type WaitlistTestSuite struct {
	suite.Suite
	app          *application
	sessionRepo  *mocks.MockSessionRepo
	waitlistRepo *waitlist.MemoryRepository
}

func (s *WaitlistTestSuite) SetupTest() {
	s.sessionRepo = new(mocks.MockSessionRepo)
	s.waitlistRepo = waitlist.NewMemoryRepository()

	s.app = newTestApplication(func(a *application) {
		a.sessionRepo = s.sessionRepo
		a.waitlistRepo = s.waitlistRepo
	})
}

func TestWaitlistSuite(t *testing.T) {
	suite.Run(t, new(WaitlistTestSuite))
}

func (s *WaitlistTestSuite) addEntry(parentID int) *domain.WaitlistEntry {
	entry, err := s.app.waitlist.Add(context.Background(), 2, nil, waitlist.Requester{
		ParentID: parentID,
		Email:    "parent@example.com",
	})
	s.Require().NoError(err)

	return entry
}

func (s *WaitlistTestSuite) TestAddWaitlistEntry() {
	s.Run("should queue a new entry", func() {
		s.SetupTest()
		s.sessionRepo.On("GetById", mock.Anything, 2).Return(testOpenSession, nil)

		input := api.AddWaitlistRequest{ParentId: 9, Email: "parent@example.com"}

		w, r := executeRequest(s.T(), http.MethodPost, "/sessions/2/waitlist", input)
		r = withUrlParams(r, map[string]string{"sessionId": "2"})

		s.app.AddWaitlistEntry(w, r)

		s.Equal(http.StatusCreated, w.Code)

		var resp api.WaitlistResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.True(resp.Success)
		s.Require().NotNil(resp.Data)
		s.Equal("waiting", resp.Data.Status)
		s.Equal(int64(1), resp.Data.Position)
	})

	s.Run("should reject an unknown session", func() {
		s.SetupTest()
		s.sessionRepo.On("GetById", mock.Anything, mock.Anything).Return(nil, domain.ErrRecordNotFound)

		input := api.AddWaitlistRequest{ParentId: 9}

		w, r := executeRequest(s.T(), http.MethodPost, "/sessions/99/waitlist", input)
		r = withUrlParams(r, map[string]string{"sessionId": "99"})

		s.app.AddWaitlistEntry(w, r)

		s.Equal(http.StatusNotFound, w.Code)

		var resp api.WaitlistResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.False(resp.Success)
		s.Require().NotNil(resp.Error)
		s.Equal(string(domain.ErrKindSessionNotFound), resp.Error.Kind)
	})

	s.Run("should reject a role on a role-less session", func() {
		s.SetupTest()
		s.sessionRepo.On("GetById", mock.Anything, 2).Return(testOpenSession, nil)

		input := api.AddWaitlistRequest{ParentId: 9, RoleId: ptr(1)}

		w, r := executeRequest(s.T(), http.MethodPost, "/sessions/2/waitlist", input)
		r = withUrlParams(r, map[string]string{"sessionId": "2"})

		s.app.AddWaitlistEntry(w, r)

		s.Equal(http.StatusUnprocessableEntity, w.Code)

		var resp api.WaitlistResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.Require().NotNil(resp.Error)
		s.Equal(string(domain.ErrKindNoRolesRequired), resp.Error.Kind)
	})

	s.Run("should reject an invalid email", func() {
		s.SetupTest()

		input := api.AddWaitlistRequest{ParentId: 9, Email: "not-an-email"}

		w, r := executeRequest(s.T(), http.MethodPost, "/sessions/2/waitlist", input)
		r = withUrlParams(r, map[string]string{"sessionId": "2"})

		s.app.AddWaitlistEntry(w, r)

		s.Equal(http.StatusUnprocessableEntity, w.Code)
	})
}

func (s *WaitlistTestSuite) TestRemoveWaitlistEntry() {
	s.Run("should remove a waiting entry", func() {
		s.SetupTest()
		s.sessionRepo.On("GetById", mock.Anything, 2).Return(testOpenSession, nil)

		entry := s.addEntry(9)

		w, r := executeRequest(s.T(), http.MethodDelete, "/waitlist/"+entry.ID, nil)
		r = withUrlParams(r, map[string]string{"entryId": entry.ID})

		s.app.RemoveWaitlistEntry(w, r)

		s.Equal(http.StatusOK, w.Code)

		var resp api.WaitlistResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.True(resp.Success)
	})

	s.Run("should report an invalid state for a second removal", func() {
		s.SetupTest()
		s.sessionRepo.On("GetById", mock.Anything, 2).Return(testOpenSession, nil)

		entry := s.addEntry(9)
		s.Require().NoError(s.app.waitlist.Remove(context.Background(), entry.ID))

		w, r := executeRequest(s.T(), http.MethodDelete, "/waitlist/"+entry.ID, nil)
		r = withUrlParams(r, map[string]string{"entryId": entry.ID})

		s.app.RemoveWaitlistEntry(w, r)

		s.Equal(http.StatusConflict, w.Code)

		var resp api.WaitlistResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.Require().NotNil(resp.Error)
		s.Equal(string(domain.ErrKindWaitlistInvalidState), resp.Error.Kind)
	})

	s.Run("should return 404 for an unknown entry", func() {
		s.SetupTest()

		w, r := executeRequest(s.T(), http.MethodDelete, "/waitlist/missing", nil)
		r = withUrlParams(r, map[string]string{"entryId": "missing"})

		s.app.RemoveWaitlistEntry(w, r)

		s.Equal(http.StatusNotFound, w.Code)

		var resp api.WaitlistResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.Equal(string(domain.ErrKindWaitlistEntryNotFound), resp.Error.Kind)
	})
}

func (s *WaitlistTestSuite) TestPromoteWaitlistEntry() {
	s.Run("should promote a waiting entry into a free seat", func() {
		s.SetupTest()
		s.sessionRepo.On("GetById", mock.Anything, 2).Return(testOpenSession, nil)

		entry := s.addEntry(9)

		w, r := executeRequest(s.T(), http.MethodPost, "/waitlist/"+entry.ID+"/promote", nil)
		r = withUrlParams(r, map[string]string{"entryId": entry.ID})

		s.app.PromoteWaitlistEntry(w, r)

		s.Equal(http.StatusOK, w.Code)

		var resp api.WaitlistResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.True(resp.Success)
		s.Require().NotNil(resp.Data)
		s.Equal("promoted", resp.Data.Status)
	})

	s.Run("should report the capacity kind when the session is full", func() {
		s.SetupTest()
		s.sessionRepo.On("GetById", mock.Anything, 2).Return(testOpenSession, nil)

		ctx := context.Background()
		for i := 0; i < testOpenSession.Capacity; i++ {
			s.Require().NoError(s.app.capacity.Reserve(ctx, 2, nil, 1))
		}

		entry := s.addEntry(9)

		w, r := executeRequest(s.T(), http.MethodPost, "/waitlist/"+entry.ID+"/promote", nil)
		r = withUrlParams(r, map[string]string{"entryId": entry.ID})

		s.app.PromoteWaitlistEntry(w, r)

		s.Equal(http.StatusConflict, w.Code)

		var resp api.WaitlistResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.False(resp.Success)
		s.Equal(string(domain.ErrKindSessionCapacityExceeded), resp.Error.Kind)

		// The entry must survive the failed promotion untouched.
		stored, err := s.waitlistRepo.GetById(ctx, entry.ID)
		s.Require().NoError(err)
		s.Equal(domain.WaitlistStatusWaiting, stored.Status)
	})
}

func (s *WaitlistTestSuite) TestListSessionWaitlist() {
	s.Run("should list entries in FIFO order", func() {
		s.SetupTest()
		s.sessionRepo.On("GetById", mock.Anything, 2).Return(testOpenSession, nil)

		first := s.addEntry(1)
		second := s.addEntry(2)

		w, r := executeRequest(s.T(), http.MethodGet, "/sessions/2/waitlist", nil)
		r = withUrlParams(r, map[string]string{"sessionId": "2"})

		s.app.ListSessionWaitlist(w, r)

		s.Equal(http.StatusOK, w.Code)

		var resp api.WaitlistListResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.True(resp.Success)
		s.Require().Len(resp.Data, 2)
		s.Equal(first.ID, resp.Data[0].Id)
		s.Equal(second.ID, resp.Data[1].Id)
	})

	s.Run("should filter by status", func() {
		s.SetupTest()
		s.sessionRepo.On("GetById", mock.Anything, 2).Return(testOpenSession, nil)

		entry := s.addEntry(1)
		s.addEntry(2)
		s.Require().NoError(s.app.waitlist.Remove(context.Background(), entry.ID))

		w, r := executeRequest(s.T(), http.MethodGet, "/sessions/2/waitlist?status=waiting", nil)
		r = withUrlParams(r, map[string]string{"sessionId": "2"})

		s.app.ListSessionWaitlist(w, r)

		s.Equal(http.StatusOK, w.Code)

		var resp api.WaitlistListResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.Require().Len(resp.Data, 1)
		s.Equal("waiting", resp.Data[0].Status)
	})
}

func (s *WaitlistTestSuite) TestListParentWaitlist() {
	s.Run("should return the parent's entries with metadata", func() {
		s.SetupTest()
		s.sessionRepo.On("GetById", mock.Anything, 2).Return(testOpenSession, nil)

		s.addEntry(9)
		s.addEntry(9)
		s.addEntry(4)

		w, r := executeRequest(s.T(), http.MethodGet, "/parents/9/waitlist", nil)
		r = withUrlParams(r, map[string]string{"parentId": "9"})

		s.app.ListParentWaitlist(w, r)

		s.Equal(http.StatusOK, w.Code)

		var resp api.WaitlistListResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.True(resp.Success)
		s.Len(resp.Data, 2)
		s.Require().NotNil(resp.Metadata)
		s.Equal(2, resp.Metadata.TotalRecords)
	})
}
