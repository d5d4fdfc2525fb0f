package professionals

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/medibook-api/internal/types"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ListVerified(ctx context.Context, filter types.ProfessionalFilter) ([]types.PublicProfessional, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.PublicProfessional), args.Error(1)
}

func (m *MockService) Invalidate() { m.Called() }

func TestHandlerListVerified(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, discardLogger())
		svc.On("ListVerified", mock.Anything, types.ProfessionalFilter{
			Role: types.RoleDoctor, City: "Lisbon", Specialty: "cardiology", Limit: 20,
		}).Return([]types.PublicProfessional{{ID: uuid.New(), Name: "Dr. A", Role: types.RoleDoctor}}, nil).Once()

		rr := httptest.NewRecorder()
		h.ListVerified(rr, httptest.NewRequest(http.MethodGet, "/professionals?role=doctor&city=Lisbon&specialty=cardiology", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var body []map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.Len(t, body, 1)
		assert.Equal(t, "Dr. A", body[0]["name"])
		assert.NotContains(t, body[0], "email")
		svc.AssertExpectations(t)
	})

	t.Run("InvalidRole", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc, discardLogger())
		svc.On("ListVerified", mock.Anything, mock.Anything).Return(nil, types.ErrValidation).Once()

		rr := httptest.NewRecorder()
		h.ListVerified(rr, httptest.NewRequest(http.MethodGet, "/professionals?role=admin", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
