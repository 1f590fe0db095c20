package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elysium-stays/bookingledger/internal/domain"
	"github.com/elysium-stays/bookingledger/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.BookingRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRecord), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRecord), args.Error(1)
}

func (m *MockBookingUseCase) ConfirmBooking(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRecord), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRecord), args.Error(1)
}

func (m *MockBookingUseCase) DisputeBooking(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRecord), args.Error(1)
}

func (m *MockBookingUseCase) ResolveBooking(ctx context.Context, bookingID domain.BookingID) (*domain.BookingRecord, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRecord), args.Error(1)
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	input := booking.CreateBookingInput{
		UserID:       "3h389aomvnkl30eccvir3j",
		ProviderCode: "F8WX5LZ",
		ResourceID:   "12345",
		Amount:       10_000_000_000_000_000,
	}
	body, _ := json.Marshal(createBookingRequest{
		UserID:       input.UserID,
		ProviderCode: input.ProviderCode,
		ResourceID:   input.ResourceID,
		Amount:       input.Amount,
	})
	c.Request = httptest.NewRequest("POST", "/api/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	id := domain.NewBookingID()
	record := &domain.BookingRecord{
		BookingID:       id,
		UserID:          input.UserID,
		ProviderCode:    input.ProviderCode,
		ResourceID:      input.ResourceID,
		Amount:          input.Amount,
		Status:          domain.BookingStatusPending,
		TransactionHash: "0xdeadbeef",
	}

	mockService.On("CreateBooking", c.Request.Context(), input).Return(record, nil)

	handler.create(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response createBookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "Booking transaction submitted successfully", response.Message)
	assert.Equal(t, id.String(), response.BookingID)
	assert.Equal(t, "0xdeadbeef", response.TransactionHash)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_failure(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(createBookingRequest{
		UserID:       "u1",
		ProviderCode: "ABCDEFG",
		ResourceID:   "r1",
		Amount:       100,
	})
	c.Request = httptest.NewRequest("POST", "/api/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreateBooking", c.Request.Context(), mock.Anything).Return(nil, domain.ErrSubmissionFailed)

	handler.create(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "Failed to create booking", response["error"])
	assert.NotEmpty(t, response["details"])
}

func TestBookingHandler_create_invalidArgument(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(createBookingRequest{UserID: "u1"})
	c.Request = httptest.NewRequest("POST", "/api/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreateBooking", c.Request.Context(), mock.Anything).Return(nil, domain.ErrInvalidArgument)

	handler.create(c)

	// Creation failures all share one status and shape, whatever the cause.
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "Failed to create booking", response["error"])
	assert.NotEmpty(t, response["details"])
}

func TestBookingHandler_get(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	id := domain.NewBookingID()
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	c.Request = httptest.NewRequest("GET", "/api/bookings/"+id.String(), nil)

	record := &domain.BookingRecord{
		BookingID:       id,
		UserID:          "u1",
		ProviderCode:    "F8WX5LZ",
		ResourceID:      "r1",
		Amount:          100,
		Status:          domain.BookingStatusPending,
		TransactionHash: "0x1",
	}

	mockService.On("GetBooking", c.Request.Context(), id).Return(record, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, id.String(), response.BookingID)
	assert.Equal(t, "PENDING", response.Status)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_get_notFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	id := domain.NewBookingID()
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	c.Request = httptest.NewRequest("GET", "/api/bookings/"+id.String(), nil)

	mockService.On("GetBooking", c.Request.Context(), id).Return(nil, domain.ErrNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_get_badID(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "not-hex"}}
	c.Request = httptest.NewRequest("GET", "/api/bookings/not-hex", nil)

	handler.get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GetBooking")
}

func TestBookingHandler_health(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.Register(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Booking API is running...", w.Body.String())
}

var _ booking.BookingUseCase = (*MockBookingUseCase)(nil)
