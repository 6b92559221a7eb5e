package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/trackmystartup/platform/internal/http/response"
	authservice "github.com/trackmystartup/platform/internal/services/auth"
)

type mockService struct{ mock.Mock }

func (m *mockService) Register(ctx context.Context, req authservice.RegisterRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func TestRegisterHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cases := []struct {
		name           string
		body           string
		mockUID        string
		mockError      error
		expectedStatus int
		expectedError  string
	}{
		{
			name: "успешная регистрация инвестора",
			body: `{"email":"inv@example.com","name":"Investor","password":"secret-pass","role":"Investor"}`,
			mockUID:        "uid-1",
			expectedStatus: http.StatusOK,
		},
		{
			name: "успешная регистрация стартапа с названием",
			body: `{"email":"founder@acme.io","name":"Founder","password":"secret-pass","role":"Startup","startup_name":"Acme"}`,
			mockUID:        "uid-2",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "некорректный JSON",
			body:           `{"email":`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid request body",
		},
		{
			name:           "пустая почта",
			body:           `{"name":"NoMail","password":"secret-pass","role":"Investor"}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "field Email is a required field",
		},
		{
			name:           "короткий пароль",
			body:           `{"email":"a@b.c","name":"Short","password":"short","role":"Investor"}`,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "неизвестная роль",
			body:           `{"email":"a@b.c","name":"Who","password":"secret-pass","role":"Bookkeeper"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "unknown role",
		},
		{
			name: "ошибка сервиса",
			body: `{"email":"a@b.c","name":"Broken","password":"secret-pass","role":"Investor"}`,
			mockError:      errors.New("db down"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "could not register user",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := new(mockService)
			if tc.mockUID != "" || tc.mockError != nil {
				service.On("Register", mock.Anything, mock.Anything).
					Return(tc.mockUID, tc.mockError).Once()
			}
			handler := New(log, service)

			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(tc.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatus, rec.Code)
			if tc.expectedError != "" {
				var resp response.Response
				assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Contains(t, resp.Error, tc.expectedError)
			}
			service.AssertExpectations(t)
		})
	}
}
