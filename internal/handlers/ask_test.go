package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"property-agent/internal/retrieval"
	"property-agent/internal/service"
	"property-agent/internal/service/mocks"
)

func TestAskHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		mockSetup  func(*mocks.MockAnswerService)
		wantStatus int
	}{
		{
			name: "successful answer",
			body: service.AnswerRequest{Question: "Are pets allowed?", PropertyID: "prop-1"},
			mockSetup: func(m *mocks.MockAnswerService) {
				m.EXPECT().
					Answer(gomock.Any(), service.AnswerRequest{Question: "Are pets allowed?", PropertyID: "prop-1"}).
					Return(service.AnswerResponse{
						Answer: "Yes, with a deposit.",
						Status: retrieval.StatusOK,
					}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid JSON body",
			body:       "not json",
			mockSetup:  func(m *mocks.MockAnswerService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "empty question",
			body: service.AnswerRequest{Question: ""},
			mockSetup: func(m *mocks.MockAnswerService) {
				m.EXPECT().
					Answer(gomock.Any(), gomock.Any()).
					Return(service.AnswerResponse{}, &service.ValidationError{Field: "question", Message: "cannot be empty"})
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "llm unavailable",
			body: service.AnswerRequest{Question: "Are pets allowed?"},
			mockSetup: func(m *mocks.MockAnswerService) {
				m.EXPECT().
					Answer(gomock.Any(), gomock.Any()).
					Return(service.AnswerResponse{}, service.ErrExternalService)
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name: "vector index unavailable",
			body: service.AnswerRequest{Question: "Are pets allowed?"},
			mockSetup: func(m *mocks.MockAnswerService) {
				m.EXPECT().
					Answer(gomock.Any(), gomock.Any()).
					Return(service.AnswerResponse{}, retrieval.ErrIndexUnavailable)
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			answers := mocks.NewMockAnswerService(ctrl)
			tt.mockSetup(answers)
			handler := NewAskHandler(answers)

			var body bytes.Buffer
			if s, ok := tt.body.(string); ok {
				body.WriteString(s)
			} else {
				json.NewEncoder(&body).Encode(tt.body)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/ask", &body))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}
