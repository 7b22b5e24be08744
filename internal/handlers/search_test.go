package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"property-agent/internal/retrieval"
	"property-agent/internal/retrieval/mocks"
)

func TestSearchHandler_ServeHTTP(t *testing.T) {
	results := []retrieval.SearchResult{
		{Text: "Pets allowed.", DocumentName: "Lease Terms", ChunkIndex: 0, Score: 0.92},
	}

	tests := []struct {
		name       string
		body       any
		mockSetup  func(*mocks.MockEngine)
		wantStatus int
		wantBody   func(t *testing.T, resp retrieval.SearchResponse)
	}{
		{
			name: "results found",
			body: retrieval.SearchRequest{Query: "pets?", PropertyID: "prop-1"},
			mockSetup: func(m *mocks.MockEngine) {
				m.EXPECT().
					Search(gomock.Any(), retrieval.SearchRequest{Query: "pets?", PropertyID: "prop-1"}).
					Return(retrieval.SearchResponse{Results: results, Status: retrieval.StatusOK}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody: func(t *testing.T, resp retrieval.SearchResponse) {
				if resp.Status != retrieval.StatusOK || len(resp.Results) != 1 {
					t.Errorf("unexpected response: %+v", resp)
				}
			},
		},
		{
			name: "no results is a normal response",
			body: retrieval.SearchRequest{Query: "gym?"},
			mockSetup: func(m *mocks.MockEngine) {
				m.EXPECT().
					Search(gomock.Any(), gomock.Any()).
					Return(retrieval.SearchResponse{Results: []retrieval.SearchResult{}, Status: retrieval.StatusNoResults}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody: func(t *testing.T, resp retrieval.SearchResponse) {
				if resp.Status != retrieval.StatusNoResults {
					t.Errorf("status = %q, want no_results", resp.Status)
				}
			},
		},
		{
			name:       "invalid JSON body",
			body:       "not json",
			mockSetup:  func(m *mocks.MockEngine) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "invalid request maps to 400",
			body: retrieval.SearchRequest{},
			mockSetup: func(m *mocks.MockEngine) {
				m.EXPECT().
					Search(gomock.Any(), gomock.Any()).
					Return(retrieval.SearchResponse{}, retrieval.ErrInvalidRequest)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "embedding backend down",
			body: retrieval.SearchRequest{Query: "pets?"},
			mockSetup: func(m *mocks.MockEngine) {
				m.EXPECT().
					Search(gomock.Any(), gomock.Any()).
					Return(retrieval.SearchResponse{}, retrieval.ErrEmbeddingUnavailable)
			},
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			engine := mocks.NewMockEngine(ctrl)
			tt.mockSetup(engine)
			handler := NewSearchHandler(engine)

			var body bytes.Buffer
			if s, ok := tt.body.(string); ok {
				body.WriteString(s)
			} else {
				json.NewEncoder(&body).Encode(tt.body)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/search", &body))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantBody != nil {
				var resp retrieval.SearchResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				tt.wantBody(t, resp)
			}
		})
	}
}
