// Package service contains the application services that sit between the
// HTTP handlers and the retrieval, storage, and LLM layers.
package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks property-agent/internal/service LLMClient
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_answer_service.go -package=mocks -mock_names=AnswerService=MockAnswerService property-agent/internal/service AnswerService

import (
	"context"
	"fmt"
	"strings"

	"property-agent/internal/contextutil"
	"property-agent/internal/llm"
	"property-agent/internal/retrieval"
)

const answerSystemPrompt = "You are a property management assistant. Answer the " +
	"question using only the document excerpts provided. Each excerpt is labeled " +
	"with its source document and chunk number. If the excerpts do not contain " +
	"the answer, say so instead of guessing."

const noDocumentsAnswer = "No relevant documents were found for this property. " +
	"Try adding documents first."

// LLMClient is the chat capability the answer service needs.
// This interface is defined from the service layer's perspective (consumer-first).
type LLMClient interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// AnswerRequest is a natural-language question about a property.
type AnswerRequest struct {
	Question   string `json:"question"`
	PropertyID string `json:"property_id,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// AnswerResponse carries the generated answer and the chunks it was
// grounded on.
type AnswerResponse struct {
	Answer  string                   `json:"answer"`
	Sources []retrieval.SearchResult `json:"sources"`
	Status  string                   `json:"status"`
}

// AnswerService answers questions about properties using retrieved
// document context.
type AnswerService interface {
	Answer(ctx context.Context, req AnswerRequest) (AnswerResponse, error)
}

type answerService struct {
	engine retrieval.Engine
	llm    LLMClient
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(engine retrieval.Engine, llmClient LLMClient) AnswerService {
	return &answerService{
		engine: engine,
		llm:    llmClient,
	}
}

func (s *answerService) Answer(ctx context.Context, req AnswerRequest) (AnswerResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Question) == "" {
		return AnswerResponse{}, &ValidationError{
			Field:   "question",
			Message: "cannot be empty",
		}
	}

	search, err := s.engine.Search(ctx, retrieval.SearchRequest{
		Query:      req.Question,
		PropertyID: req.PropertyID,
		Limit:      req.Limit,
	})
	if err != nil {
		logger.ErrorContext(ctx, "document search failed", "error", err)
		return AnswerResponse{}, WrapError(err, "failed to search documents")
	}

	if search.Status == retrieval.StatusNoResults {
		logger.InfoContext(ctx, "no documents matched question", "property_id", req.PropertyID)
		return AnswerResponse{
			Answer:  noDocumentsAnswer,
			Sources: []retrieval.SearchResult{},
			Status:  retrieval.StatusNoResults,
		}, nil
	}

	answer, err := s.llm.ChatWithMessages(ctx, []llm.Message{
		{Role: "system", Content: answerSystemPrompt},
		{Role: "user", Content: buildPrompt(req.Question, search.Results)},
	}, llm.ChatParams{})
	if err != nil {
		logger.ErrorContext(ctx, "failed to generate answer", "error", err)
		return AnswerResponse{}, fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	logger.InfoContext(ctx, "question answered",
		"property_id", req.PropertyID,
		"sources", len(search.Results))
	return AnswerResponse{
		Answer:  answer,
		Sources: search.Results,
		Status:  retrieval.StatusOK,
	}, nil
}

// buildPrompt formats the retrieved chunks as labeled excerpts followed
// by the question.
func buildPrompt(question string, results []retrieval.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%s - Chunk %d] (Score: %.2f)\n%s", r.DocumentName, r.ChunkIndex, r.Score, r.Text)
	}
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	return b.String()
}
