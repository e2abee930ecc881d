package recommendations

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/divinestore/storefront-backend/pkg/logger"
	"github.com/divinestore/storefront-backend/pkg/metrics"
	"github.com/divinestore/storefront-backend/pkg/openai"
)

const (
	dependencyName = "openai"
	maxInputLength = 2000

	systemPrompt = "You are an expert in Hindu spiritual items and can provide personalized product " +
		"recommendations based on a user's browsing history and spiritual interests."
	userPromptTemplate = "Based on the following browsing history: %s\n" +
		"And the following spiritual interests: %s\n\n" +
		"Provide personalized product recommendations that the user might be interested in."
)

// Request carries the shopper's context.
type Request struct {
	BrowsingHistory    string `json:"browsing_history" validate:"required,max=2000"`
	SpiritualInterests string `json:"spiritual_interests" validate:"required,max=2000"`
}

// Response is the generated recommendation text.
type Response struct {
	Recommendations string `json:"recommendations"`
}

// Service generates free-text product recommendations.
type Service interface {
	Recommend(ctx context.Context, req Request) (*Response, error)
}

// Completer is the chat model used to phrase recommendations.
type Completer interface {
	Complete(ctx context.Context, messages []openai.Message) (string, error)
}

type service struct {
	llm     Completer
	metrics *metrics.DependencyMetrics
	logger  *logger.Logger
}

// NewService builds the recommendation generator. llm may be nil when no API
// key is configured; requests then fail with DEPENDENCY_ERROR.
func NewService(llm Completer, m *metrics.DependencyMetrics, logg *logger.Logger) (Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{llm: llm, metrics: m, logger: logg}, nil
}

func (s *service) Recommend(ctx context.Context, req Request) (*Response, error) {
	history := strings.TrimSpace(req.BrowsingHistory)
	interests := strings.TrimSpace(req.SpiritualInterests)
	if history == "" || interests == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "browsing_history and spiritual_interests are required")
	}
	if len(history) > maxInputLength || len(interests) > maxInputLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "input too long")
	}
	if s.llm == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "recommendations are not configured")
	}

	started := time.Now()
	text, err := s.llm.Complete(ctx, BuildPrompt(history, interests))
	s.metrics.Track(dependencyName, started, err)
	if err != nil {
		s.logger.Warn(ctx, fmt.Sprintf("recommendation completion failed: %v", err))
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recommendation completion failed")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "recommendation model returned no output")
	}
	return &Response{Recommendations: text}, nil
}

// BuildPrompt renders the chat messages sent to the model.
func BuildPrompt(history, interests string) []openai.Message {
	return []openai.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf(userPromptTemplate, history, interests)},
	}
}
