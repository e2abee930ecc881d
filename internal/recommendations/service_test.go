package recommendations

import (
	"context"
	"errors"
	"io"
	"testing"

	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/divinestore/storefront-backend/pkg/logger"
	"github.com/divinestore/storefront-backend/pkg/openai"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	out      string
	err      error
	messages []openai.Message
}

func (s *stubCompleter) Complete(_ context.Context, messages []openai.Message) (string, error) {
	s.messages = messages
	return s.out, s.err
}

func newTestService(t *testing.T, llm Completer) Service {
	t.Helper()
	svc, err := NewService(llm, nil, logger.New(logger.Options{ServiceName: "rec-test", Output: io.Discard}))
	require.NoError(t, err)
	return svc
}

func TestRecommendBuildsPrompt(t *testing.T) {
	llm := &stubCompleter{out: "  Try a Sphatik mala.  "}
	svc := newTestService(t, llm)

	resp, err := svc.Recommend(context.Background(), Request{BrowsingHistory: "Rudraksha Mala", SpiritualInterests: "meditation"})
	require.NoError(t, err)
	require.Equal(t, "Try a Sphatik mala.", resp.Recommendations)
	require.Len(t, llm.messages, 2)
	require.Contains(t, llm.messages[0].Content, "expert in Hindu spiritual items")
	require.Contains(t, llm.messages[1].Content, "Rudraksha Mala")
	require.Contains(t, llm.messages[1].Content, "meditation")
}

func TestRecommendValidation(t *testing.T) {
	llm := &stubCompleter{out: "x"}
	svc := newTestService(t, llm)

	_, err := svc.Recommend(context.Background(), Request{BrowsingHistory: " ", SpiritualInterests: "bhakti"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Nil(t, llm.messages)
}

func TestRecommendDependencyFailures(t *testing.T) {
	req := Request{BrowsingHistory: "Diya", SpiritualInterests: "puja"}

	_, err := newTestService(t, nil).Recommend(context.Background(), req)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	_, err = newTestService(t, &stubCompleter{out: "   "}).Recommend(context.Background(), req)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	_, err = newTestService(t, &stubCompleter{err: errors.New("timeout")}).Recommend(context.Background(), req)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}
