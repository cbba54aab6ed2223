package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secure-rag/internal/auth"
	"secure-rag/internal/models"
	"secure-rag/internal/retrieval"
)

type fakeAuth struct {
	role models.AccessTier
}

func (a fakeAuth) Authenticate(_ context.Context, creds auth.Credentials) (models.AccessTier, error) {
	if creds.Password != "pw" {
		return "", models.ErrUnauthorized
	}
	return a.role, nil
}

type fakeRetriever struct {
	result *retrieval.Result
	err    error
	calls  int
}

func (r *fakeRetriever) Retrieve(_ context.Context, role models.AccessTier, _ string) (*retrieval.Result, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

type fakeGenerator struct {
	answer string
	err    error
	calls  int
	system string
	user   string
}

func (g *fakeGenerator) Generate(_ context.Context, system, user string) (string, error) {
	g.calls++
	g.system, g.user = system, user
	return g.answer, g.err
}

func withItems() *retrieval.Result {
	items := []models.RetrievedItem{{ID: "md:a.md:0", Text: "Revenue was 10M.", Provenance: map[string]string{"source": "a.md"}, Distance: 0.2}}
	return &retrieval.Result{Items: items, Context: retrieval.BuildContext(items)}
}

func TestAsk(t *testing.T) {
	gen := &fakeGenerator{answer: "10M\nSources: a.md, -"}
	s := NewService(fakeAuth{role: models.TierFinance}, &fakeRetriever{result: withItems()}, gen)

	answer, err := s.Ask(context.Background(), auth.Credentials{Login: "f", Password: "pw"}, "Q2 revenue?")
	require.NoError(t, err)
	assert.Equal(t, "10M\nSources: a.md, -", answer.Text)
	assert.False(t, answer.NoInformation)
	require.Len(t, answer.Items, 1)

	assert.Equal(t, models.SystemPrompt, gen.system)
	assert.Contains(t, gen.user, "Context:\n[SRC 1]\n")
	assert.Contains(t, gen.user, "\n\nQuestion:\nQ2 revenue?")
}

func TestAsk_Unauthorized(t *testing.T) {
	r := &fakeRetriever{result: withItems()}
	gen := &fakeGenerator{}
	s := NewService(fakeAuth{role: models.TierHR}, r, gen)

	_, err := s.Ask(context.Background(), auth.Credentials{Login: "x", Password: "bad"}, "q")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Zero(t, r.calls)
	assert.Zero(t, gen.calls)
}

func TestAskAs_NoInformationSkipsGenerator(t *testing.T) {
	gen := &fakeGenerator{answer: "should not be used"}
	s := NewService(fakeAuth{}, &fakeRetriever{result: &retrieval.Result{}}, gen)

	answer, err := s.AskAs(context.Background(), models.TierHR, "salary")
	require.NoError(t, err)
	assert.Equal(t, models.NoInformation, answer.Text)
	assert.True(t, answer.NoInformation)
	assert.Empty(t, answer.Items)
	assert.Zero(t, gen.calls)
}

func TestAskAs_Faults(t *testing.T) {
	searchFault := errors.Join(models.ErrSearch, errors.New("timeout"))
	s := NewService(fakeAuth{}, &fakeRetriever{err: searchFault}, &fakeGenerator{})
	_, err := s.AskAs(context.Background(), models.TierHR, "q")
	assert.ErrorIs(t, err, models.ErrSearch)

	genFault := errors.New("rate limited")
	s = NewService(fakeAuth{}, &fakeRetriever{result: withItems()}, &fakeGenerator{err: genFault})
	_, err = s.AskAs(context.Background(), models.TierFinance, "q")
	assert.ErrorIs(t, err, models.ErrGeneration)
	assert.ErrorIs(t, err, genFault)
}
