package rag

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"secure-rag/internal/auth"
	"secure-rag/internal/models"
	"secure-rag/internal/retrieval"
)

type Retriever interface {
	Retrieve(ctx context.Context, role models.AccessTier, question string) (*retrieval.Result, error)
}

type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Answer is what a caller gets back for a question. Items are the sources
// the answer was generated from.
type Answer struct {
	Text          string                 `json:"answer"`
	Items         []models.RetrievedItem `json:"docs,omitempty"`
	NoInformation bool                   `json:"no_information"`
}

type Service struct {
	auth      auth.Authenticator
	retriever Retriever
	generator Generator
}

func NewService(authenticator auth.Authenticator, retriever Retriever, generator Generator) *Service {
	return &Service{auth: authenticator, retriever: retriever, generator: generator}
}

// Authenticate resolves the role of the caller.
func (s *Service) Authenticate(ctx context.Context, creds auth.Credentials) (models.AccessTier, error) {
	return s.auth.Authenticate(ctx, creds)
}

// Ask authenticates the caller and answers the question from the context
// its role is allowed to read.
func (s *Service) Ask(ctx context.Context, creds auth.Credentials, question string) (*Answer, error) {
	role, err := s.auth.Authenticate(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s.AskAs(ctx, role, question)
}

// AskAs answers for an already authenticated role. The generator is not
// called when retrieval found nothing usable.
func (s *Service) AskAs(ctx context.Context, role models.AccessTier, question string) (*Answer, error) {
	res, err := s.retriever.Retrieve(ctx, role, question)
	if err != nil {
		return nil, err
	}
	if res.NoInformation() {
		return &Answer{Text: models.NoInformation, NoInformation: true}, nil
	}

	userPrompt := fmt.Sprintf(models.UserPromptTemplate, res.Context, question)
	text, err := s.generator.Generate(ctx, models.SystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrGeneration, err)
	}

	log.Debug().Str("role", string(role)).Int("sources", len(res.Items)).Msg("Answer generated")
	return &Answer{Text: text, Items: res.Items}, nil
}
