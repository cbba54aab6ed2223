package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"secure-rag/internal/models"
)

// VectorSearcher is the read side of the vector store. where is an AND of
// metadata equality filters.
type VectorSearcher interface {
	Search(ctx context.Context, text string, count int, where map[string]string) ([]models.SearchHit, error)
}

// QueryPlan is the authorized shape of one search.
type QueryPlan struct {
	Role        models.AccessTier
	Quarter     models.Quarter
	Count       int
	MaxDistance float64
	Where       map[string]string
}

// Result of a retrieval. Hits holds the raw search result, Items the hits
// that passed the authorization and relevance gates.
type Result struct {
	Plan    QueryPlan
	Hits    []models.SearchHit
	Items   []models.RetrievedItem
	Context string
}

// NoInformation reports that nothing usable was retrieved.
func (r *Result) NoInformation() bool {
	return len(r.Items) == 0
}

type Retriever struct {
	store  VectorSearcher
	policy models.RetrievalPolicy
}

func NewRetriever(store VectorSearcher, policy models.RetrievalPolicy) *Retriever {
	return &Retriever{store: store, policy: policy}
}

// Plan resolves the result count, the distance threshold and the metadata
// filter for a role. The filter always pins access_tier to the role.
func (r *Retriever) Plan(role models.AccessTier, question string) QueryPlan {
	settings := r.policy.Lookup(role)

	plan := QueryPlan{
		Role:        role,
		Count:       settings.Count,
		MaxDistance: settings.MaxDistance,
		Where:       map[string]string{models.MetaAccessTier: string(role)},
	}
	if settings.TimePartitioned {
		plan.Quarter = QuarterFromQuestion(question)
		plan.Where[models.MetaTimePartition] = string(plan.Quarter)
	}
	return plan
}

// allowed re-checks a hit against the plan's filter.
func (p QueryPlan) allowed(hit models.SearchHit) bool {
	for k, v := range p.Where {
		if hit.Metadata[k] != v {
			return false
		}
	}
	return true
}

// Retrieve searches the store on behalf of an authenticated role and returns
// the gated items and the rendered context. An empty result is not an error.
func (r *Retriever) Retrieve(ctx context.Context, role models.AccessTier, question string) (*Result, error) {
	if role == "" {
		return nil, models.ErrUnauthorized
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, models.ErrInvalidQuestion
	}

	plan := r.Plan(role, question)
	log.Debug().
		Str("role", string(role)).
		Str("quarter", string(plan.Quarter)).
		Int("count", plan.Count).
		Float64("max_distance", plan.MaxDistance).
		Msg("Retrieval plan")

	hits, err := r.store.Search(ctx, question, plan.Count, plan.Where)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrSearch, err)
	}

	result := &Result{Plan: plan, Hits: hits}

	authorized := make([]models.SearchHit, 0, len(hits))
	for _, h := range hits {
		if !plan.allowed(h) {
			log.Error().
				Str("id", h.ID).
				Str("role", string(role)).
				Str("access_tier", h.Metadata[models.MetaAccessTier]).
				Msg("Vector store returned a hit outside the filter, dropping it")
			continue
		}
		authorized = append(authorized, h)
	}

	for _, h := range FilterByDistance(authorized, plan.MaxDistance) {
		result.Items = append(result.Items, models.RetrievedItem{
			ID:         h.ID,
			Text:       h.Text,
			Provenance: h.Metadata,
			Distance:   h.Distance,
		})
	}

	if result.NoInformation() {
		log.Info().Str("role", string(role)).Int("hits", len(hits)).Msg("No relevant information")
		return result, nil
	}

	result.Context = BuildContext(result.Items)
	log.Debug().Int("hits", len(hits)).Int("items", len(result.Items)).Msg("Context assembled")
	return result, nil
}
