package intent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jllopis/gremio/pkg/catalog"
)

// EmbeddingConfig tunes the embedding resolver's decision boundaries.
type EmbeddingConfig struct {
	// Collection names the vector collection holding role phrases.
	Collection string
	// Threshold is the minimum top score required to resolve a role.
	Threshold float32
	// Margin is the minimum lead the best role must have over the
	// runner-up role. A smaller lead is treated as ambiguous.
	Margin float32
	// Floor is the score below which the utterance is considered
	// unrelated to job assessment entirely.
	Floor float32
}

// DefaultEmbeddingConfig returns conservative defaults: prefer asking a
// clarifying question over guessing.
func DefaultEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		Collection: "gremio_roles",
		Threshold:  0.75,
		Margin:     0.05,
		Floor:      0.35,
	}
}

// EmbeddingResolver classifies utterances by embedding similarity against
// indexed role names and aliases. It resolves a role only when the top match
// clears the threshold and leads the runner-up role by the configured
// margin; everything between the floor and that bar is ambiguous.
type EmbeddingResolver struct {
	store    VectorStore
	embedder Embedder
	cfg      EmbeddingConfig
}

// NewEmbeddingResolver creates a resolver over the given store and embedder.
func NewEmbeddingResolver(store VectorStore, embedder Embedder, cfg EmbeddingConfig) *EmbeddingResolver {
	if cfg.Collection == "" {
		cfg.Collection = DefaultEmbeddingConfig().Collection
	}
	return &EmbeddingResolver{store: store, embedder: embedder, cfg: cfg}
}

// IndexCatalog embeds every role name and alias and upserts them into the
// vector collection. Call once at startup; the catalog is immutable.
func (r *EmbeddingResolver) IndexCatalog(ctx context.Context, cat *catalog.Catalog) error {
	var points []Point
	var vectorSize uint64
	for _, role := range cat.Roles {
		phrases := append([]string{role.Name}, role.Aliases...)
		for _, phrase := range phrases {
			vec, err := r.embedder.Embed(ctx, Normalize(phrase))
			if err != nil {
				return fmt.Errorf("embed role phrase %q: %w", phrase, err)
			}
			if vectorSize == 0 {
				vectorSize = uint64(len(vec))
			}
			points = append(points, Point{
				ID:     uuid.NewString(),
				Vector: vec,
				Payload: map[string]any{
					"role":   role.Name,
					"phrase": phrase,
				},
			})
		}
	}
	if len(points) == 0 {
		return fmt.Errorf("catalog has no role phrases to index")
	}
	if err := r.store.CreateCollection(ctx, r.cfg.Collection, vectorSize); err != nil {
		return fmt.Errorf("create role collection: %w", err)
	}
	if err := r.store.Upsert(ctx, r.cfg.Collection, points); err != nil {
		return fmt.Errorf("index role phrases: %w", err)
	}
	return nil
}

// Resolve implements Resolver.
func (r *EmbeddingResolver) Resolve(ctx context.Context, utterance string) (Outcome, error) {
	norm := Normalize(utterance)
	if norm == "" {
		return Outcome{Kind: KindAmbiguous}, nil
	}
	vec, err := r.embedder.Embed(ctx, norm)
	if err != nil {
		return Outcome{}, fmt.Errorf("embed utterance: %w", err)
	}
	hits, err := r.store.Search(ctx, r.cfg.Collection, vec, 8, 0)
	if err != nil {
		return Outcome{}, fmt.Errorf("search role phrases: %w", err)
	}
	if len(hits) == 0 {
		return Outcome{Kind: KindOutOfScope}, nil
	}

	// Best score per role; hits are alias-level.
	best := make(map[string]float32)
	order := make([]string, 0, len(hits))
	for _, hit := range hits {
		role, _ := hit.Point.Payload["role"].(string)
		if role == "" {
			continue
		}
		if _, seen := best[role]; !seen {
			order = append(order, role)
		}
		if hit.Score > best[role] {
			best[role] = hit.Score
		}
	}

	var top, second string
	for _, role := range order {
		switch {
		case top == "" || best[role] > best[top]:
			second = top
			top = role
		case second == "" || best[role] > best[second]:
			second = role
		}
	}
	if top == "" {
		return Outcome{Kind: KindOutOfScope}, nil
	}

	score := best[top]
	switch {
	case score < r.cfg.Floor:
		return Outcome{Kind: KindOutOfScope, Confidence: float64(score)}, nil
	case score < r.cfg.Threshold:
		return Outcome{Kind: KindAmbiguous, Confidence: float64(score)}, nil
	case second != "" && score-best[second] < r.cfg.Margin:
		// Two roles are too close to call.
		return Outcome{Kind: KindAmbiguous, Confidence: float64(score)}, nil
	}
	return Outcome{Kind: KindResolved, Role: top, Confidence: float64(score)}, nil
}
