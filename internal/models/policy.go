package models

import "fmt"

// ChunkSize is the target size and overlap of sub-chunks, in characters.
type ChunkSize struct {
	Size    int `yaml:"chunk_size" json:"chunk_size"`
	Overlap int `yaml:"chunk_overlap" json:"chunk_overlap"`
}

func (s ChunkSize) validate() error {
	if s.Size <= 0 {
		return fmt.Errorf("%w: chunk_size must be > 0, got %d", ErrInvalidPolicy, s.Size)
	}
	if s.Overlap < 0 || s.Overlap >= s.Size {
		return fmt.Errorf("%w: chunk_overlap must be in [0, %d), got %d", ErrInvalidPolicy, s.Size, s.Overlap)
	}
	return nil
}

// ChunkingPolicy maps access tiers to chunk sizes.
type ChunkingPolicy struct {
	Tiers   map[AccessTier]ChunkSize `yaml:"tiers"`
	Default ChunkSize                `yaml:"default"`
}

var DefaultChunkSize = ChunkSize{Size: 250, Overlap: 50}

func DefaultChunkingPolicy() ChunkingPolicy {
	return ChunkingPolicy{
		Tiers: map[AccessTier]ChunkSize{
			TierEngineering: {Size: 250, Overlap: 50},
			TierGeneral:     {Size: 250, Overlap: 50},
			TierMarketing:   {Size: 800, Overlap: 100},
			TierFinance:     {Size: 450, Overlap: 80},
		},
		Default: DefaultChunkSize,
	}
}

// Lookup returns the chunk size for a tier, falling back to the default.
func (p ChunkingPolicy) Lookup(tier AccessTier) ChunkSize {
	if s, ok := p.Tiers[tier]; ok {
		return s
	}
	if p.Default.Size > 0 {
		return p.Default
	}
	return DefaultChunkSize
}

func (p ChunkingPolicy) Validate() error {
	if p.Default.Size != 0 {
		if err := p.Default.validate(); err != nil {
			return fmt.Errorf("default: %w", err)
		}
	}
	for tier, s := range p.Tiers {
		if err := s.validate(); err != nil {
			return fmt.Errorf("tier %s: %w", tier, err)
		}
	}
	return nil
}

// TierRetrieval holds the per-role retrieval settings. Zero values fall
// back to the policy defaults.
type TierRetrieval struct {
	Count           int     `yaml:"count" json:"count"`
	MaxDistance     float64 `yaml:"max_distance" json:"max_distance"`
	TimePartitioned bool    `yaml:"time_partitioned" json:"time_partitioned"`
}

// RetrievalPolicy maps roles to result counts, distance thresholds and
// whether the role's data is split by quarter.
type RetrievalPolicy struct {
	Tiers              map[AccessTier]TierRetrieval `yaml:"tiers"`
	DefaultCount       int                          `yaml:"default_count"`
	DefaultMaxDistance float64                      `yaml:"default_max_distance"`
}

const (
	defaultResultCount = 3
	defaultMaxDistance = 0.81
)

func DefaultRetrievalPolicy() RetrievalPolicy {
	return RetrievalPolicy{
		Tiers: map[AccessTier]TierRetrieval{
			TierMarketing: {Count: 7, TimePartitioned: true},
			TierFinance:   {Count: 3, TimePartitioned: true},
			TierHR:        {MaxDistance: 0.55},
		},
		DefaultCount:       defaultResultCount,
		DefaultMaxDistance: defaultMaxDistance,
	}
}

// Lookup resolves the settings of a role with defaults applied.
func (p RetrievalPolicy) Lookup(role AccessTier) TierRetrieval {
	t := p.Tiers[role]
	if t.Count <= 0 {
		t.Count = p.DefaultCount
	}
	if t.Count <= 0 {
		t.Count = defaultResultCount
	}
	if t.MaxDistance <= 0 {
		t.MaxDistance = p.DefaultMaxDistance
	}
	if t.MaxDistance <= 0 {
		t.MaxDistance = defaultMaxDistance
	}
	return t
}
