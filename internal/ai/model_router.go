package ai

import "strings"

// StageKind identifies which pipeline stage a model call serves.
type StageKind string

const (
	StageExtraction StageKind = "extraction"
	StageFollowup   StageKind = "followup"
	StageDrafting   StageKind = "drafting"
)

type ModelProfile struct {
	PrimaryModel    string
	FallbackModel   string
	Temperature     float64
	MaxOutputTokens int
}

type ModelRouterConfig struct {
	ExtractionPrimary  string
	ExtractionFallback string

	FollowupPrimary  string
	FollowupFallback string

	DraftingPrimary  string
	DraftingFallback string
}

// ModelRouter maps stage kinds to model profiles. Resolved once at
// startup; pipelines treat the routing as immutable.
type ModelRouter struct {
	config ModelRouterConfig
}

func NewModelRouter(config ModelRouterConfig) *ModelRouter {
	if strings.TrimSpace(config.ExtractionPrimary) == "" {
		config.ExtractionPrimary = "gpt-4.1-mini"
	}
	if strings.TrimSpace(config.ExtractionFallback) == "" {
		config.ExtractionFallback = "gpt-4.1-nano"
	}
	if strings.TrimSpace(config.FollowupPrimary) == "" {
		config.FollowupPrimary = "gpt-4.1-mini"
	}
	if strings.TrimSpace(config.FollowupFallback) == "" {
		config.FollowupFallback = "gpt-4.1-nano"
	}
	if strings.TrimSpace(config.DraftingPrimary) == "" {
		config.DraftingPrimary = "gpt-4.1"
	}
	if strings.TrimSpace(config.DraftingFallback) == "" {
		config.DraftingFallback = "gpt-4.1-mini"
	}
	return &ModelRouter{config: config}
}

func (r *ModelRouter) Select(stage StageKind) ModelProfile {
	switch stage {
	case StageDrafting:
		// Drafting emits a whole document; give it headroom and keep it
		// close to deterministic.
		return ModelProfile{
			PrimaryModel:    r.config.DraftingPrimary,
			FallbackModel:   r.config.DraftingFallback,
			Temperature:     0.2,
			MaxOutputTokens: 4096,
		}
	case StageFollowup:
		return ModelProfile{
			PrimaryModel:    r.config.FollowupPrimary,
			FallbackModel:   r.config.FollowupFallback,
			Temperature:     0.3,
			MaxOutputTokens: 1024,
		}
	default:
		return ModelProfile{
			PrimaryModel:    r.config.ExtractionPrimary,
			FallbackModel:   r.config.ExtractionFallback,
			Temperature:     0.1,
			MaxOutputTokens: 2048,
		}
	}
}
