package urlfilter

import (
	"net/url"
	"path"
	"strings"

	"emailscope/internal/platform/logx"
)

// FilterEngine decides which discovered links are worth fetching.
type FilterEngine struct {
	config     FilterConfig
	normalizer *URLNormalizer
	scorer     *PriorityScorer
	logger     logx.Logger
}

// NewFilterEngine creates a new filter engine with given configuration.
func NewFilterEngine(config FilterConfig, logger logx.Logger) *FilterEngine {
	if err := config.Validate(); err != nil {
		logger.Warn("invalid filter config, using defaults", "error", err.Error())
		config = DefaultConfig()
	}

	config.SkipPatterns = lowerAll(config.SkipPatterns)
	config.SkipExtensions = lowerAll(config.SkipExtensions)

	return &FilterEngine{
		config:     config,
		normalizer: NewURLNormalizer(),
		scorer:     NewPriorityScorer(config),
		logger:     logger.With("component", "urlfilter"),
	}
}

// Normalizer returns the engine's URL normalizer.
func (f *FilterEngine) Normalizer() *URLNormalizer { return f.normalizer }

// Scorer returns the engine's priority scorer.
func (f *FilterEngine) Scorer() *PriorityScorer { return f.scorer }

// Skip reports whether a normalized URL should not be fetched, with the
// reason ("extension:.pdf", "pattern:/admin/").
func (f *FilterEngine) Skip(rawURL string) (bool, string) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return true, "unparseable"
	}

	p := strings.ToLower(parsed.Path)

	if ext := path.Ext(p); ext != "" {
		for _, skip := range f.config.SkipExtensions {
			if ext == skip {
				return true, "extension:" + ext
			}
		}
	}

	// Los patrones terminan en "/", así que se compara también con el path + "/".
	probe := p + "/"
	for _, pattern := range f.config.SkipPatterns {
		if strings.Contains(probe, pattern) {
			return true, "pattern:" + pattern
		}
	}
	return false, ""
}
