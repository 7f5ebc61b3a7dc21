package trust

import (
	"net/url"
	"strings"

	"github.com/Vaibhav-Uniyal/policyq/internal/model"
)

// Classifier assigns trust weights to document sources. Known public
// hosts get the lower known weight; everything else, including sources
// that are not URLs at all, counts as unknown.
type Classifier struct {
	config model.TrustConfig
}

// NewClassifier creates a classifier from trust configuration.
func NewClassifier(config model.TrustConfig) *Classifier {
	return &Classifier{config: config}
}

// IsKnown reports whether the source's host matches a known domain.
func (c *Classifier) IsKnown(source string) bool {
	parsed, err := url.Parse(source)
	if err != nil {
		return false
	}

	host := strings.ToLower(parsed.Host)
	if idx := strings.Index(host, ":"); idx > 0 {
		host = host[:idx]
	}
	if host == "" {
		return false
	}

	for _, domain := range c.config.KnownDomains {
		if strings.Contains(host, domain) {
			return true
		}
	}
	return false
}

// Weight returns the document weight used in score contributions.
func (c *Classifier) Weight(source string) float64 {
	if c.IsKnown(source) {
		return c.config.KnownDocumentWeight
	}
	return c.config.UnknownDocumentWeight
}
