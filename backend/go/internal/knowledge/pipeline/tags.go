package pipeline

import (
	"strings"

	"Concierge/backend/go/internal/models"
)

var (
	portfolioKeywords = []string{"portfolio", "case study", "case studies", "project", "client", "work for"}
	processKeywords   = []string{"process", "step", "phase", "timeline", "discovery", "approach", "workflow"}
	pricingKeywords   = []string{"price", "pricing", "cost", "$", "fee", "budget", "package", "rate"}
	servicesKeywords  = []string{"service", "we offer", "branding", "logo", "website", "design", "strategy", "consult"}
)

// TagCapabilities derives the capability flags of a chunk from its text.
func TagCapabilities(text string) models.Capabilities {
	lower := strings.ToLower(text)
	return models.Capabilities{
		HasPortfolio: containsAny(lower, portfolioKeywords),
		HasProcess:   containsAny(lower, processKeywords),
		HasPricing:   containsAny(lower, pricingKeywords),
		HasServices:  containsAny(lower, servicesKeywords),
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
