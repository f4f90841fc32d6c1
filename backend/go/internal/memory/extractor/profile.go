// Package extractor pulls structured profile facts out of free text.
package extractor

import (
	"regexp"
	"strings"

	"Concierge/backend/go/internal/models"
)

// MaxFactValue bounds an extracted value in runes so it fits the vector store's
// profileValue column.
const MaxFactValue = 128

var companyPattern = regexp.MustCompile(`(?i)\b(?:my company is|we are|i work at)\s+([^.!?\n]+)`)

type bucket struct {
	value    string
	keywords []string
}

// Buckets are checked in order; the first match wins.
var industries = []bucket{
	{"tech", []string{"tech", "software", "saas", "startup", "mobile app"}},
	{"healthcare", []string{"health", "medical", "clinic", "hospital", "dental"}},
	{"retail", []string{"retail", "store", "shop", "ecommerce", "e-commerce"}},
	{"finance", []string{"finance", "bank", "insurance", "investment", "accounting"}},
	{"food", []string{"food", "restaurant", "cafe", "bakery", "catering"}},
}

var projectTypes = []bucket{
	{"rebrand", []string{"rebrand", "brand refresh", "refresh our brand"}},
	{"new_brand", []string{"new brand", "brand from scratch", "starting a brand"}},
	{"web_design", []string{"website", "web site", "landing page", "web design"}},
}

// Extract returns only the profile fields found in text.
func Extract(text string) models.Profile {
	found := models.Profile{}
	if m := companyPattern.FindStringSubmatch(text); m != nil {
		if company := truncate(strings.TrimSpace(m[1]), MaxFactValue); company != "" {
			found[models.ProfileCompany] = company
		}
	}
	lower := strings.ToLower(text)
	if v := firstMatch(lower, industries); v != "" {
		found[models.ProfileIndustry] = v
	}
	if v := firstMatch(lower, projectTypes); v != "" {
		found[models.ProfileProjectType] = v
	}
	return found
}

func firstMatch(lower string, buckets []bucket) string {
	for _, b := range buckets {
		for _, kw := range b.keywords {
			if strings.Contains(lower, kw) {
				return b.value
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
