// Package intent maps a user message to one of a fixed set of coarse intents.
package intent

import "strings"

// Intent is a coarse label for what the user is asking about.
type Intent string

const (
	PricingInquiry   Intent = "pricing_inquiry"
	PortfolioRequest Intent = "portfolio_request"
	ProcessInquiry   Intent = "process_inquiry"
	ServicesInquiry  Intent = "services_inquiry"
	ContactRequest   Intent = "contact_request"
	GeneralInquiry   Intent = "general_inquiry"
)

type rule struct {
	intent   Intent
	keywords []string
}

// rules are checked in order; the first rule with a matching keyword wins.
var rules = []rule{
	{PricingInquiry, []string{"price", "pricing", "cost", "budget", "quote", "how much", "rates"}},
	{PortfolioRequest, []string{"portfolio", "work", "examples", "case study", "projects", "clients"}},
	{ProcessInquiry, []string{"process", "how do you", "timeline", "steps", "approach", "methodology"}},
	{ServicesInquiry, []string{"services", "offer", "do you do", "branding", "logo", "website", "design"}},
	{ContactRequest, []string{"contact", "call", "meeting", "email", "reach", "talk", "schedule"}},
}

// Classify returns the first intent whose keywords occur as a substring of the
// lower-cased text, or GeneralInquiry.
func Classify(text string) Intent {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.intent
			}
		}
	}
	return GeneralInquiry
}

// Capability returns the knowledge metadata flag that narrows retrieval for the
// intent, or "" when the intent has none.
func (i Intent) Capability() string {
	switch i {
	case PricingInquiry:
		return "hasPricing"
	case PortfolioRequest:
		return "hasPortfolio"
	case ProcessInquiry:
		return "hasProcess"
	case ServicesInquiry:
		return "hasServices"
	}
	return ""
}

func (i Intent) String() string { return string(i) }
