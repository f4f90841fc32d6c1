package models

import (
	"sort"
	"time"
)

// Well-known profile keys written by the extractor.
const (
	ProfileCompany     = "company"
	ProfileIndustry    = "industry"
	ProfileProjectType = "projectType"
)

// ProfileFact is a single (session, key) -> value pair. Writes for the same
// (session, key) overwrite, last write wins.
type ProfileFact struct {
	SessionID string    `json:"sessionId"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Profile is the flattened view of a session's facts.
type Profile map[string]string

// Keys returns the profile keys in lexical order.
func (p Profile) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge returns a copy of p overlaid with other.
func (p Profile) Merge(other Profile) Profile {
	out := make(Profile, len(p)+len(other))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}
