package checklist

import (
	"strings"

	"github.com/buildsafe/safety-backend/internal/domain"
)

// Filter narrows template listings. Empty fields match everything.
type Filter struct {
	Category     string
	Trade        string
	Search       string
	IncludeEmpty bool
}

// Match reports whether s passes the filter. Templates without items are
// hidden unless IncludeEmpty is set; Search matches case-insensitively across
// name, description, category and trades.
func (f Filter) Match(s domain.TemplateSummary) bool {
	if !f.IncludeEmpty && s.ItemCount == 0 {
		return false
	}
	if f.Category != "" && !strings.EqualFold(deref(s.Category), f.Category) {
		return false
	}
	if f.Trade != "" && !hasTrade(s.Trades, f.Trade) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		fields := []string{s.Name, deref(s.Description), deref(s.Category)}
		fields = append(fields, s.Trades...)
		for _, v := range fields {
			if strings.Contains(strings.ToLower(v), q) {
				return true
			}
		}
		return false
	}
	return true
}

// Apply returns the summaries that pass the filter, preserving order.
func (f Filter) Apply(in []domain.TemplateSummary) []domain.TemplateSummary {
	out := make([]domain.TemplateSummary, 0, len(in))
	for _, s := range in {
		if f.Match(s) {
			out = append(out, s)
		}
	}
	return out
}

func hasTrade(trades []string, want string) bool {
	for _, t := range trades {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
