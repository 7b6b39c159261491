// Package usecases holds the message pipeline and its pure components.
// Single Responsibility per file: intent.go only classifies messages.
package usecases

import (
	"strings"

	"github.com/asila/asila/internal/domain/entities"
)

// ClassifyIntent maps free text to a department via keyword sets.
// Departments are tested in declaration order and the first one with any
// keyword present in the lowercased text wins - not the one with the most
// matches. Pure function: no I/O, deterministic.
func ClassifyIntent(rules *Rules, text string) entities.IntentResult {
	normalized := strings.ToLower(text)
	for _, dept := range rules.Departments {
		var matched []string
		for _, kw := range dept.Keywords {
			if strings.Contains(normalized, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) > 0 {
			return entities.IntentResult{Department: dept.Department, MatchedKeywords: matched}
		}
	}
	return entities.IntentResult{Department: entities.DepartmentNone}
}

// RouteTenant maps a department to its tenant id. Unknown or absent
// departments map to the default tenant. Total function: never fails.
func RouteTenant(rules *Rules, dept entities.Department) string {
	if dept == entities.DepartmentNone {
		return rules.DefaultTenantID
	}
	if tenant, ok := rules.TenantByDepartment[dept]; ok {
		return tenant
	}
	return rules.DefaultTenantID
}
