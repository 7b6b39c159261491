package usecases

import (
	"sync/atomic"

	"github.com/asila/asila/internal/domain/entities"
)

// DepartmentRule associates one department with its trigger keywords.
// Declaration order matters: classification is first-match-wins.
type DepartmentRule struct {
	Department entities.Department `yaml:"department"`
	Keywords   []string            `yaml:"keywords"`
}

// Rules holds every routing and safety rule the pipeline consults.
// A Rules value is immutable once published; hot reload publishes a
// fresh value instead of mutating the current one.
type Rules struct {
	Departments        []DepartmentRule               `yaml:"departments"`
	TenantByDepartment map[entities.Department]string `yaml:"tenants"`
	DefaultTenantID    string                         `yaml:"default_tenant"`
	ForbiddenPhrases   []string                       `yaml:"forbidden_phrases"`
	RefusalMessage     string                         `yaml:"refusal_message"`
}

// DefaultRules returns the built-in rule set used when no rules file is
// configured or a reload fails.
func DefaultRules() *Rules {
	return &Rules{
		Departments: []DepartmentRule{
			{Department: entities.DepartmentHealth, Keywords: []string{"vaccination", "hospital", "clinic", "covid", "immunization"}},
			{Department: entities.DepartmentElectricity, Keywords: []string{"power", "outage", "electricity", "transformer"}},
			{Department: entities.DepartmentWater, Keywords: []string{"water", "pipeline", "tap", "supply"}},
			{Department: entities.DepartmentMunicipality, Keywords: []string{"garbage", "waste", "streetlight", "sanitation"}},
		},
		TenantByDepartment: map[entities.Department]string{
			entities.DepartmentHealth:       "health-dept-tenant-id",
			entities.DepartmentElectricity:  "electricity-dept-tenant-id",
			entities.DepartmentWater:        "water-dept-tenant-id",
			entities.DepartmentMunicipality: "municipality-tenant-id",
		},
		DefaultTenantID: "default-tenant-id",
		ForbiddenPhrases: []string{
			"you have",
			"diagnosed with",
			"treatment for",
			"i am from",
			"official statement",
			"might be",
			"probably",
			"i think",
		},
		RefusalMessage: "I can only provide verified information. Please contact the department directly.",
	}
}

// RuleSource publishes the active Rules value. Readers get a consistent
// snapshot; the rules watcher swaps in a new value on file change.
type RuleSource struct {
	current atomic.Pointer[Rules]
}

// NewRuleSource creates a RuleSource seeded with the given rules.
func NewRuleSource(r *Rules) *RuleSource {
	s := &RuleSource{}
	if r == nil {
		r = DefaultRules()
	}
	s.current.Store(r)
	return s
}

// Rules returns the active rule set.
func (s *RuleSource) Rules() *Rules {
	return s.current.Load()
}

// Update publishes a new rule set. Nil updates are ignored.
func (s *RuleSource) Update(r *Rules) {
	if r == nil {
		return
	}
	s.current.Store(r)
}
