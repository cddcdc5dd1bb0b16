package finance

import (
	"regexp"
	"sort"
	"strings"

	"pocketpilot/internal/models"
)

// TestRule reports whether description matches pattern under ruleType.
// Invalid regular expressions never match.
func TestRule(description string, ruleType models.RuleType, pattern string, caseSensitive bool) bool {
	return CompileMatcher(ruleType, pattern, caseSensitive).Match(description)
}

// Matcher is a compiled rule predicate, safe to reuse across many descriptions.
type Matcher struct {
	ruleType      models.RuleType
	pattern       string
	caseSensitive bool
	re            *regexp.Regexp
	invalid       bool
}

// CompileMatcher prepares a Matcher. Regex patterns are compiled once,
// case-insensitively unless caseSensitive is set.
func CompileMatcher(ruleType models.RuleType, pattern string, caseSensitive bool) *Matcher {
	m := &Matcher{ruleType: ruleType, pattern: pattern, caseSensitive: caseSensitive}
	if ruleType == models.RuleTypeRegex {
		expr := pattern
		if !caseSensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			m.invalid = true
		} else {
			m.re = re
		}
		return m
	}
	if !caseSensitive {
		m.pattern = strings.ToLower(pattern)
	}
	return m
}

// Match applies the compiled predicate.
func (m *Matcher) Match(description string) bool {
	if m.invalid {
		return false
	}
	if m.ruleType == models.RuleTypeRegex {
		return m.re.MatchString(description)
	}

	subject := description
	if !m.caseSensitive {
		subject = strings.ToLower(description)
	}

	switch m.ruleType {
	case models.RuleTypeContains:
		return strings.Contains(subject, m.pattern)
	case models.RuleTypeStartsWith:
		return strings.HasPrefix(subject, m.pattern)
	case models.RuleTypeEndsWith:
		return strings.HasSuffix(subject, m.pattern)
	case models.RuleTypeExact:
		return subject == m.pattern
	}
	return false
}

// ValidPattern reports whether a regex rule's pattern compiles. Non-regex
// patterns only need to be non-empty.
func ValidPattern(ruleType models.RuleType, pattern string) bool {
	if pattern == "" {
		return false
	}
	if ruleType != models.RuleTypeRegex {
		return true
	}
	_, err := regexp.Compile(pattern)
	return err == nil
}

type compiledRule struct {
	rule    models.CategorizationRule
	matcher *Matcher
}

// RuleSet evaluates active rules in ascending RuleOrder; the first match wins.
type RuleSet struct {
	rules []compiledRule
}

// NewRuleSet filters out inactive rules, sorts by RuleOrder and compiles.
func NewRuleSet(rules []models.CategorizationRule) *RuleSet {
	active := make([]models.CategorizationRule, 0, len(rules))
	for _, r := range rules {
		if r.IsActive {
			active = append(active, r)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].RuleOrder < active[j].RuleOrder })

	rs := &RuleSet{rules: make([]compiledRule, len(active))}
	for i, r := range active {
		rs.rules[i] = compiledRule{rule: r, matcher: CompileMatcher(r.RuleType, r.Pattern, r.CaseSensitive)}
	}
	return rs
}

// Len returns the number of active rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Match returns the first rule matching description.
func (rs *RuleSet) Match(description string) (*models.CategorizationRule, bool) {
	for i := range rs.rules {
		if rs.rules[i].matcher.Match(description) {
			return &rs.rules[i].rule, true
		}
	}
	return nil, false
}
