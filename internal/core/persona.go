package core

import "strings"

// personaRule maps trigger keywords to a persona. Rules are evaluated
// in order against the lower-cased message, first match wins, so the
// professional rule takes precedence over the student rule.
type personaRule struct {
	persona  Persona
	keywords []string
}

var personaRules = []personaRule{
	{PersonaProfessional, []string{"budget", "financial", "analysis", "report", "quarterly", "roi"}},
	{PersonaStudent, []string{"homework", "assignment", "simple", "basic", "learn", "help me understand"}},
}

// ClassifyPersona derives the persona for a free-text message.
// Messages matching no rule are classified as general.
func ClassifyPersona(message string) Persona {
	lower := strings.ToLower(message)
	for _, rule := range personaRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.persona
			}
		}
	}
	return PersonaGeneral
}
