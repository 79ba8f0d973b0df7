package psalm

import "strings"

// Preset is a canned system-prompt + prefill template used to seed a new
// session. A non-nil preset passed to the store always forces a fresh
// session, even when every field is empty.
type Preset struct {
	ID           string
	Label        string
	Description  string
	Category     string
	System       string
	Prefill      string
	Jurisdiction string
}

// WithJurisdiction returns a copy of the preset with the jurisdiction set
// and every {{jurisdiction}} placeholder in the templates substituted.
func (p Preset) WithJurisdiction(code string) Preset {
	name := code
	if j, ok := LookupJurisdiction(code); ok {
		name = j.Name
	}
	p.Jurisdiction = code
	p.System = strings.ReplaceAll(p.System, "{{jurisdiction}}", name)
	p.Prefill = strings.ReplaceAll(p.Prefill, "{{jurisdiction}}", name)
	return p
}

// BuiltinPresets are the bundled legal workflow templates.
var BuiltinPresets = []Preset{
	{
		ID:          "contract-review",
		Label:       "Contract Review",
		Description: "Analyze contracts for risks and key terms",
		Category:    "contracts",
		System: "You are a jurisdiction-aware AI legal assistant. Give practical, {{jurisdiction}}-specific analysis. " +
			"Always: (1) identify key risks with clause references, (2) summarise party obligations, " +
			"(3) propose negotiation levers, (4) draft redline-ready clause suggestions, (5) list open questions. " +
			`If documents exist, cite them by filename/section. Include a brief "not legal advice" reminder.`,
		Prefill: "Contract Review — {{jurisdiction}}\n\nCounterparty: \nDocuments: (attach files or paste key clauses)\n" +
			"Context: [deal type, value, term, deliverables]\nClauses of concern: \n",
	},
	{
		ID:          "legal-research",
		Label:       "Legal Research",
		Description: "Research case law and precedents",
		Category:    "research",
		System: "You are a precise legal researcher for {{jurisdiction}}. Deliver: (A) Short Answer, " +
			"(B) structured Analysis with tests/elements, (C) authorities with proper citations, " +
			`(D) practical next steps. Do not invent citations; note gaps and recency limits. Include "not legal advice."`,
		Prefill: "Legal Research — {{jurisdiction}}\n\nQuestion: \nKey facts: \nTime horizon: \n",
	},
	{
		ID:          "compliance-check",
		Label:       "Compliance Check",
		Description: "Verify regulatory compliance",
		Category:    "compliance",
		System: "You map regulatory obligations for {{jurisdiction}}. Produce gap analysis, required controls, " +
			"records, notices/consents, cross-border transfer rules, retention, incident duties. " +
			`Reference relevant frameworks (e.g., UK/EU GDPR, CPRA, HIPAA, sectoral rules). Include "not legal advice."`,
		Prefill: "Compliance Check — {{jurisdiction}}\n\nActivity: \nData categories: \nRoles: \nLocations: \n",
	},
}

// LookupPreset returns the builtin preset with the given id.
func LookupPreset(id string) (Preset, bool) {
	for _, p := range BuiltinPresets {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}
