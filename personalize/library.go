package personalize

// defaultLibrary seeds the signal_based lookup table: industry ->
// strongest signal -> derived variables. A real deployment would load
// this from an operator-managed table; the built-in set covers the
// industries most common among B2B outreach lead lists, with a
// "default" entry per industry for recipients with no specific signal
// set.
func defaultLibrary() map[string]map[string]Variables {
	return map[string]map[string]Variables{
		"logistics": {
			"default": {
				PersonalizationSentence: "Fleets your size are under real pressure to cut empty miles this quarter.",
				PainStatement:           "Manual dispatch eats hours that should go to keeping trucks loaded.",
				CredibilityAnchor:       "We've helped logistics teams trim dispatch overhead without new headcount.",
			},
			"job_postings_signal": {
				PersonalizationSentence: "Hiring for dispatch roles usually means the current process is maxed out.",
				PainStatement:           "New hires take months to ramp on a dispatch board that's all tribal knowledge.",
				CredibilityAnchor:       "Teams that automated dispatch before their next hiring wave kept headcount flat.",
			},
		},
		"manufacturing": {
			"default": {
				PersonalizationSentence: "Shop floors running lean right now are the ones watching every line stoppage.",
				PainStatement:           "Unplanned downtime is still the single biggest hit to a tight production schedule.",
				CredibilityAnchor:       "Plants we've worked with cut unplanned downtime within the first quarter.",
			},
			"equipment_signal": {
				PersonalizationSentence: "Equipment at that age usually starts surfacing maintenance surprises.",
				PainStatement:           "Reactive maintenance on aging equipment quietly drains the capex budget.",
				CredibilityAnchor:       "We've kept aging equipment running longer for plants with tighter capex cycles.",
			},
		},
		"saas": {
			"default": {
				PersonalizationSentence: "Teams scaling past this headcount usually hit a wall in their current stack.",
				PainStatement:           "Tooling that worked at ten people starts breaking down past fifty.",
				CredibilityAnchor:       "We've helped SaaS teams through that exact growth inflection.",
			},
			"intent_score_tier": {
				PersonalizationSentence: "Teams actively evaluating tools in this space usually hit the same bottleneck.",
				PainStatement:           "Evaluating five vendors in parallel is its own full-time job.",
				CredibilityAnchor:       "We've shortened that evaluation cycle for teams in the same spot.",
			},
		},
	}
}
