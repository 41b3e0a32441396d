// Package orchestrator implements the Fix Orchestrator state machine
// (spec.md §4.5): FORMAT -> DIAGNOSE0 -> PLAN -> [LIFTOVER?] -> [SORT?] ->
// FIX1 -> DIAGNOSE1 -> PLAN2 -> [SORT?] -> FIX2 -> DIAGNOSE2 -> DONE.
//
// Grounded on original_source/SumStatsRehab.py / SSrehab.py for the pass
// sequencing and the two-pass termination rule (spec.md §9(a)); the Build
// value is threaded explicitly rather than held as a package-level global
// (spec.md §9's "global build variable" redesign note).
package orchestrator

import (
	"github.com/vibebio/ssrehab/internal/config"
	"github.com/vibebio/ssrehab/internal/report"
	"github.com/vibebio/ssrehab/internal/resolve"
	"github.com/vibebio/ssrehab/internal/sortstage"
)

// SortPlan is one of "none", sort-by-rsID, or sort-by-ChrBP, plus whether
// liftover should run before it.
type SortPlan struct {
	Key        sortstage.Key
	DoSort     bool
	DoLiftover bool
	NewBuild   config.Build // build to record after this plan executes
}

// ActivatedResolvers is the caller-configurable set of fields the
// orchestrator is allowed to restore (spec.md §4.5's "activated-resolvers
// map"). Defaults: every field true except Beta (unsigned restoration is
// risky, spec.md §9(b)).
type ActivatedResolvers struct {
	ChrBP, RsID, OA, EA, EAF, Beta, SE, Pval bool
}

// DefaultActivatedResolvers returns spec.md §4.5's default map.
func DefaultActivatedResolvers() ActivatedResolvers {
	return ActivatedResolvers{
		ChrBP: true, RsID: true, OA: true, EA: true, EAF: true,
		Beta: false, SE: true, Pval: true,
	}
}

// PlanPass1 applies spec.md §4.5's planning rules to the first report,
// deciding whether to liftover and which sort key (if any) to use.
//
// Liftover rule: if build != hg38 and a chain is available,
//   - if Chr and BP each have >=1 valid row, liftover now;
//   - else if DB1 is available (ChrBP will be restored later), skip
//     liftover but record the build as hg38 anyway;
//   - else leave the build unchanged (caller should warn).
//
// Sort-key rule:
//   - rsID, if (BP|Chr|EAF) has any invalids and rsID is not entirely
//     invalid;
//   - else ChrBP, if (rsID|OA|EA|EAF) has any invalids and neither Chr nor
//     BP is entirely invalid;
//   - else no sort.
func PlanPass1(rep *report.Report, build config.Build, haveChain, haveDB1 bool) SortPlan {
	plan := SortPlan{NewBuild: build}

	if build != config.BuildHG38 && haveChain {
		anyValidChr := rep.TotalEntries > 0 && rep.Invalid["Chr"] < rep.TotalEntries
		anyValidBP := rep.TotalEntries > 0 && rep.Invalid["BP"] < rep.TotalEntries
		switch {
		case anyValidChr && anyValidBP:
			plan.DoLiftover = true
			plan.NewBuild = config.BuildHG38
		case haveDB1:
			plan.NewBuild = config.BuildHG38
		default:
			// leave build unchanged; caller warns (spec.md §4.5)
		}
	}

	switch {
	case anyInvalid(rep, "BP", "Chr", "EAF") && !rep.EntirelyInvalid("rsID"):
		plan.DoSort = true
		plan.Key = sortstage.ByRsID
	case anyInvalid(rep, "rsID", "OA", "EA", "EAF") &&
		!rep.EntirelyInvalid("Chr") && !rep.EntirelyInvalid("BP"):
		plan.DoSort = true
		plan.Key = sortstage.ByChrBP
	}

	return plan
}

// PlanPass2 decides whether a second fix pass is warranted: only if pass 1
// sorted by rsID and residual (rsID|OA|EA|EAF) issues remain after it
// (spec.md §4.5). The second pass always uses the opposite sort key.
func PlanPass2(pass1Key sortstage.Key, pass1Sorted bool, rep *report.Report) (SortPlan, bool) {
	if !pass1Sorted || pass1Key != sortstage.ByRsID {
		return SortPlan{}, false
	}
	if !anyInvalid(rep, "rsID", "OA", "EA", "EAF") {
		return SortPlan{}, false
	}
	return SortPlan{DoSort: true, Key: sortstage.ByChrBP}, true
}

func anyInvalid(rep *report.Report, fields ...string) bool {
	for _, f := range fields {
		if rep.AnyInvalid(f) {
			return true
		}
	}
	return false
}

// ResolversForPass assembles the Plan for one fix pass (spec.md §4.4.7):
// only resolvers whose preconditions can be satisfied are activated, given
// the sort key in use and the most recent report.
func ResolversForPass(key sortstage.Key, sorted bool, rep *report.Report, act ActivatedResolvers, liftover bool) resolve.Plan {
	var p resolve.Plan
	p.Liftover = liftover

	if sorted {
		switch key {
		case sortstage.ByChrBP:
			p.ResolveRsID = act.RsID && rep.AnyInvalid("rsID")
			p.ResolveAllele = (act.EA || act.OA) && (rep.AnyInvalid("EA") || rep.AnyInvalid("OA"))
			p.ResolveEAF = act.EAF && rep.AnyInvalid("EAF")
		case sortstage.ByRsID:
			p.ResolveChrBP = act.ChrBP && (rep.AnyInvalid("Chr") || rep.AnyInvalid("BP"))
			p.ResolveAllele = (act.EA || act.OA) && (rep.AnyInvalid("EA") || rep.AnyInvalid("OA"))
			p.ResolveEAF = act.EAF && rep.AnyInvalid("EAF")
		}
	}

	// Statistical back-fill never requires a particular sort key; it's
	// only gated on preconditions being satisfiable at all (spec.md
	// §4.4.7: "resolve-SE is not activated if beta is entirely invalid,
	// since it would be a no-op for every row").
	p.ResolveSE = act.SE && rep.AnyInvalid("SE") && !rep.EntirelyInvalid("beta") && !rep.EntirelyInvalid("pval")
	p.ResolveBeta = act.Beta && rep.AnyInvalid("beta") && !rep.EntirelyInvalid("SE") && !rep.EntirelyInvalid("pval")
	p.ResolvePval = act.Pval && rep.AnyInvalid("pval") && !rep.EntirelyInvalid("beta") && !rep.EntirelyInvalid("SE")

	return p
}

// IsTerminal reports whether a plan activates no resolver at all (spec.md
// §4.5: "a pass whose planning yields no resolvers is terminal").
func IsTerminal(p resolve.Plan) bool {
	return !p.Liftover && !p.ResolveRsID && !p.ResolveChrBP && !p.ResolveAllele &&
		!p.ResolveEAF && !p.ResolveSE && !p.ResolveBeta && !p.ResolvePval
}
