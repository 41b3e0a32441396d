package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vibebio/ssrehab/internal/config"
	"github.com/vibebio/ssrehab/internal/report"
	"github.com/vibebio/ssrehab/internal/sortstage"
)

func mkReport(total int, invalid map[string]int) *report.Report {
	rep := report.New()
	rep.TotalEntries = total
	for f, n := range invalid {
		rep.Invalid[f] = n
	}
	return rep
}

func TestPlanPass1_PicksRsIDSortWhenChrBPInvalid(t *testing.T) {
	rep := mkReport(100, map[string]int{"BP": 100, "Chr": 100, "rsID": 0})
	plan := PlanPass1(rep, config.BuildHG38, false, true)
	assert.True(t, plan.DoSort)
	assert.Equal(t, sortstage.ByRsID, plan.Key)
}

func TestPlanPass1_PicksChrBPSortWhenRsIDInvalid(t *testing.T) {
	rep := mkReport(100, map[string]int{"rsID": 100, "Chr": 0, "BP": 0})
	plan := PlanPass1(rep, config.BuildHG38, false, true)
	assert.True(t, plan.DoSort)
	assert.Equal(t, sortstage.ByChrBP, plan.Key)
}

func TestPlanPass1_NoSortWhenNothingInvalid(t *testing.T) {
	rep := mkReport(100, map[string]int{})
	plan := PlanPass1(rep, config.BuildHG38, false, true)
	assert.False(t, plan.DoSort)
}

func TestPlanPass1_RsIDSortSkippedWhenRsIDEntirelyInvalid(t *testing.T) {
	rep := mkReport(100, map[string]int{"BP": 50, "rsID": 100})
	plan := PlanPass1(rep, config.BuildHG38, false, true)
	// rsID entirely invalid disqualifies sort-by-rsID; falls through to
	// ChrBP only if rsID/OA/EA/EAF has issues and Chr/BP aren't entirely
	// invalid -- here Chr/BP are only partially invalid, so ChrBP applies.
	assert.Equal(t, sortstage.ByChrBP, plan.Key)
}

func TestPlanPass1_Liftover_WhenChrBPPartiallyValid(t *testing.T) {
	rep := mkReport(100, map[string]int{"Chr": 50, "BP": 50})
	plan := PlanPass1(rep, config.BuildHG19, true, true)
	assert.True(t, plan.DoLiftover)
	assert.Equal(t, config.BuildHG38, plan.NewBuild)
}

func TestPlanPass1_Liftover_SkippedWhenChrBPEntirelyInvalidButDB1Available(t *testing.T) {
	rep := mkReport(100, map[string]int{"Chr": 100, "BP": 100})
	plan := PlanPass1(rep, config.BuildHG19, true, true)
	assert.False(t, plan.DoLiftover)
	assert.Equal(t, config.BuildHG38, plan.NewBuild, "build still advances since ChrBP will be restored later")
}

func TestPlanPass1_Liftover_KeptAtOriginalBuildWhenChrBPEntirelyInvalidAndNoDB1(t *testing.T) {
	rep := mkReport(100, map[string]int{"Chr": 100, "BP": 100})
	plan := PlanPass1(rep, config.BuildHG19, true, false)
	assert.False(t, plan.DoLiftover)
	assert.Equal(t, config.BuildHG19, plan.NewBuild)
}

func TestPlanPass2_OnlyRunsAfterRsIDSortWithResidualIssues(t *testing.T) {
	rep := mkReport(100, map[string]int{"OA": 10})
	_, run := PlanPass2(sortstage.ByRsID, true, rep)
	assert.True(t, run)

	_, run2 := PlanPass2(sortstage.ByChrBP, true, rep)
	assert.False(t, run2, "second pass never runs after a ChrBP-sorted first pass")

	cleanRep := mkReport(100, map[string]int{})
	_, run3 := PlanPass2(sortstage.ByRsID, true, cleanRep)
	assert.False(t, run3, "no residual issues means no second pass")
}

func TestResolversForPass_GatesStatBackfillOnEntireInvalidity(t *testing.T) {
	rep := mkReport(100, map[string]int{"SE": 50, "beta": 100, "pval": 0})
	act := DefaultActivatedResolvers()
	p := ResolversForPass(sortstage.ByChrBP, true, rep, act, false)
	assert.False(t, p.ResolveSE, "beta entirely invalid makes resolve-SE a no-op for every row")
}

func TestResolversForPass_ActivatesStatBackfillWhenPossible(t *testing.T) {
	rep := mkReport(100, map[string]int{"SE": 50, "beta": 0, "pval": 0})
	act := DefaultActivatedResolvers()
	p := ResolversForPass(sortstage.ByChrBP, true, rep, act, false)
	assert.True(t, p.ResolveSE)
}

func TestResolversForPass_BetaDisabledByDefault(t *testing.T) {
	rep := mkReport(100, map[string]int{"beta": 50, "SE": 0, "pval": 0})
	act := DefaultActivatedResolvers()
	p := ResolversForPass(sortstage.ByChrBP, true, rep, act, false)
	assert.False(t, p.ResolveBeta)
}

func TestIsTerminal(t *testing.T) {
	rep := mkReport(100, map[string]int{})
	act := DefaultActivatedResolvers()
	p := ResolversForPass(sortstage.ByChrBP, false, rep, act, false)
	assert.True(t, IsTerminal(p))
}

func TestParseActivatedResolvers_RestoreThenDoNotRestore(t *testing.T) {
	act, err := ParseActivatedResolvers([]string{"beta"}, []string{"SE"})
	assert.NoError(t, err)
	assert.True(t, act.Beta)
	assert.False(t, act.SE)
}

func TestParseActivatedResolvers_UnknownField(t *testing.T) {
	_, err := ParseActivatedResolvers([]string{"bogus"}, nil)
	assert.Error(t, err)
}

func TestTally_RestoredAndLost(t *testing.T) {
	before := mkReport(100, map[string]int{"rsID": 30, "EAF": 10})
	after := mkReport(100, map[string]int{"rsID": 5, "EAF": 12})
	tally := Tally(before, after)
	assert.Equal(t, 25, tally["rsID"].Restored)
	assert.Equal(t, 2, tally["EAF"].Lost)
}
