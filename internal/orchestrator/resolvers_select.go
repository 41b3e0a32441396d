package orchestrator

import (
	"fmt"
	"strings"
)

// fieldKeys are the ActivatedResolvers toggle names accepted by
// --restore/--do-not-restore (spec.md §6's CLI surface), case-insensitive.
var fieldKeys = []string{"ChrBP", "rsID", "OA", "EA", "EAF", "beta", "SE", "pval"}

func (a *ActivatedResolvers) set(key string, v bool) error {
	switch strings.ToLower(key) {
	case "chrbp":
		a.ChrBP = v
	case "rsid":
		a.RsID = v
	case "oa":
		a.OA = v
	case "ea":
		a.EA = v
	case "eaf":
		a.EAF = v
	case "beta":
		a.Beta = v
	case "se":
		a.SE = v
	case "pval":
		a.Pval = v
	default:
		return fmt.Errorf("unknown resolver field %q (valid: %s)", key, strings.Join(fieldKeys, ", "))
	}
	return nil
}

// ParseActivatedResolvers starts from the defaults (spec.md §4.5) and
// applies --restore (force-enable) then --do-not-restore (force-disable),
// in that order, so a field named in both ends up disabled.
func ParseActivatedResolvers(restore, doNotRestore []string) (ActivatedResolvers, error) {
	act := DefaultActivatedResolvers()
	for _, f := range restore {
		if err := act.set(f, true); err != nil {
			return act, err
		}
	}
	for _, f := range doNotRestore {
		if err := act.set(f, false); err != nil {
			return act, err
		}
	}
	return act, nil
}
