// Package validation checks a workflow definition against the invariants the
// backend enforces before a definition may be submitted: metadata field
// bounds, identity uniqueness, SLA tier ordering, and graph structure.
//
// Validate is a pure function returning human-readable messages; it never
// fails and is cheap enough to re-run on every edit. Graph problems are
// reported with offender counts rather than per item so the error list stays
// bounded and scannable on large graphs; the editor's inline field markers
// point at the exact offenders.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hdts/flowkit/pkg/models"
)

// Validate runs every check against the workflow and returns the full error
// list. existing supplies the duplicate-identity candidates; the entry whose
// ID matches wf.ID is skipped so an edited workflow never flags itself.
func Validate(wf *models.Workflow, existing []models.WorkflowSummary) []string {
	errs := make([]string, 0)

	errs = append(errs, checkFields(wf)...)
	errs = append(errs, checkDuplicates(wf, existing)...)
	errs = append(errs, checkSLAs(wf)...)

	if len(wf.Steps) > 0 {
		errs = append(errs, checkGraph(wf.Steps, wf.Transitions)...)
	}

	return errs
}

func checkFields(wf *models.Workflow) []string {
	var errs []string

	errs = appendFieldErrors(errs, "name", wf.Name, models.MaxNameLength)
	errs = appendFieldErrors(errs, "category", wf.Category, models.MaxNameLength)
	errs = appendFieldErrors(errs, "sub-category", wf.SubCategory, models.MaxNameLength)
	errs = appendFieldErrors(errs, "department", wf.Department, models.MaxNameLength)
	errs = appendFieldErrors(errs, "description", wf.Description, models.MaxDescriptionLength)

	return errs
}

func appendFieldErrors(errs []string, field, value string, maxLen int) []string {
	if strings.TrimSpace(value) == "" {
		return append(errs, field+" is required")
	}

	if utf8.RuneCountInString(value) > maxLen {
		return append(errs, fmt.Sprintf("%s must be at most %d characters", field, maxLen))
	}

	return errs
}

func checkDuplicates(wf *models.Workflow, existing []models.WorkflowSummary) []string {
	var errs []string

	for _, other := range existing {
		if other.ID != "" && other.ID == wf.ID {
			continue
		}

		if wf.Name != "" && strings.EqualFold(other.Name, wf.Name) {
			errs = append(errs, fmt.Sprintf("a workflow named %q already exists", other.Name))

			break
		}
	}

	for _, other := range existing {
		if other.ID != "" && other.ID == wf.ID {
			continue
		}

		if wf.Category != "" && wf.SubCategory != "" &&
			strings.EqualFold(other.Category, wf.Category) &&
			strings.EqualFold(other.SubCategory, wf.SubCategory) {
			errs = append(errs, fmt.Sprintf(
				"a workflow already covers category %q / %q", other.Category, other.SubCategory))

			break
		}
	}

	return errs
}

// slaTiers orders the tiers from most to least urgent; limits must strictly
// increase along it, and a set tier requires every less-urgent tier after it
// to be set as well.
func checkSLAs(wf *models.Workflow) []string {
	tiers := []struct {
		name string
		sla  *models.SLA
	}{
		{"urgent", wf.UrgentSLA},
		{"high", wf.HighSLA},
		{"medium", wf.MediumSLA},
		{"low", wf.LowSLA},
	}

	var errs []string

	for i := 0; i < len(tiers)-1; i++ {
		cur, next := tiers[i], tiers[i+1]

		if cur.sla != nil && next.sla == nil {
			errs = append(errs, fmt.Sprintf(
				"%s SLA requires the %s SLA to be set as well", cur.name, next.name))

			continue
		}

		if cur.sla != nil && next.sla != nil && cur.sla.TotalMinutes() >= next.sla.TotalMinutes() {
			errs = append(errs, fmt.Sprintf(
				"%s SLA must be shorter than the %s SLA", cur.name, next.name))
		}
	}

	return errs
}

func checkGraph(steps []*models.Step, transitions []*models.Transition) []string {
	var errs []string

	starts := 0
	missingRole := 0
	stepIDs := make(map[string]struct{}, len(steps))

	for _, s := range steps {
		stepIDs[s.ID] = struct{}{}

		if s.IsStart {
			starts++
		}

		if strings.TrimSpace(s.Role) == "" {
			missingRole++
		}
	}

	switch {
	case starts == 0:
		errs = append(errs, "workflow has no start step; mark exactly one step as start")
	case starts > 1:
		errs = append(errs, fmt.Sprintf("workflow has %d start steps; exactly one is allowed", starts))
	}

	if missingRole > 0 {
		errs = append(errs, fmt.Sprintf("%d step(s) have no role assigned", missingRole))
	}

	orphaned := 0

	for _, t := range transitions {
		if _, ok := stepIDs[t.From]; !ok {
			orphaned++

			continue
		}

		if _, ok := stepIDs[t.To]; !ok {
			orphaned++
		}
	}

	if orphaned > 0 {
		errs = append(errs, fmt.Sprintf("%d transition(s) reference steps that no longer exist", orphaned))
	}

	return errs
}
