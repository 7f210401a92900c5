// Package report builds radiology reports from finished questionnaire sessions.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"radreport-ai/internal/checklist"
	"radreport-ai/internal/questionnaire"
	"radreport-ai/internal/studies"
)

var (
	// ErrEmptySession is returned when a session has no recorded answers.
	ErrEmptySession = errors.New("session has no answers")
	// ErrImpressionPending is returned when the report was stored without an impression.
	ErrImpressionPending = errors.New("impression pending")
)

// Report statuses.
const (
	StatusFinal             = "final"
	StatusPendingImpression = "pending_impression"
)

// NoFindingsImpression is used when no finding was recorded.
const NoFindingsImpression = "No significant abnormalities identified on the current study."

const historyNotSpecified = "Not specified"

// Finding is one observation statement derived from an affirmative item.
type Finding struct {
	Region    string `json:"region"`
	Category  string `json:"category"`
	Statement string `json:"statement"`
}

// RegionObservations holds the statements of one region, in traversal order.
type RegionObservations struct {
	Region     string   `json:"region"`
	Statements []string `json:"statements"`
}

// Report is one immutable report version for a case.
type Report struct {
	CaseID       string                    `json:"caseId"`
	Version      int                       `json:"version"`
	StudyType    string                    `json:"studyType"`
	Patient      questionnaire.PatientMeta `json:"patient"`
	History      string                    `json:"history"`
	Technique    string                    `json:"technique"`
	Observations []RegionObservations      `json:"observations"`
	Impression   string                    `json:"impression"`
	Status       string                    `json:"status"`
	CreatedAt    time.Time                 `json:"createdAt"`
}

// Technique renders the technique section for the session's study type and contrast flag.
func Technique(s *questionnaire.Session) string {
	return studies.Lookup(s.StudyType).Technique(s.Patient.Contrast)
}

// Findings lists affirmative items of categories that were not skipped.
// Items without detail use their text verbatim.
func Findings(cl *checklist.Checklist) []Finding {
	var out []Finding
	for _, cat := range cl.Categories {
		if cat.Skipped {
			continue
		}
		region := studies.RegionFor(cat.Name)
		for _, sub := range cat.Subcategories {
			for _, it := range sub.Items {
				if it.Affirmative == nil || !*it.Affirmative {
					continue
				}
				statement := it.Text
				if it.Detail != nil && strings.TrimSpace(*it.Detail) != "" {
					statement = fmt.Sprintf("%s: %s", it.Text, strings.TrimSpace(*it.Detail))
				}
				out = append(out, Finding{Region: region, Category: cat.Name, Statement: statement})
			}
		}
	}
	return out
}

// GroupByRegion groups findings by region. Regions appear in the order of their first finding.
func GroupByRegion(findings []Finding) []RegionObservations {
	out := []RegionObservations{}
	index := map[string]int{}
	for _, f := range findings {
		i, ok := index[f.Region]
		if !ok {
			i = len(out)
			index[f.Region] = i
			out = append(out, RegionObservations{Region: f.Region})
		}
		out[i].Statements = append(out[i].Statements, f.Statement)
	}
	return out
}

func history(s *questionnaire.Session) string {
	if h := strings.TrimSpace(s.ClinicalHistory); h != "" {
		return h
	}
	return historyNotSpecified
}
