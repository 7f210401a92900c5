package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"radreport-ai/internal/contextutil"
	"radreport-ai/internal/llm"
	"radreport-ai/internal/prompts"
	"radreport-ai/internal/questionnaire"
)

// Synthesizer assembles and stores reports.
type Synthesizer struct {
	completer llm.Completer
	store     Store
	now       func() time.Time
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(completer llm.Completer, store Store) *Synthesizer {
	return &Synthesizer{
		completer: completer,
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Synthesize builds a new report version for the session and stores it.
// Unanswered items count as negative. When the impression cannot be
// generated the report is stored with StatusPendingImpression and returned
// together with an error matching ErrImpressionPending.
func (s *Synthesizer) Synthesize(ctx context.Context, sess *questionnaire.Session) (*Report, error) {
	logger := contextutil.LoggerFromContext(ctx).With("case_id", sess.CaseID)

	if sess.AnsweredCount() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySession, sess.CaseID)
	}

	findings := Findings(sess.Checklist)
	rep := &Report{
		CaseID:       sess.CaseID,
		StudyType:    sess.StudyType,
		Patient:      sess.Patient,
		History:      history(sess),
		Technique:    Technique(sess),
		Observations: GroupByRegion(findings),
		Status:       StatusFinal,
		CreatedAt:    s.now(),
	}

	var impressionErr error
	if len(findings) == 0 {
		rep.Impression = NoFindingsImpression
	} else {
		rep.Impression, impressionErr = s.impression(ctx, sess, findings)
		if impressionErr != nil {
			logger.WarnContext(ctx, "impression generation failed", "error", impressionErr)
			rep.Impression = ""
			rep.Status = StatusPendingImpression
		}
	}

	if err := s.store.Append(ctx, rep); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	logger.InfoContext(ctx, "report stored", "version", rep.Version, "status", rep.Status, "findings", len(findings))
	if impressionErr != nil {
		return rep, fmt.Errorf("%w: %w", ErrImpressionPending, impressionErr)
	}
	return rep, nil
}

func (s *Synthesizer) impression(ctx context.Context, sess *questionnaire.Session, findings []Finding) (string, error) {
	req := prompts.ImpressionRequest{
		StudyType:       sess.StudyType,
		Gender:          sess.Patient.Gender,
		ClinicalHistory: sess.ClinicalHistory,
	}
	if sess.Patient.Age > 0 {
		req.Age = strconv.Itoa(sess.Patient.Age)
	}
	for _, f := range findings {
		req.Findings = append(req.Findings, prompts.Finding{Region: f.Region, Statement: f.Statement})
	}

	text, err := s.completer.Complete(ctx, req.System(), req.User())
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty impression")
	}
	return text, nil
}
