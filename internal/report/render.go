package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"radreport-ai/internal/studies"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown renders the report in the History / Technique / Observations / Impression layout.
func Markdown(rep *Report) string {
	var b strings.Builder

	b.WriteString("# RADIOLOGY REPORT\n\n")
	b.WriteString(fmt.Sprintf("**Case ID:** %s  \n", rep.CaseID))
	b.WriteString(fmt.Sprintf("**Version:** %d  \n", rep.Version))
	b.WriteString(fmt.Sprintf("**Date:** %s  \n", rep.CreatedAt.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("**Patient:** %s  \n", patientLine(rep)))
	b.WriteString(fmt.Sprintf("**Study:** %s\n\n", studies.DisplayName(rep.StudyType)))

	b.WriteString("## History\n\n")
	b.WriteString(rep.History + "\n\n")

	b.WriteString("## Technique\n\n")
	b.WriteString(rep.Technique + "\n\n")

	b.WriteString("## Observations\n\n")
	if len(rep.Observations) == 0 {
		b.WriteString("No abnormal findings recorded.\n\n")
	}
	for _, obs := range rep.Observations {
		b.WriteString(fmt.Sprintf("### %s\n\n", obs.Region))
		for _, st := range obs.Statements {
			b.WriteString(fmt.Sprintf("- %s\n", st))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Impression\n\n")
	if rep.Status == StatusPendingImpression {
		b.WriteString("_Impression pending._\n")
	} else {
		b.WriteString(rep.Impression + "\n")
	}

	return b.String()
}

// HTML renders the markdown layout as an HTML fragment.
func HTML(rep *Report) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(rep)), &buf); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

func patientLine(rep *Report) string {
	age := "Not specified"
	if rep.Patient.Age > 0 {
		age = fmt.Sprintf("%d year old", rep.Patient.Age)
	}
	gender := rep.Patient.Gender
	if gender == "" {
		gender = "gender not specified"
	}
	return age + " " + gender
}
