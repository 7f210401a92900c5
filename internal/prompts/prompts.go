// Package prompts builds the system and user prompts sent to the completion service.
package prompts

import (
	"fmt"
	"strings"

	"radreport-ai/internal/studies"
)

const checklistSystem = `You are an expert radiologist creating a checklist for imaging study interpretation.
Based on the provided study content and case information, generate a structured checklist that covers the important anatomical regions and the CLINICAL FINDINGS to evaluate in each.

Checklist items must be clinical findings, not procedural instructions.
BAD (procedural): "Scroll through images", "Compare to prior", "Assess adequacy", "Review history"
GOOD (clinical): "Pulmonary nodules", "Pleural effusion", "Acute infarction", "Vertebral fractures"

Organize the checklist hierarchically:
- categories: major anatomical regions
- subcategories: anatomical subregions
- items: specific findings or pathologies to look for

Each category carries a yes/no screening question asking whether anything abnormal is present in that region.
Each item may carry a follow_up prompt describing what to record when the finding is present.

Return ONLY a JSON object with this structure:
{
  "checklist": [
    {
      "category": "Category Name",
      "screening_question": "Are there any abnormalities in the Category Name?",
      "subcategories": [
        {
          "name": "Subcategory Name",
          "items": [
            {"text": "finding", "follow_up": "If present, describe: location, size, characteristics."}
          ]
        }
      ]
    }
  ]
}`

const strictAddendum = `

Your previous answer could not be used. Follow these rules exactly:
- Output a single JSON object and nothing else. No prose, no markdown fences.
- "checklist" must contain at least one category.
- Every category needs a non-empty "category", a non-empty "screening_question" and at least one subcategory.
- Every subcategory needs a non-empty "name" and at least one item with non-empty "text".`

// ChecklistRequest holds the inputs for a checklist generation prompt.
type ChecklistRequest struct {
	StudyType       string
	ClinicalHistory string
	Content         []string
	Taxonomy        []string
	// Strict adds explicit schema rules; used when retrying after an unusable answer.
	Strict bool
}

// System returns the system prompt.
func (r ChecklistRequest) System() string {
	if r.Strict {
		return checklistSystem + strictAddendum
	}
	return checklistSystem
}

// User returns the user prompt.
func (r ChecklistRequest) User() string {
	var b strings.Builder
	study := studies.DisplayName(r.StudyType)

	b.WriteString("Case Information:\n")
	b.WriteString(fmt.Sprintf("- Clinical History: %s\n", orNone(r.ClinicalHistory)))
	b.WriteString(fmt.Sprintf("- Study Type: %s\n\n", study))

	if len(r.Taxonomy) > 0 {
		b.WriteString(fmt.Sprintf("Organize categories around these regions where relevant: %s\n\n", strings.Join(r.Taxonomy, ", ")))
	}

	b.WriteString("Study Content:\n")
	for _, c := range r.Content {
		b.WriteString(c)
		b.WriteString("\n\n")
	}

	b.WriteString(fmt.Sprintf("Generate the checklist for this %s study based on the clinical history and study content provided.", study))
	return b.String()
}

const impressionSystem = `You are an expert radiologist writing the IMPRESSION section of a radiology report.

Rules:
1. Summarize the key positive findings only, most clinically significant first.
2. Correlate findings with each other and with the clinical history instead of restating the observations.
3. One finding per line, brief clinical interpretation where appropriate ("likely granuloma", "suggestive of coronary artery disease").
4. Do not add measurements or details that are not in the findings.
5. No recommendations and no extra commentary.`

// Finding is one observation statement passed to the impression prompt.
type Finding struct {
	Region    string
	Statement string
}

// ImpressionRequest holds the inputs for an impression prompt.
type ImpressionRequest struct {
	StudyType       string
	Age             string
	Gender          string
	ClinicalHistory string
	Findings        []Finding
}

// System returns the system prompt.
func (r ImpressionRequest) System() string {
	return impressionSystem
}

// User returns the user prompt.
func (r ImpressionRequest) User() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Study Type: %s\n", studies.DisplayName(r.StudyType)))
	b.WriteString(fmt.Sprintf("Clinical History: %s\n", orNone(r.ClinicalHistory)))
	b.WriteString(fmt.Sprintf("Age: %s\n", orUnknown(r.Age)))
	b.WriteString(fmt.Sprintf("Gender: %s\n\n", orUnknown(r.Gender)))

	b.WriteString("Key Positive Findings:\n")
	for _, f := range r.Findings {
		b.WriteString(fmt.Sprintf("- [%s] %s\n", f.Region, f.Statement))
	}

	b.WriteString("\nWrite the IMPRESSION now.")
	return b.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None provided"
	}
	return s
}
