// Package studies holds per-study configuration data: the category taxonomy
// used to steer checklist generation, technique templates, fallback checklist
// outlines and the category to report-region mapping.
package studies

import (
	"fmt"
	"strings"
)

// Prompt is one fallback checklist item.
type Prompt struct {
	Text     string
	FollowUp string
}

// Section is one category/subcategory pair of a fallback checklist outline.
type Section struct {
	Category    string
	Subcategory string
	Items       []Prompt
}

// Profile is the configuration for one study type.
type Profile struct {
	StudyType string
	// Taxonomy lists the category names generation should organize the checklist around.
	Taxonomy []string
	// Fallback is the fixed checklist used when generation keeps failing.
	Fallback []Section

	technique string
	// contrastPhrase is replaced in technique with the contrast wording.
	contrastPhrase bool
}

const contrastToken = "{contrast}"

var generalFallback = []Section{
	{
		Category:    "General Assessment",
		Subcategory: "Overall Evaluation",
		Items: []Prompt{
			{Text: "Masses or tumors", FollowUp: "If present, describe: location, size (in mm/cm), characteristics (solid/cystic/mixed), margins, and associated findings."},
			{Text: "Fractures or bone abnormalities", FollowUp: "If present, describe: bones involved, location, displacement and alignment."},
			{Text: "Fluid collections", FollowUp: "If present, describe: location, size, density and associated findings."},
			{Text: "Soft tissue abnormalities", FollowUp: "If present, describe: location, size and nature of the abnormality."},
		},
	},
}

var profiles = map[string]Profile{
	"ct_chest": {
		StudyType:      "ct_chest",
		Taxonomy:       []string{"Lungs", "Airways", "Pleura", "Mediastinum", "Heart", "Vessels", "Bones", "Soft Tissues", "Upper Abdomen"},
		technique:      "Volume scan of chest was done " + contrastToken + ".",
		contrastPhrase: true,
		Fallback: []Section{
			{Category: "Lungs", Subcategory: "Parenchyma", Items: []Prompt{
				{Text: "Pulmonary nodules or masses", FollowUp: "If present, describe: lobe, size (in mm), density and margins."},
				{Text: "Consolidation or ground-glass opacities", FollowUp: "If present, describe: distribution and extent."},
				{Text: "Emphysema or fibrosis"},
			}},
			{Category: "Pleura", Subcategory: "Pleural space", Items: []Prompt{
				{Text: "Pleural effusion", FollowUp: "If present, describe: side and size."},
				{Text: "Pneumothorax"},
			}},
			{Category: "Mediastinum", Subcategory: "Lymph nodes", Items: []Prompt{
				{Text: "Mediastinal or hilar lymphadenopathy", FollowUp: "If present, describe: station and short-axis size."},
			}},
			{Category: "Heart", Subcategory: "Cardiac silhouette", Items: []Prompt{
				{Text: "Cardiomegaly"},
				{Text: "Pericardial effusion"},
			}},
			{Category: "Bones", Subcategory: "Thoracic skeleton", Items: []Prompt{
				{Text: "Fractures or lytic/sclerotic lesions"},
			}},
		},
	},
	"ct_head": {
		StudyType:      "ct_head",
		Taxonomy:       []string{"Brain", "Ventricles", "Extra-axial Spaces", "Vessels", "Bones", "Sinuses"},
		technique:      "Axial CT images of the head were obtained " + contrastToken + ".",
		contrastPhrase: true,
		Fallback: []Section{
			{Category: "Brain", Subcategory: "Parenchyma", Items: []Prompt{
				{Text: "Intracranial hemorrhage", FollowUp: "If present, describe: compartment, location and size."},
				{Text: "Acute or chronic infarction"},
				{Text: "Mass lesions or mass effect", FollowUp: "If present, describe: location, size and midline shift."},
			}},
			{Category: "Ventricles", Subcategory: "Ventricular system", Items: []Prompt{
				{Text: "Hydrocephalus or ventricular enlargement"},
			}},
			{Category: "Bones", Subcategory: "Calvarium", Items: []Prompt{
				{Text: "Skull fractures"},
			}},
		},
	},
	"ct_lumbar_spine":   spineProfile("ct_lumbar_spine", "lumbar"),
	"ct_cervical_spine": spineProfile("ct_cervical_spine", "cervical"),
	"ct_thoracic_spine": spineProfile("ct_thoracic_spine", "thoracic"),
	"ct_soft_tissue_neck": {
		StudyType: "ct_soft_tissue_neck",
		Taxonomy:  []string{"Neck", "Airways", "Lymph Nodes", "Vessels", "Soft Tissues", "Bones"},
		technique: "Axial CT images of the neck soft tissues were obtained.",
		Fallback:  generalFallback,
	},
	"ct_temporal_bone": {
		StudyType: "ct_temporal_bone",
		Taxonomy:  []string{"External Auditory Canal", "Middle Ear", "Inner Ear", "Mastoid", "Bones"},
		technique: "High-resolution CT images of the temporal bones were obtained.",
		Fallback:  generalFallback,
	},
}

func spineProfile(studyType, level string) Profile {
	return Profile{
		StudyType: studyType,
		Taxonomy:  []string{"Spine", "Bones", "Spinal Canal", "Soft Tissues"},
		technique: fmt.Sprintf("Axial and sagittal CT images of the %s spine were obtained.", level),
		Fallback: []Section{
			{Category: "Spine", Subcategory: "Vertebrae", Items: []Prompt{
				{Text: "Vertebral fractures", FollowUp: "If present, describe: level, morphology and retropulsion."},
				{Text: "Alignment abnormalities"},
				{Text: "Degenerative changes", FollowUp: "If present, describe: levels and severity."},
			}},
			{Category: "Spinal Canal", Subcategory: "Canal and foramina", Items: []Prompt{
				{Text: "Spinal canal or foraminal stenosis", FollowUp: "If present, describe: level and severity."},
			}},
		},
	}
}

// Lookup returns the profile for studyType. Unknown study types get a generic
// profile whose technique names the study and whose fallback is the general assessment.
func Lookup(studyType string) Profile {
	if p, ok := profiles[studyType]; ok {
		return p
	}
	return Profile{
		StudyType: studyType,
		Taxonomy:  []string{"General Assessment"},
		technique: fmt.Sprintf("CT images of %s were obtained.", studyType),
		Fallback:  generalFallback,
	}
}

// Known reports whether studyType has a dedicated profile.
func Known(studyType string) bool {
	_, ok := profiles[studyType]
	return ok
}

// Technique renders the technique sentence. contrast is nil when the case
// metadata does not say whether IV contrast was given.
func (p Profile) Technique(contrast *bool) string {
	if p.contrastPhrase {
		phrase := "without IV contrast"
		if contrast != nil && *contrast {
			phrase = "with IV contrast"
		}
		return strings.Replace(p.technique, contrastToken, phrase, 1)
	}
	if contrast != nil && *contrast {
		return p.technique + " Intravenous contrast was administered."
	}
	return p.technique
}

// DisplayName turns a study type into a human readable title ("ct_chest" -> "CT Chest").
func DisplayName(studyType string) string {
	parts := strings.FieldsFunc(studyType, func(r rune) bool { return r == '_' || r == ' ' || r == '-' })
	for i, part := range parts {
		switch strings.ToLower(part) {
		case "ct", "mri", "mr", "pet":
			parts[i] = strings.ToUpper(part)
		default:
			parts[i] = strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
		}
	}
	return strings.Join(parts, " ")
}
