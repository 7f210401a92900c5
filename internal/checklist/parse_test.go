package checklist

import (
	"errors"
	"strings"
	"testing"
)

const validAnswer = `{
  "checklist": [
    {
      "category": "Lungs",
      "screening_question": "Any lung abnormality?",
      "subcategories": [
        {"name": "Parenchyma", "items": ["Pulmonary nodules", {"text": "Consolidation", "follow_up": "Describe lobe and extent."}]}
      ]
    },
    {
      "category": "Pleura",
      "subcategories": [{"name": "Pleural space", "items": ["Pleural effusion"]}]
    }
  ]
}`

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		wantErr bool
		check   func(t *testing.T, cl *Checklist)
	}{
		{
			name:   "plain object",
			answer: validAnswer,
			check: func(t *testing.T, cl *Checklist) {
				if len(cl.Categories) != 2 || cl.ItemCount() != 3 {
					t.Fatalf("got %d categories, %d items", len(cl.Categories), cl.ItemCount())
				}
				lungs := cl.Categories[0]
				if lungs.ID != "cat_0" || lungs.ScreeningQuestion != "Any lung abnormality?" {
					t.Errorf("lungs = %+v", lungs)
				}
				item := lungs.Subcategories[0].Items[1]
				if item.ID != "item_0_0_1" || item.Text != "Consolidation" || item.FollowUp != "Describe lobe and extent." {
					t.Errorf("item = %+v", item)
				}
				if cl.Categories[1].ScreeningQuestion != "Are there any abnormalities in the Pleura?" {
					t.Errorf("derived screening question = %q", cl.Categories[1].ScreeningQuestion)
				}
				if cl.Source != SourceGenerated || cl.StudyType != "ct_chest" {
					t.Errorf("checklist = %s/%s", cl.StudyType, cl.Source)
				}
			},
		},
		{
			name:   "fenced with prose",
			answer: "Here is the checklist:\n```json\n" + validAnswer + "\n```\nLet me know.",
			check: func(t *testing.T, cl *Checklist) {
				if len(cl.Categories) != 2 {
					t.Errorf("got %d categories", len(cl.Categories))
				}
			},
		},
		{
			name:   "top level array",
			answer: `[{"category": "Bones", "subcategories": [{"name": "Ribs", "items": ["Rib fractures"]}]}]`,
			check: func(t *testing.T, cl *Checklist) {
				if cl.Categories[0].Name != "Bones" {
					t.Errorf("got %+v", cl.Categories)
				}
			},
		},
		{
			name: "procedural content dropped",
			answer: `{"checklist": [
				{"category": "Initial Assessment", "subcategories": [{"name": "Setup", "items": ["Review history"]}]},
				{"category": "Lungs", "subcategories": [
					{"name": "Technique", "items": ["Scroll through all images", "Compare to prior"]},
					{"name": "", "items": ["Evaluate", "Emphysema", "  "]}
				]},
				{"category": "Image Quality", "subcategories": [{"name": "Artifacts", "items": ["Motion artifact"]}]}
			]}`,
			check: func(t *testing.T, cl *Checklist) {
				if len(cl.Categories) != 1 || len(cl.Categories[0].Subcategories) != 1 {
					t.Fatalf("got %+v", cl.Categories)
				}
				sub := cl.Categories[0].Subcategories[0]
				if sub.Name != "Lungs" || len(sub.Items) != 1 || sub.Items[0].Text != "Emphysema" {
					t.Errorf("sub = %+v", sub)
				}
				if sub.Items[0].ID != "item_0_0_0" {
					t.Errorf("IDs should be assigned after filtering, got %s", sub.Items[0].ID)
				}
			},
		},
		{name: "not json", answer: "I cannot help with that.", wantErr: true},
		{name: "broken json", answer: `{"checklist": [{"category": "Lungs",}`, wantErr: true},
		{name: "empty checklist", answer: `{"checklist": []}`, wantErr: true},
		{name: "only procedural", answer: `{"checklist": [{"category": "Final Checks", "subcategories": [{"name": "x", "items": ["Ensure completeness"]}]}]}`, wantErr: true},
		{name: "category without items", answer: `{"checklist": [{"category": "Lungs", "subcategories": [{"name": "x", "items": []}]}]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl, err := Parse("ct_chest", tt.answer)
			if tt.wantErr {
				if !errors.Is(err, ErrGenerationSchema) {
					t.Fatalf("Parse() error = %v, want ErrGenerationSchema", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			tt.check(t, cl)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Default("ct_chest")
	if err := Validate(valid); err != nil {
		t.Fatalf("Validate(default) error = %v", err)
	}

	broken := valid.Clone()
	broken.Categories[0].ScreeningQuestion = ""
	broken.Categories[1].Subcategories[0].Items = nil

	err := Validate(broken)
	if !errors.Is(err, ErrGenerationSchema) {
		t.Fatalf("Validate() error = %v, want ErrGenerationSchema", err)
	}
	for _, field := range []string{"screeningQuestion", "items"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("Validate() error %q should name %s", err, field)
		}
	}

	if err := Validate(nil); !errors.Is(err, ErrGenerationSchema) {
		t.Errorf("Validate(nil) error = %v", err)
	}
}

func TestDefault(t *testing.T) {
	for _, st := range []string{"ct_chest", "ct_head", "ct_lumbar_spine", "ct_soft_tissue_neck", "xr_knee"} {
		cl := Default(st)
		if err := Validate(cl); err != nil {
			t.Errorf("Default(%q) invalid: %v", st, err)
		}
		if cl.Source != SourceFallback || cl.StudyType != st {
			t.Errorf("Default(%q) = %s/%s", st, cl.StudyType, cl.Source)
		}
	}

	if got := Default("xr_knee").Categories[0].Name; got != "General Assessment" {
		t.Errorf("unknown study fallback category = %q", got)
	}
}

func TestChecklist_CloneIsDeep(t *testing.T) {
	orig := Default("ct_chest")
	cp := orig.Clone()

	yes := true
	detail := "8 mm"
	cp.Categories[0].ScreeningAnswer = &yes
	cp.Categories[0].Subcategories[0].Items[0].Affirmative = &yes
	cp.Categories[0].Subcategories[0].Items[0].Detail = &detail
	cp.Categories[0].Subcategories[0].Items[0].Text = "changed"

	if orig.Categories[0].ScreeningAnswer != nil || orig.Categories[0].Subcategories[0].Items[0].Affirmative != nil {
		t.Error("Clone() shares answer pointers")
	}
	if orig.Categories[0].Subcategories[0].Items[0].Text == "changed" {
		t.Error("Clone() shares item slices")
	}
}
