package checklist

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"radreport-ai/internal/studies"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// skippedCategories are workflow steps rather than anatomy.
var skippedCategories = []string{"initial assessment", "final check", "image quality"}

// proceduralPrefixes mark items that are reading instructions rather than findings.
var proceduralPrefixes = []string{"scroll", "compare", "review", "check", "assess", "evaluate", "examine", "look for", "ensure", "confirm"}

type rawChecklist struct {
	Checklist []rawCategory `json:"checklist"`
}

type rawCategory struct {
	Category          string           `json:"category"`
	Name              string           `json:"name"`
	ScreeningQuestion string           `json:"screening_question"`
	Subcategories     []rawSubcategory `json:"subcategories"`
}

type rawSubcategory struct {
	Name  string    `json:"name"`
	Items []rawItem `json:"items"`
}

// rawItem accepts either a bare string or {"text", "follow_up"}.
type rawItem struct {
	Text     string `json:"text"`
	FollowUp string `json:"follow_up"`
}

func (r *rawItem) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Text = s
		return nil
	}
	type plain rawItem
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = rawItem(p)
	return nil
}

// Parse decodes a model answer into a normalized, validated checklist.
// Markdown code fences and text around the JSON are tolerated.
func Parse(studyType, answer string) (*Checklist, error) {
	payload := extractJSON(answer)
	if payload == "" {
		return nil, &SchemaError{Reason: "no JSON object in answer"}
	}

	var raw rawChecklist
	if strings.HasPrefix(payload, "[") {
		if err := json.Unmarshal([]byte(payload), &raw.Checklist); err != nil {
			return nil, &SchemaError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
		}
	} else {
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			return nil, &SchemaError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
		}
	}

	cl := normalize(studyType, raw.Checklist)
	cl.Source = SourceGenerated
	if err := Validate(cl); err != nil {
		return nil, err
	}
	return cl, nil
}

func extractJSON(answer string) string {
	s := strings.TrimSpace(answer)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		s = strings.TrimSpace(s)
	}

	open := strings.IndexAny(s, "{[")
	if open < 0 {
		return ""
	}
	closer := "}"
	if s[open] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(s, closer)
	if end < open {
		return ""
	}
	return s[open : end+1]
}

// normalize trims text, drops procedural content and empty branches,
// derives missing screening questions and assigns IDs.
func normalize(studyType string, raw []rawCategory) *Checklist {
	cl := &Checklist{StudyType: studyType, Categories: []Category{}}

	for _, rc := range raw {
		name := strings.TrimSpace(rc.Category)
		if name == "" {
			name = strings.TrimSpace(rc.Name)
		}
		if name == "" || isSkippedCategory(name) {
			continue
		}

		cat := Category{Name: name, ScreeningQuestion: strings.TrimSpace(rc.ScreeningQuestion)}
		if cat.ScreeningQuestion == "" {
			cat.ScreeningQuestion = ScreeningQuestion(name)
		}

		for _, rs := range rc.Subcategories {
			sub := Subcategory{Name: strings.TrimSpace(rs.Name)}
			if sub.Name == "" {
				sub.Name = name
			}
			for _, ri := range rs.Items {
				text := strings.TrimSpace(ri.Text)
				if text == "" || isProcedural(text) {
					continue
				}
				sub.Items = append(sub.Items, Item{Text: text, FollowUp: strings.TrimSpace(ri.FollowUp)})
			}
			if len(sub.Items) > 0 {
				cat.Subcategories = append(cat.Subcategories, sub)
			}
		}

		if len(cat.Subcategories) > 0 {
			cl.Categories = append(cl.Categories, cat)
		}
	}

	assignIDs(cl)
	return cl
}

// ScreeningQuestion is the default screening question for a category.
func ScreeningQuestion(category string) string {
	return fmt.Sprintf("Are there any abnormalities in the %s?", category)
}

func assignIDs(cl *Checklist) {
	for c := range cl.Categories {
		cat := &cl.Categories[c]
		cat.ID = fmt.Sprintf("cat_%d", c)
		for s := range cat.Subcategories {
			for i := range cat.Subcategories[s].Items {
				cat.Subcategories[s].Items[i].ID = fmt.Sprintf("item_%d_%d_%d", c, s, i)
			}
		}
	}
}

func isSkippedCategory(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range skippedCategories {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func isProcedural(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range proceduralPrefixes {
		if strings.HasPrefix(lower, p+" ") || lower == p {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants: at least one category, every
// category with a screening question and at least one subcategory, every
// subcategory with at least one item.
func Validate(cl *Checklist) error {
	if cl == nil {
		return &SchemaError{Reason: "checklist is nil"}
	}
	if err := validate.Struct(cl); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return &SchemaError{Reason: strings.Join(msgs, "; ")}
		}
		return &SchemaError{Reason: err.Error()}
	}
	return nil
}

// Default builds the fixed fallback checklist for studyType.
func Default(studyType string) *Checklist {
	profile := studies.Lookup(studyType)
	cl := &Checklist{StudyType: studyType, Source: SourceFallback}

	index := map[string]int{}
	for _, section := range profile.Fallback {
		i, ok := index[section.Category]
		if !ok {
			i = len(cl.Categories)
			index[section.Category] = i
			cl.Categories = append(cl.Categories, Category{
				Name:              section.Category,
				ScreeningQuestion: ScreeningQuestion(section.Category),
			})
		}

		sub := Subcategory{Name: section.Subcategory}
		for _, p := range section.Items {
			sub.Items = append(sub.Items, Item{Text: p.Text, FollowUp: p.FollowUp})
		}
		cl.Categories[i].Subcategories = append(cl.Categories[i].Subcategories, sub)
	}

	assignIDs(cl)
	return cl
}
