// Package checklist turns indexed reference passages into a validated
// category/subcategory/item questionnaire for one study type.
package checklist

import (
	"errors"
	"fmt"
)

var (
	// ErrRetrievalEmpty is returned when no chunks exist for the requested study type.
	ErrRetrievalEmpty = errors.New("no reference content indexed for study type")
	// ErrGenerationSchema matches every SchemaError.
	ErrGenerationSchema = errors.New("checklist does not match schema")
)

// SchemaError describes why a checklist payload was rejected.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s", ErrGenerationSchema.Error(), e.Reason)
}

// Is lets errors.Is(err, ErrGenerationSchema) match.
func (e *SchemaError) Is(target error) bool {
	return target == ErrGenerationSchema
}

// Origin of a checklist.
const (
	SourceGenerated = "generated"
	SourceFallback  = "fallback"
)

// Item is a single finding to ask about.
type Item struct {
	ID          string  `json:"id" validate:"required"`
	Text        string  `json:"text" validate:"required"`
	FollowUp    string  `json:"followUp,omitempty"`
	Answered    bool    `json:"answered"`
	Affirmative *bool   `json:"affirmative"`
	Detail      *string `json:"detail"`
}

// Subcategory groups items within a category.
type Subcategory struct {
	Name  string `json:"name" validate:"required"`
	Items []Item `json:"items" validate:"min=1,dive"`
}

// Category is a screened anatomical region. Skipped is true iff ScreeningAnswer is false.
type Category struct {
	ID                string        `json:"id" validate:"required"`
	Name              string        `json:"name" validate:"required"`
	ScreeningQuestion string        `json:"screeningQuestion" validate:"required"`
	ScreeningAnswer   *bool         `json:"screeningAnswer"`
	Subcategories     []Subcategory `json:"subcategories" validate:"min=1,dive"`
	Skipped           bool          `json:"skipped"`
}

// Checklist is the questionnaire for one study type.
type Checklist struct {
	StudyType  string     `json:"studyType" validate:"required"`
	Categories []Category `json:"categories" validate:"min=1,dive"`
	Source     string     `json:"source"`
}

// ItemCount returns the number of items across the checklist.
func (c *Checklist) ItemCount() int {
	n := 0
	for _, cat := range c.Categories {
		n += cat.ItemCount()
	}
	return n
}

// ItemCount returns the number of items in the category.
func (c *Category) ItemCount() int {
	n := 0
	for _, sub := range c.Subcategories {
		n += len(sub.Items)
	}
	return n
}

// Clone returns a deep copy.
func (c *Checklist) Clone() *Checklist {
	out := &Checklist{
		StudyType:  c.StudyType,
		Source:     c.Source,
		Categories: make([]Category, len(c.Categories)),
	}
	for i, cat := range c.Categories {
		cat.ScreeningAnswer = cloneBool(cat.ScreeningAnswer)
		subs := make([]Subcategory, len(cat.Subcategories))
		for j, sub := range cat.Subcategories {
			items := make([]Item, len(sub.Items))
			for k, it := range sub.Items {
				it.Affirmative = cloneBool(it.Affirmative)
				if it.Detail != nil {
					d := *it.Detail
					it.Detail = &d
				}
				items[k] = it
			}
			subs[j] = Subcategory{Name: sub.Name, Items: items}
		}
		cat.Subcategories = subs
		out.Categories[i] = cat
	}
	return out
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
