// Package questionnaire walks a checklist one question at a time: category
// screening, item answers and follow-up details, with skip-on-negative logic.
package questionnaire

import (
	"errors"
	"fmt"
	"strings"

	"radreport-ai/internal/checklist"
)

var (
	// ErrInvalidAnswer is returned when the answer has the wrong type for the current question.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrOutOfSequence is returned when an answer targets a question other than the current one.
	ErrOutOfSequence = errors.New("answer out of sequence")
	// ErrSessionClosed is returned when answering a completed or finalized session.
	ErrSessionClosed = errors.New("session closed")
	// ErrSessionNotFound is returned when no session exists for a case ID.
	ErrSessionNotFound = errors.New("session not found")
	// ErrCaseExists is returned when starting a case whose ID is already taken.
	ErrCaseExists = errors.New("case already exists")
)

// DefaultFollowUp is asked for items without their own follow-up prompt.
const DefaultFollowUp = "If present, describe: location, size, characteristics and associated findings."

// Kind names a traversal state.
type Kind string

const (
	AwaitingCategoryScreen Kind = "awaiting_category_screen"
	AwaitingItem           Kind = "awaiting_item"
	AwaitingFollowup       Kind = "awaiting_followup"
	Complete               Kind = "complete"
)

// State is the traversal cursor. Indices address the checklist; they are
// meaningful only for the states that use them.
type State struct {
	Kind        Kind `json:"kind"`
	Category    int  `json:"category"`
	Subcategory int  `json:"subcategory"`
	Item        int  `json:"item"`
}

// Answer is one submission. Value is a boolean (or yes/no string) for screening
// and item questions and free text for follow-ups. Target, when set, must name
// the category or item at the cursor.
type Answer struct {
	Value  any
	Detail *string
	Target string
}

// EffectKind names a checklist mutation.
type EffectKind string

const (
	EffectScreen EffectKind = "screen"
	EffectItem   EffectKind = "item"
	EffectDetail EffectKind = "detail"
)

// Effect is a checklist mutation produced by Transition.
type Effect struct {
	Kind        EffectKind
	Category    int
	Subcategory int
	Item        int
	Value       bool
	Detail      string
}

// Initial returns the starting state for cl.
func Initial(cl *checklist.Checklist) State {
	return screenOrComplete(cl, 0)
}

// Transition computes the next state and the checklist mutations for ans.
// It does not modify cl; use Apply for that. Errors leave nothing to apply.
func Transition(cl *checklist.Checklist, st State, ans Answer) (State, []Effect, error) {
	switch st.Kind {
	case Complete:
		return st, nil, ErrSessionClosed

	case AwaitingCategoryScreen:
		cat := &cl.Categories[st.Category]
		if err := checkTarget(ans.Target, cat.ID); err != nil {
			return st, nil, err
		}
		yes, err := parseBool(ans.Value)
		if err != nil {
			return st, nil, err
		}
		effects := []Effect{{Kind: EffectScreen, Category: st.Category, Value: yes}}
		if !yes {
			return screenOrComplete(cl, st.Category+1), effects, nil
		}
		return State{Kind: AwaitingItem, Category: st.Category}, effects, nil

	case AwaitingItem:
		item := itemAt(cl, st)
		if err := checkTarget(ans.Target, item.ID); err != nil {
			return st, nil, err
		}
		yes, err := parseBool(ans.Value)
		if err != nil {
			return st, nil, err
		}
		effects := []Effect{{Kind: EffectItem, Category: st.Category, Subcategory: st.Subcategory, Item: st.Item, Value: yes}}
		if !yes {
			return successor(cl, st), effects, nil
		}
		if ans.Detail != nil {
			effects = append(effects, detailEffect(st, *ans.Detail))
			return successor(cl, st), effects, nil
		}
		st.Kind = AwaitingFollowup
		return st, effects, nil

	case AwaitingFollowup:
		item := itemAt(cl, st)
		if err := checkTarget(ans.Target, item.ID); err != nil {
			return st, nil, err
		}
		detail, err := followupDetail(ans)
		if err != nil {
			return st, nil, err
		}
		return successor(cl, st), []Effect{detailEffect(st, detail)}, nil
	}

	return st, nil, fmt.Errorf("unknown state %q", st.Kind)
}

// Apply performs effects on cl.
func Apply(cl *checklist.Checklist, effects []Effect) {
	for _, e := range effects {
		switch e.Kind {
		case EffectScreen:
			cat := &cl.Categories[e.Category]
			v := e.Value
			cat.ScreeningAnswer = &v
			cat.Skipped = !v
		case EffectItem:
			it := &cl.Categories[e.Category].Subcategories[e.Subcategory].Items[e.Item]
			v := e.Value
			it.Answered = true
			it.Affirmative = &v
		case EffectDetail:
			it := &cl.Categories[e.Category].Subcategories[e.Subcategory].Items[e.Item]
			d := e.Detail
			it.Detail = &d
		}
	}
}

func detailEffect(st State, detail string) Effect {
	return Effect{Kind: EffectDetail, Category: st.Category, Subcategory: st.Subcategory, Item: st.Item, Detail: strings.TrimSpace(detail)}
}

func itemAt(cl *checklist.Checklist, st State) *checklist.Item {
	return &cl.Categories[st.Category].Subcategories[st.Subcategory].Items[st.Item]
}

// successor moves past the item at st: next item, next subcategory, or the next category's screen.
func successor(cl *checklist.Checklist, st State) State {
	cat := cl.Categories[st.Category]
	if st.Item+1 < len(cat.Subcategories[st.Subcategory].Items) {
		return State{Kind: AwaitingItem, Category: st.Category, Subcategory: st.Subcategory, Item: st.Item + 1}
	}
	if st.Subcategory+1 < len(cat.Subcategories) {
		return State{Kind: AwaitingItem, Category: st.Category, Subcategory: st.Subcategory + 1}
	}
	return screenOrComplete(cl, st.Category+1)
}

func screenOrComplete(cl *checklist.Checklist, category int) State {
	if category >= len(cl.Categories) {
		return State{Kind: Complete}
	}
	return State{Kind: AwaitingCategoryScreen, Category: category}
}

func checkTarget(target, current string) error {
	if target != "" && target != current {
		return fmt.Errorf("%w: expected answer for %s, got %s", ErrOutOfSequence, current, target)
	}
	return nil
}

func parseBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "yes", "y", "true", "positive", "present":
			return true, nil
		case "no", "n", "false", "negative", "absent":
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: expected yes/no, got %v", ErrInvalidAnswer, v)
}

func followupDetail(ans Answer) (string, error) {
	if ans.Detail != nil {
		return *ans.Detail, nil
	}
	switch v := ans.Value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	}
	return "", fmt.Errorf("%w: expected free-text detail, got %v", ErrInvalidAnswer, ans.Value)
}

// Progress is the answered share of the checklist: answered items plus every
// item of a skipped category, over all items. An affirmative item still
// waiting for its follow-up does not count yet, so the value reaches 1 only at Complete.
func Progress(cl *checklist.Checklist, st State) float64 {
	if st.Kind == Complete {
		return 1
	}
	total := cl.ItemCount()
	if total == 0 {
		return 0
	}

	done := 0
	for _, cat := range cl.Categories {
		if cat.Skipped {
			done += cat.ItemCount()
			continue
		}
		for _, sub := range cat.Subcategories {
			for _, it := range sub.Items {
				if it.Answered {
					done++
				}
			}
		}
	}
	if st.Kind == AwaitingFollowup && itemAt(cl, st).Answered {
		done--
	}
	return float64(done) / float64(total)
}

// Prompt describes the question at the cursor.
type Prompt struct {
	Kind        Kind   `json:"kind"`
	CategoryID  string `json:"categoryId,omitempty"`
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
	ItemID      string `json:"itemId,omitempty"`
	Question    string `json:"question,omitempty"`
	FollowUp    string `json:"followUp,omitempty"`
}

// CurrentPrompt returns the question to ask at st.
func CurrentPrompt(cl *checklist.Checklist, st State) Prompt {
	p := Prompt{Kind: st.Kind}
	if st.Kind == Complete {
		return p
	}

	cat := cl.Categories[st.Category]
	p.CategoryID = cat.ID
	p.Category = cat.Name
	if st.Kind == AwaitingCategoryScreen {
		p.Question = cat.ScreeningQuestion
		return p
	}

	item := itemAt(cl, st)
	p.Subcategory = cat.Subcategories[st.Subcategory].Name
	p.ItemID = item.ID
	p.Question = item.Text
	if st.Kind == AwaitingFollowup {
		p.FollowUp = item.FollowUp
		if p.FollowUp == "" {
			p.FollowUp = DefaultFollowUp
		}
	}
	return p
}
