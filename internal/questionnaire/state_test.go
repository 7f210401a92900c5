package questionnaire

import (
	"errors"
	"testing"

	"radreport-ai/internal/checklist"
)

// twoCategoryChecklist has Lungs (2 subcategories, 3 items) and Pleura (1 item).
func twoCategoryChecklist() *checklist.Checklist {
	return &checklist.Checklist{
		StudyType: "ct_chest",
		Categories: []checklist.Category{
			{ID: "cat_0", Name: "Lungs", ScreeningQuestion: "Lungs abnormal?", Subcategories: []checklist.Subcategory{
				{Name: "Parenchyma", Items: []checklist.Item{{ID: "item_0_0_0", Text: "Nodules", FollowUp: "Size?"}, {ID: "item_0_0_1", Text: "Consolidation"}}},
				{Name: "Airways", Items: []checklist.Item{{ID: "item_0_1_0", Text: "Bronchiectasis"}}},
			}},
			{ID: "cat_1", Name: "Pleura", ScreeningQuestion: "Pleura abnormal?", Subcategories: []checklist.Subcategory{
				{Name: "Pleural space", Items: []checklist.Item{{ID: "item_1_0_0", Text: "Effusion"}}},
			}},
		},
	}
}

func strPtr(s string) *string { return &s }

func step(t *testing.T, cl *checklist.Checklist, st State, ans Answer) State {
	t.Helper()
	next, effects, err := Transition(cl, st, ans)
	if err != nil {
		t.Fatalf("Transition(%+v, %+v) error = %v", st, ans, err)
	}
	Apply(cl, effects)
	return next
}

func TestTransition_Walk(t *testing.T) {
	cl := twoCategoryChecklist()
	st := Initial(cl)

	want := []struct {
		ans  Answer
		next State
	}{
		{Answer{Value: true}, State{Kind: AwaitingItem}},
		{Answer{Value: "yes"}, State{Kind: AwaitingFollowup}},
		{Answer{Value: "6 mm RUL"}, State{Kind: AwaitingItem, Item: 1}},
		{Answer{Value: false}, State{Kind: AwaitingItem, Subcategory: 1}},
		{Answer{Value: true, Detail: strPtr("cylindrical, lower lobes")}, State{Kind: AwaitingCategoryScreen, Category: 1}},
		{Answer{Value: "no", Target: "cat_1"}, State{Kind: Complete}},
	}

	for i, w := range want {
		st = step(t, cl, st, w.ans)
		if st != w.next {
			t.Fatalf("step %d: state = %+v, want %+v", i, st, w.next)
		}
	}

	lungs := cl.Categories[0]
	if lungs.Skipped || lungs.ScreeningAnswer == nil || !*lungs.ScreeningAnswer {
		t.Errorf("lungs screening = %+v", lungs)
	}
	nod := lungs.Subcategories[0].Items[0]
	if !nod.Answered || !*nod.Affirmative || *nod.Detail != "6 mm RUL" {
		t.Errorf("nodules = %+v", nod)
	}
	if cons := lungs.Subcategories[0].Items[1]; !cons.Answered || *cons.Affirmative || cons.Detail != nil {
		t.Errorf("consolidation = %+v", cons)
	}
	if br := lungs.Subcategories[1].Items[0]; *br.Detail != "cylindrical, lower lobes" {
		t.Errorf("bronchiectasis detail = %v", br.Detail)
	}
	if pleura := cl.Categories[1]; !pleura.Skipped || *pleura.ScreeningAnswer {
		t.Errorf("pleura = %+v", pleura)
	}
	if Progress(cl, st) != 1 {
		t.Errorf("Progress() = %f at Complete", Progress(cl, st))
	}
}

func TestTransition_Errors(t *testing.T) {
	cl := twoCategoryChecklist()

	tests := []struct {
		name    string
		state   State
		ans     Answer
		wantErr error
	}{
		{name: "non boolean screen", state: State{Kind: AwaitingCategoryScreen}, ans: Answer{Value: 3}, wantErr: ErrInvalidAnswer},
		{name: "unparseable string", state: State{Kind: AwaitingItem}, ans: Answer{Value: "maybe"}, wantErr: ErrInvalidAnswer},
		{name: "missing value", state: State{Kind: AwaitingItem}, ans: Answer{}, wantErr: ErrInvalidAnswer},
		{name: "boolean follow-up", state: State{Kind: AwaitingFollowup}, ans: Answer{Value: true}, wantErr: ErrInvalidAnswer},
		{name: "wrong category", state: State{Kind: AwaitingCategoryScreen}, ans: Answer{Value: true, Target: "cat_1"}, wantErr: ErrOutOfSequence},
		{name: "skipping ahead", state: State{Kind: AwaitingItem}, ans: Answer{Value: true, Target: "item_0_1_0"}, wantErr: ErrOutOfSequence},
		{name: "complete", state: State{Kind: Complete}, ans: Answer{Value: true}, wantErr: ErrSessionClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, effects, err := Transition(cl, tt.state, tt.ans)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Transition() error = %v, want %v", err, tt.wantErr)
			}
			if effects != nil || next != tt.state {
				t.Errorf("rejected answer produced state %+v and effects %v", next, effects)
			}
		})
	}
}

func TestTransition_IsPure(t *testing.T) {
	cl := twoCategoryChecklist()
	_, effects, err := Transition(cl, Initial(cl), Answer{Value: false})
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if cl.Categories[0].ScreeningAnswer != nil || cl.Categories[0].Skipped {
		t.Error("Transition() mutated the checklist")
	}
	if len(effects) != 1 || effects[0].Kind != EffectScreen || effects[0].Value {
		t.Errorf("effects = %+v", effects)
	}
}

func TestProgress(t *testing.T) {
	cl := checklist.Default("ct_chest")
	total := float64(cl.ItemCount())
	lungsItems := float64(cl.Categories[0].ItemCount())

	st := Initial(cl)
	last := Progress(cl, st)
	if last != 0 {
		t.Fatalf("initial Progress() = %f", last)
	}

	st = step(t, cl, st, Answer{Value: false})
	got := Progress(cl, st)
	if got != lungsItems/total {
		t.Errorf("after skipping lungs Progress() = %f, want %f", got, lungsItems/total)
	}
	last = got

	st = step(t, cl, st, Answer{Value: true})
	st = step(t, cl, st, Answer{Value: true})
	if st.Kind != AwaitingFollowup {
		t.Fatalf("state = %+v, want follow-up", st)
	}
	if p := Progress(cl, st); p != last {
		t.Errorf("pending follow-up should not count, Progress() = %f, want %f", p, last)
	}

	for st.Kind != Complete {
		ans := Answer{Value: false}
		if st.Kind == AwaitingFollowup {
			ans = Answer{Value: "small"}
		}
		st = step(t, cl, st, ans)

		p := Progress(cl, st)
		if p < last {
			t.Fatalf("Progress() decreased from %f to %f", last, p)
		}
		if p == 1 && st.Kind != Complete {
			t.Fatalf("Progress() reached 1 before Complete at %+v", st)
		}
		last = p
	}
	if last != 1 {
		t.Errorf("final Progress() = %f", last)
	}
}

func TestSkippedCategoryItemsNeverPrompted(t *testing.T) {
	cl := checklist.Default("ct_chest")
	st := step(t, cl, Initial(cl), Answer{Value: false})

	for st.Kind != Complete {
		p := CurrentPrompt(cl, st)
		if p.CategoryID == cl.Categories[0].ID {
			t.Fatalf("skipped category prompted: %+v", p)
		}
		st = step(t, cl, st, Answer{Value: "no"})
	}
	for _, sub := range cl.Categories[0].Subcategories {
		for _, it := range sub.Items {
			if it.Answered {
				t.Errorf("item %s of skipped category was answered", it.ID)
			}
		}
	}
}

func TestCurrentPrompt(t *testing.T) {
	cl := twoCategoryChecklist()

	tests := []struct {
		name  string
		state State
		want  Prompt
	}{
		{
			name:  "screen",
			state: State{Kind: AwaitingCategoryScreen, Category: 1},
			want:  Prompt{Kind: AwaitingCategoryScreen, CategoryID: "cat_1", Category: "Pleura", Question: "Pleura abnormal?"},
		},
		{
			name:  "item",
			state: State{Kind: AwaitingItem, Subcategory: 1},
			want:  Prompt{Kind: AwaitingItem, CategoryID: "cat_0", Category: "Lungs", Subcategory: "Airways", ItemID: "item_0_1_0", Question: "Bronchiectasis"},
		},
		{
			name:  "follow-up with own prompt",
			state: State{Kind: AwaitingFollowup},
			want:  Prompt{Kind: AwaitingFollowup, CategoryID: "cat_0", Category: "Lungs", Subcategory: "Parenchyma", ItemID: "item_0_0_0", Question: "Nodules", FollowUp: "Size?"},
		},
		{
			name:  "follow-up default prompt",
			state: State{Kind: AwaitingFollowup, Item: 1},
			want:  Prompt{Kind: AwaitingFollowup, CategoryID: "cat_0", Category: "Lungs", Subcategory: "Parenchyma", ItemID: "item_0_0_1", Question: "Consolidation", FollowUp: DefaultFollowUp},
		},
		{name: "complete", state: State{Kind: Complete}, want: Prompt{Kind: Complete}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurrentPrompt(cl, tt.state); got != tt.want {
				t.Errorf("CurrentPrompt() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in      any
		want    bool
		wantErr bool
	}{
		{true, true, false},
		{false, false, false},
		{"Yes", true, false},
		{" n ", false, false},
		{"present", true, false},
		{"absent", false, false},
		{"", false, true},
		{1, false, true},
		{nil, false, true},
	}
	for _, tt := range tests {
		got, err := parseBool(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseBool(%v) = %v, %v", tt.in, got, err)
		}
	}
}
