package assistant_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/platepal/platepal/internal/assistant"
	"github.com/platepal/platepal/internal/database"
)

// fakeTransport records the last completion request and returns a canned
// reply.
type fakeTransport struct {
	calls        int
	lastMessages []assistant.ChatMessage
	lastTemp     float32
	reply        string
	err          error
}

func (f *fakeTransport) Complete(_ context.Context, messages []assistant.ChatMessage, temperature float32) (string, error) {
	f.calls++
	f.lastMessages = messages
	f.lastTemp = temperature
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// fakeStore returns fixed preferences and ignores writes.
type fakeStore struct {
	database.Store

	prefs    *database.Preferences
	prefsErr error
}

func (f *fakeStore) GetPreferences(context.Context) (*database.Preferences, error) {
	if f.prefsErr != nil {
		return nil, f.prefsErr
	}
	if f.prefs != nil {
		return f.prefs, nil
	}
	return &database.Preferences{}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChat(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{reply: "Try adding a pinch of salt."}
	a := assistant.New(transport, &fakeStore{}, testLogger())

	reply, err := a.Chat(context.Background(), "How do I fix bland soup?")
	if err != nil {
		t.Fatalf("Chat() unexpected error: %v", err)
	}
	if reply != "Try adding a pinch of salt." {
		t.Errorf("Chat() = %q, want transport reply", reply)
	}

	if transport.lastTemp != assistant.DefaultChatTemperature {
		t.Errorf("Chat() temperature = %v, want %v", transport.lastTemp, assistant.DefaultChatTemperature)
	}
	if len(transport.lastMessages) != 2 {
		t.Fatalf("Chat() sent %d messages, want 2", len(transport.lastMessages))
	}
	if transport.lastMessages[0].Role != assistant.RoleSystem {
		t.Errorf("first message role = %q, want system", transport.lastMessages[0].Role)
	}
	if transport.lastMessages[1].Content != "How do I fix bland soup?" {
		t.Errorf("user message = %q", transport.lastMessages[1].Content)
	}
}

func TestChatEmptyInput(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{reply: "should not be reached"}
	a := assistant.New(transport, &fakeStore{}, testLogger())

	_, err := a.Chat(context.Background(), "   ")
	if !errors.Is(err, assistant.ErrInvalidRequest) {
		t.Fatalf("Chat(blank) error = %v, want ErrInvalidRequest", err)
	}
	if transport.calls != 0 {
		t.Errorf("transport called %d times for invalid input, want 0", transport.calls)
	}
}

func TestChatIncludesPreferenceContext(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{reply: "ok"}
	store := &fakeStore{prefs: &database.Preferences{
		Allergies:  "peanuts, shellfish",
		SkillLevel: "beginner",
	}}
	a := assistant.New(transport, store, testLogger())

	if _, err := a.Chat(context.Background(), "hello"); err != nil {
		t.Fatalf("Chat() unexpected error: %v", err)
	}

	system := transport.lastMessages[0].Content
	for _, want := range []string{"peanuts", "shellfish", "beginner"} {
		if !strings.Contains(system, want) {
			t.Errorf("system prompt missing %q:\n%s", want, system)
		}
	}
}

func TestChatPreferenceLoadFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{reply: "ok"}
	store := &fakeStore{prefsErr: errors.New("disk on fire")}
	a := assistant.New(transport, store, testLogger())

	reply, err := a.Chat(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Chat() unexpected error: %v", err)
	}
	if reply != "ok" {
		t.Errorf("Chat() = %q, want %q", reply, "ok")
	}
}

func TestAnalyzeNutrition(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{
		reply: "Here is the estimate:\n" +
			`{"calories": "450 kcal", "protein": "22g", "carbs": "38g", "fat": "20g", "fiber": "4g", "sugar": "6g"}`,
	}
	a := assistant.New(transport, &fakeStore{}, testLogger())

	info, err := a.AnalyzeNutrition(context.Background(), "Beef Stroganoff", []string{"beef", "sour cream"})
	if err != nil {
		t.Fatalf("AnalyzeNutrition() unexpected error: %v", err)
	}

	if transport.lastTemp != assistant.StructuredTemperature {
		t.Errorf("AnalyzeNutrition() temperature = %v, want %v", transport.lastTemp, assistant.StructuredTemperature)
	}

	want := &assistant.NutritionInfo{
		Calories: "450 kcal",
		Protein:  "22g",
		Carbs:    "38g",
		Fat:      "20g",
		Fiber:    "4g",
		Sugar:    "6g",
	}
	if !reflect.DeepEqual(info, want) {
		t.Errorf("AnalyzeNutrition() = %+v, want %+v", info, want)
	}
}

func TestAnalyzeNutritionMalformedReply(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{reply: "Sorry, I can't estimate that."}
	a := assistant.New(transport, &fakeStore{}, testLogger())

	_, err := a.AnalyzeNutrition(context.Background(), "Mystery Dish", nil)
	if !errors.Is(err, assistant.ErrMalformedResponse) {
		t.Fatalf("AnalyzeNutrition() error = %v, want ErrMalformedResponse", err)
	}
}

func TestCookingSteps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		reply    string
		expected []string
	}{
		{
			name:     "array reply",
			reply:    `["Boil water", "Add pasta", "Drain"]`,
			expected: []string{"Boil water", "Add pasta", "Drain"},
		},
		{
			name:     "non-array reply coerces to empty",
			reply:    `"I cannot list steps"`,
			expected: []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			transport := &fakeTransport{reply: tc.reply}
			a := assistant.New(transport, &fakeStore{}, testLogger())

			steps, err := a.CookingSteps(context.Background(), "Spaghetti")
			if err != nil {
				t.Fatalf("CookingSteps() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(steps, tc.expected) {
				t.Errorf("CookingSteps() = %#v, want %#v", steps, tc.expected)
			}
		})
	}
}

func TestSuggestSubstitutionsFiltersAllergens(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{reply: `["almond milk", "oat milk", "soy milk"]`}
	store := &fakeStore{prefs: &database.Preferences{Allergies: "almond, Soy"}}
	a := assistant.New(transport, store, testLogger())

	subs, err := a.SuggestSubstitutions(context.Background(), "milk")
	if err != nil {
		t.Fatalf("SuggestSubstitutions() unexpected error: %v", err)
	}
	want := []string{"oat milk"}
	if !reflect.DeepEqual(subs, want) {
		t.Errorf("SuggestSubstitutions() = %#v, want %#v", subs, want)
	}
}

func TestSuggestSubstitutionsTransportError(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{err: assistant.ErrTransport}
	a := assistant.New(transport, &fakeStore{}, testLogger())

	_, err := a.SuggestSubstitutions(context.Background(), "butter")
	if !errors.Is(err, assistant.ErrTransport) {
		t.Fatalf("SuggestSubstitutions() error = %v, want ErrTransport", err)
	}
}
