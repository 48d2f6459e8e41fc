package assessment

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Type identifies one of the supported assessment variants.
type Type string

const (
	TypeLearningStyle Type = "learning-style"
	TypeAIAttitude    Type = "ai-attitude"
	TypeBehavioral    Type = "behavioral"
	TypeAptitude      Type = "aptitude"
	TypeCombined      Type = "combined"
)

// AnswerKind describes how a question is answered.
type AnswerKind int

const (
	// KindScale answers are a bounded numeric score (slider questions).
	KindScale AnswerKind = iota
	// KindChoice answers are one of five letters, A through E.
	KindChoice
)

// ChoiceLetters are the accepted values for KindChoice answers.
const ChoiceLetters = "ABCDE"

// Schema parametrizes the session engine for one assessment type.
// The engine itself is identical across all five variants; only the
// answer shape, provider slug, storage slot, and the time-limit
// fallback differ.
type Schema struct {
	// Type is the assessment variant tag.
	Type Type

	// Name is the human-readable display name.
	Name string

	// ProviderSlug is the question-set family requested from the Test
	// Provider's active-question-set endpoint.
	ProviderSlug string

	// SlotKey names the single progress-store slot for this variant.
	// One slot per variant: starting a second session of the same type
	// overwrites the first's resumption path.
	SlotKey string

	// Kind selects the answer-value shape.
	Kind AnswerKind

	// ScaleMin and ScaleMax bound KindScale scores (inclusive).
	ScaleMin int
	ScaleMax int

	// FallbackTimeLimit is used when the provider declares a zero time
	// limit. A zero declared limit means "use the ceiling", never
	// "unlimited".
	FallbackTimeLimit time.Duration
}

// ValidateValue checks a raw answer value against the schema's kind.
func (s Schema) ValidateValue(value string) error {
	switch s.Kind {
	case KindScale:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("scale answer %q is not a number", value)
		}
		if n < s.ScaleMin || n > s.ScaleMax {
			return fmt.Errorf("scale answer %d out of range [%d, %d]", n, s.ScaleMin, s.ScaleMax)
		}
		return nil
	case KindChoice:
		v := strings.ToUpper(strings.TrimSpace(value))
		if len(v) != 1 || !strings.Contains(ChoiceLetters, v) {
			return fmt.Errorf("choice answer %q is not one of A-E", value)
		}
		return nil
	}
	return fmt.Errorf("unknown answer kind %d", s.Kind)
}

// NormalizeValue returns the canonical form of a valid answer value:
// trimmed digits for scales, a single uppercase letter for choices.
func (s Schema) NormalizeValue(value string) string {
	v := strings.TrimSpace(value)
	if s.Kind == KindChoice {
		return strings.ToUpper(v)
	}
	return v
}

// registry holds the five assessment schemas in display order.
var registry = []Schema{
	{
		Type:              TypeLearningStyle,
		Name:              "Learning Style",
		ProviderSlug:      "learning_style",
		SlotKey:           "learning-style",
		Kind:              KindScale,
		ScaleMin:          1,
		ScaleMax:          5,
		FallbackTimeLimit: time.Hour,
	},
	{
		Type:              TypeAIAttitude,
		Name:              "AI Attitude",
		ProviderSlug:      "ai_attitude",
		SlotKey:           "ai-attitude",
		Kind:              KindScale,
		ScaleMin:          1,
		ScaleMax:          5,
		FallbackTimeLimit: time.Hour,
	},
	{
		Type:              TypeBehavioral,
		Name:              "Behavioral",
		ProviderSlug:      "behavioral",
		SlotKey:           "behavioral",
		Kind:              KindChoice,
		FallbackTimeLimit: time.Hour,
	},
	{
		Type:              TypeAptitude,
		Name:              "Aptitude",
		ProviderSlug:      "aptitude",
		SlotKey:           "aptitude",
		Kind:              KindChoice,
		FallbackTimeLimit: time.Hour,
	},
	{
		// The combined variant stitches all four questionnaires into one
		// sitting and therefore carries a higher time-limit ceiling.
		Type:              TypeCombined,
		Name:              "Combined",
		ProviderSlug:      "combined",
		SlotKey:           "combined",
		Kind:              KindChoice,
		FallbackTimeLimit: 90 * time.Minute,
	},
}

// All returns every registered assessment schema in display order.
func All() []Schema {
	out := make([]Schema, len(registry))
	copy(out, registry)
	return out
}

// ByType looks up a schema by its type tag.
func ByType(t Type) (Schema, error) {
	for _, s := range registry {
		if s.Type == t {
			return s, nil
		}
	}
	return Schema{}, fmt.Errorf("unknown assessment type: %q", t)
}
