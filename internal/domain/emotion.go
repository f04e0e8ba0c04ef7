package domain

import (
	"fmt"
	"strings"
)

// Emotion is one of the seven categories the classifier can emit.
// The integer value is the classifier's output index.
type Emotion int

const (
	EmotionAnger Emotion = iota
	EmotionDisgust
	EmotionFear
	EmotionHappy
	EmotionSad
	EmotionSurprise
	EmotionNeutral
)

var emotionNames = [...]string{
	EmotionAnger:    "anger",
	EmotionDisgust:  "disgust",
	EmotionFear:     "fear",
	EmotionHappy:    "happy",
	EmotionSad:      "sad",
	EmotionSurprise: "surprise",
	EmotionNeutral:  "neutral",
}

// AllEmotions lists every category in classifier index order.
func AllEmotions() []Emotion {
	out := make([]Emotion, len(emotionNames))
	for i := range emotionNames {
		out[i] = Emotion(i)
	}
	return out
}

func (e Emotion) Valid() bool {
	return e >= 0 && int(e) < len(emotionNames)
}

func (e Emotion) String() string {
	if !e.Valid() {
		return fmt.Sprintf("emotion(%d)", int(e))
	}
	return emotionNames[e]
}

// ParseEmotion accepts the category name in any case.
func ParseEmotion(s string) (Emotion, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range emotionNames {
		if n == name {
			return Emotion(i), nil
		}
	}
	return 0, fmt.Errorf("unknown emotion %q", s)
}

// EmotionFromIndex maps a classifier output index to its category.
func EmotionFromIndex(i int) (Emotion, error) {
	e := Emotion(i)
	if !e.Valid() {
		return 0, fmt.Errorf("emotion index %d out of range", i)
	}
	return e, nil
}

func (e Emotion) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("invalid emotion %d", int(e))
	}
	return []byte(e.String()), nil
}

func (e *Emotion) UnmarshalText(text []byte) error {
	parsed, err := ParseEmotion(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
