package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmotion(t *testing.T) {
	tests := []struct {
		in      string
		want    Emotion
		wantErr bool
	}{
		{"anger", EmotionAnger, false},
		{"Happy", EmotionHappy, false},
		{" neutral ", EmotionNeutral, false},
		{"surprise", EmotionSurprise, false},
		{"contempt", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEmotion(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmotionFromIndex(t *testing.T) {
	for i, e := range AllEmotions() {
		got, err := EmotionFromIndex(i)
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}

	_, err := EmotionFromIndex(7)
	assert.Error(t, err)
	_, err = EmotionFromIndex(-1)
	assert.Error(t, err)
}

func TestEmotion_TextRoundTrip(t *testing.T) {
	var e Emotion
	require.NoError(t, e.UnmarshalText([]byte("fear")))
	assert.Equal(t, EmotionFear, e)

	_, err := Emotion(42).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "emotion(42)", Emotion(42).String())
}

func TestAllEmotions(t *testing.T) {
	all := AllEmotions()
	assert.Len(t, all, 7)
	assert.Equal(t, EmotionAnger, all[0])
	assert.Equal(t, EmotionNeutral, all[6])
}
