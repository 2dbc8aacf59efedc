package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{"pizza", "pasta", "biryani", "noodles", "burger", "haleem", "roti"}

func TestClassifyListsKeysAndQuery(t *testing.T) {
	p := Classify("lentil stew", keys)

	assert.Contains(t, p, "pizza, pasta, biryani, noodles, burger, haleem, roti")
	assert.Contains(t, p, `"lentil stew"`)
}

func TestPickKey(t *testing.T) {
	tests := []struct {
		reply string
		want  string
	}{
		{"haleem", "haleem"},
		{"  Haleem\n", "haleem"},
		{"`roti`", "roti"},
		{"\"burger\".", "burger"},
		{"The best match is biryani.", "biryani"},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			got, err := PickKey(tt.reply, keys)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPickKeyNoAnswer(t *testing.T) {
	for _, reply := range []string{"", "NONE", "sushi", "either pizza or pasta"} {
		_, err := PickKey(reply, keys)
		assert.ErrorIs(t, err, ErrNoAnswer, "reply %q", reply)
	}
}
