package dictionary_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardcser/dict-mcp/internal/dictionary"
)

func TestTranslationCodec(t *testing.T) {
	c := dictionary.TranslationCodec{}
	for _, in := range []dictionary.Translation{
		{},
		{"kot"},
		{"kot", "kot", "kotek"},
		{"", "zażółć gęślą jaźń"},
	} {
		b, err := c.Encode(in)
		require.NoError(t, err)
		out, err := c.Decode(b)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestTranslationCodec_Layout(t *testing.T) {
	b, err := dictionary.TranslationCodec{}.Encode(dictionary.Translation{"ab", "c"})
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 2, 'a', 'b', 1, 'c'}, b)
}

func TestTranslationCodec_Malformed(t *testing.T) {
	c := dictionary.TranslationCodec{}
	for name, b := range map[string][]byte{
		"empty":          nil,
		"short item":     {1, 5, 'a'},
		"missing item":   {2, 1, 'a'},
		"trailing bytes": {1, 1, 'a', 'b'},
		"huge count":     {0xff, 0xff, 0xff, 0xff, 0x0f},
	} {
		_, err := c.Decode(b)
		assert.Error(t, err, name)
	}

	_, err := c.Encode(dictionary.Translation{"\xff"})
	assert.Error(t, err)
}

func TestMatchTypeJSON(t *testing.T) {
	tests := []struct {
		in   dictionary.MatchType
		want string
	}{
		{dictionary.Exact, `{"kind":"exact"}`},
		{dictionary.PartialPercent(85), `{"kind":"partial","percent":85}`},
		{dictionary.PartialPercent(0), `{"kind":"partial","percent":0}`},
	}
	for _, tt := range tests {
		b, err := json.Marshal(tt.in)
		require.NoError(t, err)
		assert.JSONEq(t, tt.want, string(b))

		var back dictionary.MatchType
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, tt.in, back)
	}

	var m dictionary.MatchType
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"fuzzy"}`), &m))
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"partial"}`), &m))
}

func TestMatchTypeAccessors(t *testing.T) {
	assert.True(t, dictionary.Exact.IsExact())
	assert.Equal(t, "exact", dictionary.Exact.String())

	p := dictionary.PartialPercent(70)
	assert.False(t, p.IsExact())
	pct, ok := p.Percent()
	assert.True(t, ok)
	assert.Equal(t, uint32(70), pct)
	assert.Equal(t, "partial 70%", p.String())
}

func TestSuggestionJSON(t *testing.T) {
	s := dictionary.MachineSuggestion("cat", "kot")
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"original_text":"cat","translated_text":"kot","match_type":{"kind":"exact"}}`, string(b))
}
