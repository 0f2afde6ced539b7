package dictionary_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardcser/dict-mcp/internal/dictionary"
)

var enpl = dictionary.Pair("EN", "PL")

func TestProjectKey(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/home/ola/docs/book.odt", "home_ola_docs_book.odt"},
		{"docs/book.odt", "docs_book.odt"},
		{"/home/ola/../ola/docs//book.odt", "home_ola_docs_book.odt"},
		{"book.odt", "book.odt"},
		{"../book.odt", ".._book.odt"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := dictionary.ProjectKey(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProjectKey_Invalid(t *testing.T) {
	for _, p := range []string{"", "   ", "/", ".", "..", "a\x00b"} {
		_, err := dictionary.ProjectKey(p)
		require.ErrorIs(t, err, dictionary.ErrInvalidDocument, "path %q", p)
	}
}

func TestProjectKey_KnownCollision(t *testing.T) {
	a, err := dictionary.ProjectKey("/a_b/c")
	require.NoError(t, err)
	b, err := dictionary.ProjectKey("/a/b_c")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLayout_Address(t *testing.T) {
	l := dictionary.Layout{Root: "/data/dicts"}

	dir, err := l.PairDir(enpl)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data/dicts", "EN-PL"), dir)

	addr, err := l.Address(enpl, "home_ola_book.odt", dictionary.Kind)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data/dicts", "EN-PL", "home_ola_book.odt", "dictionary"), addr)

	doc, err := l.DocumentAddress(enpl, "/home/ola/book.odt")
	require.NoError(t, err)
	assert.Equal(t, addr, doc)
}

func TestLayout_PairOrderMatters(t *testing.T) {
	l := dictionary.Layout{Root: "/r"}
	ab, err := l.Address(enpl, "p", dictionary.Kind)
	require.NoError(t, err)
	ba, err := l.Address(enpl.Reverse(), "p", dictionary.Kind)
	require.NoError(t, err)
	assert.NotEqual(t, ab, ba)
}

func TestLayout_DistinctInputsDistinctAddresses(t *testing.T) {
	l := dictionary.Layout{Root: "/r"}
	pairs := []dictionary.LanguagePair{
		dictionary.Pair("EN", "PL"),
		dictionary.Pair("PL", "EN"),
		dictionary.Pair("EN_GB", "PL"),
		dictionary.Pair("EN", "PL_x"),
	}
	projects := []string{"a", "a_b", "b", "a.b"}

	seen := map[string]string{}
	for _, p := range pairs {
		for _, proj := range projects {
			addr, err := l.Address(p, proj, dictionary.Kind)
			require.NoError(t, err)
			in := p.String() + "|" + proj
			if prev, dup := seen[addr]; dup {
				t.Fatalf("%s and %s share address %s", prev, in, addr)
			}
			seen[addr] = in
		}
	}
}

func TestLayout_Rejects(t *testing.T) {
	l := dictionary.Layout{Root: "/r"}

	_, err := l.PairDir(dictionary.Pair("en-US", "pl"))
	require.ErrorIs(t, err, dictionary.ErrInvalidLanguage)

	_, err = l.PairDir(dictionary.Pair("en", ""))
	require.ErrorIs(t, err, dictionary.ErrInvalidLanguage)

	_, err = l.PairDir(dictionary.Pair("../etc", "pl"))
	require.ErrorIs(t, err, dictionary.ErrInvalidLanguage)

	_, err = l.Address(enpl, "a/b", dictionary.Kind)
	require.ErrorIs(t, err, dictionary.ErrInvalidAddress)

	_, err = l.Address(enpl, "..", dictionary.Kind)
	require.ErrorIs(t, err, dictionary.ErrInvalidAddress)

	_, err = dictionary.Layout{}.PairDir(enpl)
	require.ErrorIs(t, err, dictionary.ErrInvalidAddress)
}

func TestLanguagePair_String(t *testing.T) {
	assert.Equal(t, "EN-PL", enpl.String())
	assert.Equal(t, "PL-EN", enpl.Reverse().String())
}
