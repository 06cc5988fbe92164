package deck_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/deckdraw/internal/deck"
)

func TestDecodeJSON_KeepsOrderAndNormalizes(t *testing.T) {
	doc := `{"zeta": ["::5::b", "a"], "alpha": null, "num": 5, "mixed": [1.5, true, "x"], "zeta": ["last"]}`
	s, err := deck.DecodeJSON(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "num", "mixed"}, s.Names())
	e, _ := s.Entries("zeta")
	assert.Equal(t, []string{"last"}, e)
	e, _ = s.Entries("alpha")
	assert.Equal(t, []string{}, e)
	e, _ = s.Entries("num")
	assert.Equal(t, []string{"5"}, e)
	e, _ = s.Entries("mixed")
	assert.Equal(t, []string{"1.5", "true", "x"}, e)
}

func TestDecodeJSON_Rejects(t *testing.T) {
	for name, doc := range map[string]string{
		"array":         `["a"]`,
		"null":          `null`,
		"nested object": `{"a": {"b": 1}}`,
		"nested array":  `{"a": [["b"]]}`,
		"null entry":    `{"a": [null]}`,
		"malformed":     `{"a": [`,
		"hidden clash":  `{"a": [], "_a": []}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := deck.DecodeJSON(strings.NewReader(doc))
			assert.ErrorIs(t, err, deck.ErrInvalidDocument)
		})
	}
}

func TestDecodeJSON_HiddenClashIsNameConflict(t *testing.T) {
	_, err := deck.DecodeJSON(strings.NewReader(`{"a": [], "_a": []}`))
	assert.ErrorIs(t, err, deck.ErrNameConflict)
}

func TestEncodeJSON_FourSpaceIndent(t *testing.T) {
	s := newStore(t, "b", []string{"::2::x", "<y & z>"}, "a", []string{})
	var buf bytes.Buffer
	require.NoError(t, deck.EncodeJSON(&buf, s))
	want := "{\n" +
		"    \"b\": [\n" +
		"        \"::2::x\",\n" +
		"        \"<y & z>\"\n" +
		"    ],\n" +
		"    \"a\": []\n" +
		"}"
	assert.Equal(t, want, buf.String())
}

func TestEncodeJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, deck.EncodeJSON(&buf, deck.New()))
	assert.Equal(t, "{}", buf.String())
}

func TestYAML_RoundTrip(t *testing.T) {
	s := newStore(t, "loot", []string{"::3::gold", "::1d4::{%gems}", "true", "5", ""}, "_gems", []string{}, "empty", []string{"a: b"})
	var buf bytes.Buffer
	require.NoError(t, deck.EncodeYAML(&buf, s))

	got, err := deck.DecodeYAML(&buf)
	require.NoError(t, err)
	assert.Equal(t, s.Collections(), got.Collections())
}

func TestDecodeYAML_Normalizes(t *testing.T) {
	doc := "b:\n  - x\n  - 7\na: ~\nc: single\n"
	s, err := deck.DecodeYAML(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, s.Names())
	e, _ := s.Entries("b")
	assert.Equal(t, []string{"x", "7"}, e)
	e, _ = s.Entries("a")
	assert.Empty(t, e)
	e, _ = s.Entries("c")
	assert.Equal(t, []string{"single"}, e)
}

func TestDecodeYAML_Rejects(t *testing.T) {
	for name, doc := range map[string]string{
		"sequence": "- a\n",
		"nested":   "a:\n  b: c\n",
		"deep":     "a:\n  - [x]\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := deck.DecodeYAML(strings.NewReader(doc))
			assert.ErrorIs(t, err, deck.ErrInvalidDocument)
		})
	}
}

func TestDecodeYAML_EmptyInput(t *testing.T) {
	s, err := deck.DecodeYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, s.Len())
}

func TestImport_Merge(t *testing.T) {
	s := newStore(t, "a", []string{"1"}, "b", []string{"2"})
	doc := newStore(t, "b", []string{"new"}, "c", []string{"3"})

	require.NoError(t, s.Import(doc, deck.ImportMerge))
	assert.Equal(t, []string{"a", "b", "c"}, s.Names())
	e, _ := s.Entries("b")
	assert.Equal(t, []string{"new"}, e)
}

func TestImport_MergeConflictLeavesStore(t *testing.T) {
	s := newStore(t, "a", []string{"1"})
	doc := newStore(t, "z", []string{}, "_a", []string{"x"})

	err := s.Import(doc, deck.ImportMerge)
	assert.ErrorIs(t, err, deck.ErrNameConflict)
	assert.Equal(t, []string{"a"}, s.Names())
}

func TestImport_Replace(t *testing.T) {
	s := newStore(t, "a", []string{"1"})
	doc := newStore(t, "_a", []string{"x"})

	require.NoError(t, s.Import(doc, deck.ImportReplace))
	assert.Equal(t, []string{"_a"}, s.Names())
}

func TestParseImportMode(t *testing.T) {
	m, err := deck.ParseImportMode("Replace")
	require.NoError(t, err)
	assert.Equal(t, deck.ImportReplace, m)
	m, err = deck.ParseImportMode("")
	require.NoError(t, err)
	assert.Equal(t, deck.ImportMerge, m)
	_, err = deck.ParseImportMode("append")
	assert.Error(t, err)
}

func TestProperty_JSONRoundTripPreservesEntries(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 5).Draw(rt, "n")
		cs := make([]deck.Collection, 0, n)
		for i := 0; i < n; i++ {
			cs = append(cs, deck.Collection{
				Name:    string(rune('a'+i)) + rapid.StringMatching(`[a-z]{0,4}`).Draw(rt, "suffix"),
				Entries: rapid.SliceOf(rapid.String()).Draw(rt, "entries"),
			})
		}
		s, err := deck.FromCollections(cs)
		require.NoError(rt, err)

		var buf bytes.Buffer
		require.NoError(rt, deck.EncodeJSON(&buf, s))
		got, err := deck.DecodeJSON(&buf)
		require.NoError(rt, err)

		want := s.Collections()
		for i := range want {
			if want[i].Entries == nil {
				want[i].Entries = []string{}
			}
		}
		assert.Equal(rt, want, got.Collections())
	})
}
