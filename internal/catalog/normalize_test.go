package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickLocalizedFallbackToEnglish(t *testing.T) {
	m := map[string]string{"en": "Title", "ja": "タイトル"}
	assert.Equal(t, "Title", pickLocalized(m, "vi"))
}

func TestPickLocalizedFallbackToFirstAvailable(t *testing.T) {
	m := map[string]string{"ja": "タイトル"}
	assert.Equal(t, "タイトル", pickLocalized(m, "vi"))
}

func TestPickLocalizedPrefersRequested(t *testing.T) {
	m := map[string]string{"en": "Title", "vi": "Tựa đề"}
	assert.Equal(t, "Tựa đề", pickLocalized(m, "vi"))
}

func TestPickLocalizedDeterministicFirstAvailable(t *testing.T) {
	m := map[string]string{"ja": "j", "de": "d", "fr": "f"}
	// sorted locale keys: de first, every time
	for i := 0; i < 10; i++ {
		assert.Equal(t, "d", pickLocalized(m, "vi"))
	}
}

func TestPickLocalizedEmpty(t *testing.T) {
	assert.Equal(t, "", pickLocalized(nil, "en"))
	assert.Equal(t, "", pickLocalized(map[string]string{}, "en"))
}

func TestDisplayTablesUnknownSentinel(t *testing.T) {
	assert.Equal(t, "Ongoing", displayStatus("ongoing"))
	assert.Equal(t, "Unknown", displayStatus("something-new"))
	assert.Equal(t, "Unknown", displayStatus(""))

	assert.Equal(t, "Explicit", displayContentRating("pornographic"))
	assert.Equal(t, "Unknown", displayContentRating("spicy"))
}

func TestRelRefAbsentDegradesToUnknown(t *testing.T) {
	ref := relRef(nil, "author")
	assert.Equal(t, "", ref.ID)
	assert.Equal(t, "Unknown", ref.Name)
}

func mustRaw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestNormalizeManga(t *testing.T) {
	e := rawEntity{
		ID:   "a1b2",
		Type: "manga",
		Attributes: rawAttributes{
			Title:         mustRaw(t, map[string]string{"en": "One Piece", "ja": "ワンピース"}),
			AltTitles:     []map[string]string{{"ja": "ワンピース"}},
			Description:   mustRaw(t, map[string]string{"en": "Pirates."}),
			Status:        "ongoing",
			Year:          1997,
			ContentRating: "safe",
			Tags: []rawEntity{
				{ID: "t1", Type: "tag", Attributes: rawAttributes{
					Name: mustRaw(t, map[string]string{"en": "Action"}), Group: "genre",
				}},
			},
		},
		Relationships: []rawRelationship{
			{ID: "au1", Type: "author", Attributes: relAttributes{Name: "Eiichiro Oda"}},
			{ID: "cv1", Type: "cover_art", Attributes: relAttributes{FileName: "cover.jpg"}},
		},
	}

	m := normalizeManga(e, "en")
	assert.Equal(t, "One Piece", m.Title)
	assert.Equal(t, []string{"ワンピース"}, m.AltTitles)
	assert.Equal(t, "Pirates.", m.Description)
	assert.Equal(t, "Ongoing", m.StatusText)
	assert.Equal(t, "Safe", m.ContentRatingText)
	assert.Equal(t, "Eiichiro Oda", m.Author.Name)
	assert.Equal(t, "Unknown", m.Artist.Name)
	require.Len(t, m.Tags, 1)
	assert.Equal(t, "Action", m.Tags[0].Name)
	assert.Equal(t, coversBase+"/a1b2/cover.jpg", m.CoverURL)
}

func TestNormalizeMangaUntitled(t *testing.T) {
	m := normalizeManga(rawEntity{ID: "x", Type: "manga"}, "en")
	assert.Equal(t, "Untitled", m.Title)
}

func TestNormalizeChapter(t *testing.T) {
	e := rawEntity{
		ID:   "ch1",
		Type: "chapter",
		Attributes: rawAttributes{
			Title:              mustRaw(t, "Romance Dawn"),
			Volume:             "1",
			Chapter:            "1",
			TranslatedLanguage: "en",
			Pages:              54,
			PublishAt:          "2024-01-02T03:04:05+00:00",
		},
		Relationships: []rawRelationship{
			{ID: "m1", Type: "manga"},
			{ID: "g1", Type: "scanlation_group", Attributes: relAttributes{Name: "Some Group"}},
		},
	}

	ch := normalizeChapter(e)
	assert.Equal(t, "Romance Dawn", ch.Title)
	assert.Equal(t, "m1", ch.MangaID)
	assert.Equal(t, "Some Group", ch.Group.Name)
	assert.Equal(t, 54, ch.Pages)
	assert.Equal(t, 2024, ch.PublishedAt.Year())
}

func TestNormalizeChapterBadTimestamp(t *testing.T) {
	ch := normalizeChapter(rawEntity{
		ID: "ch2", Type: "chapter",
		Attributes: rawAttributes{PublishAt: "not-a-time"},
	})
	assert.True(t, ch.PublishedAt.IsZero())
	assert.Equal(t, "Unknown", ch.Group.Name)
}

func TestNormalizeAuthorAndGroup(t *testing.T) {
	a := normalizeAuthor(rawEntity{
		ID: "au", Type: "author",
		Attributes: rawAttributes{
			Name:      mustRaw(t, "Oda"),
			Biography: map[string]string{"en": "bio"},
		},
	}, "en")
	assert.Equal(t, "Oda", a.Name)
	assert.Equal(t, "bio", a.Biography)

	g := normalizeGroup(rawEntity{ID: "g", Type: "scanlation_group"})
	assert.Equal(t, "Unknown", g.Name)
}
