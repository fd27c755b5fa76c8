package inference

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ChannelSync/internal/domain"
)

func newInferrer() *Inferrer {
	return New(DefaultVocabulary())
}

func TestBoldSpanBecomesTitle(t *testing.T) {
	t.Parallel()

	text := "**Houthis strike tanker in Red Sea**\nThe vessel was hit near the strait early on Monday morning."
	in := newInferrer()

	assert.Equal(t, "Houthis strike tanker in Red Sea", in.Title(text))
	assert.Equal(t, domain.CategoryMilitary, in.Category(text))
}

func TestTitleSkipsNoise(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "label lines",
			text: "Category: Military\nCountries: Yemen\nA plain opening line that is long enough",
			want: "A plain opening line that is long enough",
		},
		{
			name: "numbered list",
			text: "1. First point of the list goes here\nThe actual headline sentence is here",
			want: "The actual headline sentence is here",
		},
		{
			name: "link line",
			text: "https://example.com/article/123456\nReal headline text appears on this line",
			want: "Real headline text appears on this line",
		},
		{
			name: "pipe table",
			text: "Iran | Iraq | Syria | Lebanon | Jordan\n• Regional ministers meet in Baghdad today",
			want: "Regional ministers meet in Baghdad today",
		},
		{
			name: "short lines fall back to first",
			text: "🔴 short\nalso short",
			want: "short",
		},
		{
			name: "empty",
			text: "",
			want: "Untitled",
		},
	}

	in := newInferrer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, in.Title(tt.text))
		})
	}
}

func TestTruncateTitle(t *testing.T) {
	t.Parallel()

	clause := strings.Repeat("a", 40) + ". " + strings.Repeat("b ", 50)
	assert.Equal(t, strings.Repeat("a", 40), TruncateTitle(clause, 100))

	words := strings.Repeat("word ", 30)
	got := TruncateTitle(words, 100)
	assert.True(t, strings.HasSuffix(got, "word..."))
	assert.LessOrEqual(t, len([]rune(got)), 100)

	solid := strings.Repeat("x", 150)
	assert.Equal(t, strings.Repeat("x", 97)+"...", TruncateTitle(solid, 100))

	assert.Equal(t, "short title", TruncateTitle("  short title ", 100))
}

func TestCategoryBuckets(t *testing.T) {
	t.Parallel()

	in := newInferrer()
	assert.Equal(t, domain.CategoryBreaking, in.Category("Urgent: convoy attacked near the border"))
	assert.Equal(t, domain.CategoryBreaking, in.Category("عاجل: قصف"))
	assert.Equal(t, domain.CategoryEconomic, in.Category("Markets rally as the central bank cuts rates"))
	assert.Equal(t, domain.CategoryAnalysis, in.Category("A quiet reflection on history"))
}

func TestEntityDetection(t *testing.T) {
	t.Parallel()

	in := newInferrer()
	assert.Equal(t, []string{"Iran", "Israel", "Yemen"}, in.Countries("Strikes hit Yemen and Israel, Iran warns"))
	assert.Equal(t,
		[]string{"Egypt", "Iraq", "Jordan", "Lebanon", "Russia"},
		in.Countries("Egypt, Syria, Lebanon, Iraq, Jordan, Turkey, Russia"),
	)
	assert.Equal(t, []string{"Hamas", "Hezbollah"}, in.Organizations("Hezbollah and Hamas issued a joint statement"))
	assert.Empty(t, in.Countries("nothing relevant"))
}

func TestSubstringMatchingIsLiteral(t *testing.T) {
	t.Parallel()

	// "un " also fires inside "run ".
	assert.Equal(t, []string{"UN"}, newInferrer().Organizations("they run fast"))
}

func TestExcerpt(t *testing.T) {
	t.Parallel()

	in := newInferrer()
	title := "Houthis strike tanker in Red Sea"
	text := "**Houthis strike tanker in Red Sea**\n" +
		"The vessel was hit near the strait early Monday.\n" +
		"https://t.me/x/1\n" +
		"short\n" +
		"Follow @channel for more updates today\n" +
		"A second sentence gives more detail about the damage."

	assert.Equal(t,
		"The vessel was hit near the strait early Monday. A second sentence gives more detail about the damage.",
		in.Excerpt(text, title, 0),
	)
}

func TestExcerptFromContentStart(t *testing.T) {
	t.Parallel()

	text := "TITLE: Talks stall\nCATEGORY: Political\nDelegations left the venue without a joint statement."
	assert.Equal(t,
		"Delegations left the venue without a joint statement.",
		newInferrer().Excerpt(text, "Talks stall", 2),
	)
}

func TestExcerptFallsBackToTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Headline", newInferrer().Excerpt("Headline\nshort\nhttp://x", "Headline", 0))
}

func TestExcerptIsBounded(t *testing.T) {
	t.Parallel()

	line := "This sentence is repeated to build a long excerpt body. "
	text := "Title line here\n" + strings.Repeat(line+"\n", 8)

	got := newInferrer().Excerpt(text, "Title line here", 0)
	assert.LessOrEqual(t, len([]rune(got)), 350)
	assert.True(t, strings.HasSuffix(got, "."))
}

func TestNewCopiesVocabulary(t *testing.T) {
	t.Parallel()

	v := DefaultVocabulary()
	in := New(v)
	v.Countries["atlantis"] = "Atlantis"

	assert.Empty(t, in.Countries("atlantis rises"))
}
