package email

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_PlainHeaders(t *testing.T) {
	reply := `Here is your series.

Email 1: Welcome
Start with the basics.

Email 2: Week one
Build the habit.

Email 3: Check-in
Review your markers.`

	series, err := Split(reply)
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, 1, series[0].Index)
	assert.Equal(t, 3, series[2].Index)
	assert.Contains(t, series[0].Body, "Start with the basics.")
	assert.NotContains(t, series[0].Body, "Here is your series.")
	assert.Contains(t, series[2].Body, "Review your markers.")
}

func TestSplit_MarkdownAndBoldHeaders(t *testing.T) {
	reply := "## Email 1\nfirst body\n\n**Email 2**\nsecond body\n"
	series, err := Split(reply)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Contains(t, series[0].Body, "first body")
	assert.Contains(t, series[1].Body, "second body")
}

func TestSplit_NoSections(t *testing.T) {
	_, err := Split("Sorry, I cannot help with that.")
	assert.ErrorIs(t, err, ErrNoSections)
}

func TestSplit_EmptyReply(t *testing.T) {
	_, err := Split("")
	assert.ErrorIs(t, err, ErrNoSections)
}

func TestRender_JoinsWithDelimiter(t *testing.T) {
	series, err := Split("Email 1\none\n\nEmail 2\ntwo\n")
	require.NoError(t, err)

	out := series.Render()
	assert.Equal(t, 1, strings.Count(out, Delimiter))
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.Contains(t, out, "one")
	assert.Contains(t, out, "two")
}
