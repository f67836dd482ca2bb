package subtitle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleBlock(t *testing.T) {
	input := "1\n00:00:00,000 --> 00:00:01,000\nHello\n\n"

	blocks, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	assert.Equal(t, 1, blocks[0].Index)
	assert.Equal(t, time.Duration(0), blocks[0].Start)
	assert.Equal(t, time.Second, blocks[0].End)
	assert.Equal(t, []string{"Hello"}, blocks[0].Text)
}

func TestParseMultilineText(t *testing.T) {
	input := "3\n00:01:02,500 --> 00:01:04,250\nfirst line\nsecond line\n\n"

	blocks, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, []string{"first line", "second line"}, blocks[0].Text)
	assert.Equal(t, "first line\nsecond line", blocks[0].JoinedText())
}

func TestParseSkipsExtraBlankLines(t *testing.T) {
	input := "1\n00:00:00,000 --> 00:00:01,000\na\n\n\n\n2\n00:00:01,000 --> 00:00:02,000\nb\n\n"

	blocks, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, 2, blocks[1].Index)
}

func TestParseRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "non numeric index", input: "one\n00:00:00,000 --> 00:00:01,000\nhi\n\n"},
		{name: "missing time range", input: "1\n"},
		{name: "bad time separator", input: "1\n00:00:00,000 -> 00:00:01,000\nhi\n\n"},
		{name: "too few time fields", input: "1\n00:00,000 --> 00:00:01,000\nhi\n\n"},
		{name: "non numeric time field", input: "1\n00:00:xx,000 --> 00:00:01,000\nhi\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	input := "1\n00:00:00,000 --> 00:00:01,000\nhello\n\n" +
		"2\n00:00:01,000 --> 00:00:02,000\nworld\nagain\n\n" +
		"10\n01:02:03,456 --> 01:02:04,567\n- What?\n\n"

	blocks, err := Parse(input)
	require.NoError(t, err)

	out := Format(blocks)
	assert.Equal(t, input, out)

	reparsed, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, blocks, reparsed)
}

func TestTimeConversion(t *testing.T) {
	d, err := ParseTime("01:02:03,456")
	require.NoError(t, err)
	assert.Equal(t, time.Hour+2*time.Minute+3*time.Second+456*time.Millisecond, d)
	assert.Equal(t, "01:02:03,456", FormatTime(d))

	zero, err := ParseTime("00:00:00,000")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), zero)
	assert.Equal(t, "00:00:00,000", FormatTime(zero))
}

func TestCloneBlocksIsDeep(t *testing.T) {
	blocks := []Block{{Index: 1, Text: []string{"a"}}}
	clone := CloneBlocks(blocks)
	clone[0].Text[0] = "changed"
	assert.Equal(t, "a", blocks[0].Text[0])
}
