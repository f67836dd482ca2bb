package subtitle

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse reads SRT text into an ordered block sequence. Records are
// blank-line delimited: an index line, a time range line and any number of
// text lines up to the next blank line. Malformed indices or time ranges
// fail the whole parse.
func Parse(input string) ([]Block, error) {
	lines := strings.Split(input, "\n")
	var blocks []Block

	i := 0
	for i < len(lines) {
		header := strings.TrimSpace(lines[i])
		if header == "" {
			i++
			continue
		}

		index, err := strconv.Atoi(header)
		if err != nil {
			return nil, fmt.Errorf("invalid block index %q at line %d", header, i+1)
		}
		i++

		if i >= len(lines) {
			return nil, fmt.Errorf("block %d: missing time range", index)
		}
		start, end, err := parseTimeRange(strings.TrimSpace(lines[i]))
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", index, err)
		}
		i++

		var text []string
		for i < len(lines) {
			if strings.TrimSpace(lines[i]) == "" {
				i++
				break
			}
			text = append(text, lines[i])
			i++
		}

		blocks = append(blocks, Block{
			Index: index,
			Start: start,
			End:   end,
			Text:  text,
		})
	}

	return blocks, nil
}

// Format renders blocks back to SRT text. Each block ends with a blank
// line, so Format(Parse(s)) == s for well-formed input.
func Format(blocks []Block) string {
	var sb strings.Builder
	for _, block := range blocks {
		sb.WriteString(strconv.Itoa(block.Index))
		sb.WriteString("\n")
		sb.WriteString(FormatTime(block.Start))
		sb.WriteString(" --> ")
		sb.WriteString(FormatTime(block.End))
		sb.WriteString("\n")
		sb.WriteString(block.JoinedText())
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// parseTimeRange parses `00:00:01,000 --> 00:00:02,000`.
func parseTimeRange(line string) (time.Duration, time.Duration, error) {
	parts := strings.Split(line, " --> ")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time range %q", line)
	}
	start, err := ParseTime(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseTime(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// ParseTime parses `HH:MM:SS,mmm` with exact millisecond arithmetic.
func ParseTime(t string) (time.Duration, error) {
	parts := strings.FieldsFunc(t, func(r rune) bool {
		return r == ':' || r == ','
	})
	if len(parts) != 4 {
		return 0, fmt.Errorf("invalid time %q", t)
	}

	var nums [4]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time %q", t)
		}
		nums[i] = n
	}

	ms := ((int64(nums[0])*60+int64(nums[1]))*60+int64(nums[2]))*1000 + int64(nums[3])
	return time.Duration(ms) * time.Millisecond, nil
}

// FormatTime renders a duration as zero-padded `HH:MM:SS,mmm`.
func FormatTime(d time.Duration) string {
	ms := d.Milliseconds()
	h := ms / 3_600_000
	m := (ms % 3_600_000) / 60_000
	s := (ms % 60_000) / 1000
	ms = ms % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
