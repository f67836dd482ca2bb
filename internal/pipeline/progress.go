package pipeline

import "fmt"

// percentComplete reports translated progress as a whole percentage
func percentComplete(next, total int) int {
	if total == 0 {
		return 100
	}
	return next * 100 / total
}

// estimateRemaining predicts the remaining run time in milliseconds from
// the unweighted average of the last two batch durations times the number
// of batches left.
func estimateRemaining(prevMS, currMS int64, remaining, batch int) int64 {
	avg := (prevMS + currMS) / 2
	batches := (remaining + batch - 1) / batch
	return avg * int64(batches)
}

// formatETA renders milliseconds as "X minutes Y seconds", omitting the
// minutes term when zero.
func formatETA(ms int64) string {
	totalSecs := ms / 1000
	minutes := totalSecs / 60
	seconds := totalSecs % 60

	if minutes > 0 {
		return fmt.Sprintf("%d minute%s %d second%s",
			minutes, plural(minutes),
			seconds, plural(seconds))
	}
	return fmt.Sprintf("%d second%s", seconds, plural(seconds))
}

func plural(n int64) string {
	if n == 1 {
		return ""
	}
	return "s"
}
