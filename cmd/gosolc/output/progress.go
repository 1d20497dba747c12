package output

import (
	"fmt"
	"time"

	solchttp "github.com/willibrandon/gosolc/http"
)

const progressInterval = 100 * time.Millisecond

// DownloadProgress returns a progress callback for one download. On a
// terminal it redraws a single status line on the error stream; otherwise
// it reports only completion, at detailed verbosity. Quiet consoles get nil.
func (c *Console) DownloadProgress(label string) solchttp.ProgressFunc {
	if c.GetVerbosity() < VerbosityNormal {
		return nil
	}
	interactive := c.Interactive()

	var last time.Time
	return func(read, total int64) {
		complete := total > 0 && read >= total
		if !interactive {
			if complete {
				c.Detail("%s %s", label, FormatProgress(read, total))
			}
			return
		}
		if !complete && time.Since(last) < progressInterval {
			return
		}
		last = time.Now()

		c.mu.Lock()
		defer c.mu.Unlock()
		fmt.Fprintf(c.err, "\r\033[K%s %s", label, FormatProgress(read, total))
		if complete {
			fmt.Fprintln(c.err)
		}
	}
}

// FormatProgress renders "read / total (pct%)", or just the byte count when
// the total is unknown.
func FormatProgress(read, total int64) string {
	if total <= 0 {
		return FormatBytes(read)
	}
	return fmt.Sprintf("%s / %s (%d%%)", FormatBytes(read), FormatBytes(total), read*100/total)
}

// FormatBytes renders n with a binary unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
