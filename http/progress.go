package http

import "io"

// ProgressFunc receives the running byte count and the expected total.
// Total is -1 when the server did not report a length.
type ProgressFunc func(read, total int64)

// ProgressReader reports bytes read from the wrapped reader.
type ProgressReader struct {
	r      io.Reader
	total  int64
	read   int64
	report ProgressFunc
}

// NewProgressReader wraps r. A nil report function makes it a pass-through.
func NewProgressReader(r io.Reader, total int64, report ProgressFunc) *ProgressReader {
	return &ProgressReader{r: r, total: total, report: report}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.report != nil {
			p.report(p.read, p.total)
		}
	}
	return n, err
}

// BytesRead returns the number of bytes read so far.
func (p *ProgressReader) BytesRead() int64 {
	return p.read
}
