package media

import (
	"context"
	"io"
)

// ProgressFunc receives bytes sent so far and the total.
type ProgressFunc func(sent, total int64)

// progressReader reports reads to fn and stops once ctx is done.
type progressReader struct {
	ctx   context.Context
	r     io.Reader
	total int64
	sent  int64
	fn    ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.r.Read(buf)
	if n > 0 {
		p.sent += int64(n)
		if p.fn != nil {
			p.fn(p.sent, p.total)
		}
	}
	return n, err
}
