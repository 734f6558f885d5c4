package services

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

type lineResult struct {
	line string
	err  error
}

// ReadLine reads one line from r, trimmed of surrounding whitespace. It
// returns ctx.Err() as soon as ctx is done, even while r is blocked. A final
// line without a trailing newline is returned before io.EOF.
//
// A read still pending when ctx is cancelled keeps its goroutine until r
// yields, so r must not be read again after a cancellation.
func ReadLine(ctx context.Context, r *bufio.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ch := make(chan lineResult, 1)
	go func() {
		line, err := r.ReadString('\n')
		ch <- lineResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if res.err != nil {
			if errors.Is(res.err, io.EOF) && res.line != "" {
				return strings.TrimSpace(res.line), nil
			}
			return "", res.err
		}
		return strings.TrimSpace(res.line), nil
	}
}
