package speech

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// Console reads utterances line by line from an input stream.
type Console struct {
	lines  chan string
	out    io.Writer
	prompt string
}

// NewConsole starts reading r in the background. The reader goroutine ends
// when r reaches EOF.
func NewConsole(r io.Reader, prompt io.Writer) *Console {
	c := &Console{
		lines:  make(chan string),
		out:    prompt,
		prompt: "👤 You: ",
	}
	go c.read(r)
	return c
}

func (c *Console) read(r io.Reader) {
	defer close(c.lines)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		c.lines <- sc.Text()
	}
}

func (c *Console) Listen(ctx context.Context, timeout time.Duration) (string, error) {
	if c.out != nil {
		fmt.Fprint(c.out, c.prompt)
	}

	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case line, ok := <-c.lines:
		if !ok {
			return "", ErrClosed
		}
		return strings.ToLower(strings.TrimSpace(line)), nil
	case <-expired:
		return "", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
