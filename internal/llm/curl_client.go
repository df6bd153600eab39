package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// curlHTTPError is curl's exit status for an HTTP answer >= 400 under --fail-with-body.
const curlHTTPError = 22

// CURLClient sends the request through the curl executable. It is selected
// with GEMSH_USE_CURL for hosts where curl carries proxy or TLS settings that
// Go's resolver does not pick up.
type CURLClient struct {
	command string
}

// NewCURLClient creates a curl-backed transport.
func NewCURLClient() *CURLClient {
	return &CURLClient{command: "curl"}
}

// Post implements Transport. The body is fed on stdin so large prompts never
// hit argv limits.
func (c *CURLClient) Post(ctx context.Context, url string, body []byte) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, c.command,
		"--silent", "--show-error",
		"--no-buffer",
		"--fail-with-body",
		"--request", "POST",
		"--url", url,
		"--header", "Content-Type: application/json",
		"--header", "Accept: text/event-stream",
		"--data-binary", "@-",
	)
	cmd.Stdin = bytes.NewReader(body)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to attach curl output: %w", err)
	}
	rb := &curlBody{cmd: cmd, stdout: stdout}
	cmd.Stderr = &rb.stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start curl: %w", err)
	}
	return rb, nil
}

// Requires implements Transport.
func (c *CURLClient) Requires() []string { return []string{c.command} }

// Name implements Transport.
func (c *CURLClient) Name() string { return "curl" }

// curlBody streams curl's stdout and turns its exit status into an error
// once the output is drained.
type curlBody struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer
	head   bytes.Buffer

	once    sync.Once
	waitErr error
}

func (b *curlBody) Read(p []byte) (int, error) {
	n, err := b.stdout.Read(p)
	if room := maxErrorBody - b.head.Len(); room > 0 && n > 0 {
		b.head.Write(p[:min(n, room)])
	}
	if err == io.EOF {
		if werr := b.wait(); werr != nil {
			return n, werr
		}
	}
	return n, err
}

func (b *curlBody) Close() error {
	if b.cmd.ProcessState == nil && b.cmd.Process != nil {
		_ = b.cmd.Process.Kill()
	}
	_ = b.wait()
	return nil
}

func (b *curlBody) wait() error {
	b.once.Do(func() {
		err := b.cmd.Wait()
		if err == nil {
			return
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == curlHTTPError {
			b.waitErr = &StatusError{Body: append([]byte(nil), b.head.Bytes()...)}
			return
		}
		b.waitErr = fmt.Errorf("curl request failed: %v | %s", err, strings.TrimSpace(b.stderr.String()))
	})
	return b.waitErr
}
