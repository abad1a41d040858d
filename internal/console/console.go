// Package console drives a review session from line commands and prints the
// resulting views as JSON.
package console

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ibbymorris/collaborative-media-review-tool/internal/logger"
	"github.com/ibbymorris/collaborative-media-review-tool/internal/reviewerr"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/session"
)

// ErrQuit is returned by Exec for the quit command
var ErrQuit = errors.New("quit")

type handler func(ctx context.Context, args []string, rest string) (any, error)

// Console interprets commands against one session
type Console struct {
	s        *session.Session
	out      io.Writer
	log      *logger.Logger
	commands map[string]handler
	help     map[string]string
}

// New creates a console writing JSON results to out
func New(s *session.Session, out io.Writer, log *logger.Logger) *Console {
	if log == nil {
		log = logger.NewNop()
	}
	c := &Console{s: s, out: out, log: log}
	c.register()
	return c
}

// Run executes commands line by line until EOF, quit or context cancellation.
// Blank lines and lines starting with '#' are skipped. Command failures are
// printed and do not stop the run.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		result, err := c.Exec(ctx, line)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			c.log.Debug("command failed").Str("command", line).Err(err).Send()
			c.print(errorView(err))
			continue
		}
		if result != nil {
			c.print(result)
		}
	}
	return scanner.Err()
}

// Exec runs a single command line and returns the value to print
func (c *Console) Exec(ctx context.Context, line string) (any, error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	h, ok := c.commands[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown command %q, try help", name)
	}
	return h(ctx, strings.Fields(rest), rest)
}

// Commands lists the known command names
func (c *Console) Commands() []string {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Console) print(v any) {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		c.log.Error("failed to encode result").Err(err).Send()
	}
}

type errorResult struct {
	Error   string         `json:"error"`
	Code    reviewerr.Code `json:"code,omitempty"`
	Message string         `json:"message,omitempty"`
}

func errorView(err error) errorResult {
	var re *reviewerr.Error
	if errors.As(err, &re) {
		return errorResult{Error: err.Error(), Code: re.Code, Message: re.Message}
	}
	return errorResult{Error: err.Error()}
}
