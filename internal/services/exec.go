package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// Executor abstracts command execution for testability. Implementations
// forward each line of combined output to onLine.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
}

// CommandExecutor runs real processes.
type CommandExecutor struct{}

// Run starts the command and streams stdout and stderr line by line.
func (CommandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if onLine != nil {
				onLine(scanner.Text())
			}
		}
	}
	wg.Add(2)
	go scan(stdout)
	go scan(stderr)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}

// OutputTail retains the last few lines a tool printed so failures can
// include a bounded diagnostic excerpt.
type OutputTail struct {
	mu    sync.Mutex
	limit int
	lines []string
}

// NewOutputTail returns a tail that keeps at most limit lines.
func NewOutputTail(limit int) *OutputTail {
	if limit <= 0 {
		limit = 8
	}
	return &OutputTail{limit: limit}
}

// Append records one output line, discarding the oldest beyond the limit.
func (t *OutputTail) Append(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.limit {
		t.lines = t.lines[len(t.lines)-t.limit:]
	}
}

// String returns the retained lines joined and truncated for display.
func (t *OutputTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	joined := ""
	for i, line := range t.lines {
		if i > 0 {
			joined += "; "
		}
		joined += line
	}
	return Truncate(joined, DetailLimit)
}
