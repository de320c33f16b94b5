package userinteraction

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"behat-locator/internal/application/port/output"
	"behat-locator/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.UserInteractionPort = (*Console)(nil)

const maxShownOutput = 120

type Console struct {
	lines chan string
	out   io.Writer
}

// NewConsole reads answers from in and prints progress to out. A single
// reader goroutine owns in, so an abandoned wait does not lose the next line.
func NewConsole(in io.Reader, out io.Writer) *Console {
	c := &Console{lines: make(chan string), out: out}
	go c.read(in)
	return c
}

func (c *Console) read(in io.Reader) {
	defer close(c.lines)
	reader := bufio.NewReader(in)
	for {
		line, err := reader.ReadString('\n')
		if line != "" || err == nil {
			c.lines <- strings.TrimSpace(line)
		}
		if err != nil {
			return
		}
	}
}

func (c *Console) WaitForUserAction(ctx context.Context, message string) error {
	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintf(c.out, "\n[PAUSED] %s\n", message)
	fmt.Fprint(c.out, "Press Enter to continue...")

	select {
	case _, ok := <-c.lines:
		fmt.Fprintln(c.out)
		if !ok {
			return fmt.Errorf("failed to wait for user: %w", io.EOF)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Console) ShowScenario(ctx context.Context, name string, steps int) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(c.out, "\n━━━ %s (%d steps) ━━━\n", name, steps)
}

func (c *Console) ShowStepStart(ctx context.Context, index int, st entity.Step) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintf(c.out, "%2d. %s", index+1, st.Action)
	if detail := stepDetail(st); detail != "" {
		fmt.Fprintf(c.out, " %s", detail)
	}
	fmt.Fprintln(c.out)
}

func (c *Console) ShowStepResult(ctx context.Context, result entity.StepResult) {
	if result.Error != "" {
		red := color.New(color.FgRed, color.Bold)
		red.Fprintf(c.out, "    FAIL %s\n", result.Error)
		return
	}

	green := color.New(color.FgGreen)
	green.Fprint(c.out, "    ok ")
	fmt.Fprintf(c.out, "%s (%s)\n", truncate(result.Output, maxShownOutput), result.Duration.Round(time.Millisecond))
}

func stepDetail(st entity.Step) string {
	var parts []string
	if st.Locator != nil {
		parts = append(parts, st.Locator.String())
	}
	if st.Container != "" {
		parts = append(parts, "in "+st.Container)
	}
	if st.URL != "" {
		parts = append(parts, st.URL)
	}
	if st.Path != "" {
		parts = append(parts, "-> "+st.Path)
	}
	return strings.Join(parts, " ")
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
