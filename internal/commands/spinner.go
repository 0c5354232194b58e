package commands

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const spinnerInterval = 80 * time.Millisecond

var (
	spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	spinnerBar    = []string{"█", "█", "█", "█", "█", "█", "▓", "▒", "░"}
)

// spinner draws a one-line progress indicator with the time spent waiting
// on the backend. It only writes to out, so stdout stays clean for the reply.
type spinner struct {
	out     io.Writer
	message string
	started time.Time

	stop chan struct{}
	done chan struct{}

	mu      sync.Mutex
	frame   int
	stopped bool
}

func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (s *spinner) start() {
	s.started = time.Now()
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		fmt.Fprint(s.out, "\033[?25l") // hide cursor
		for {
			select {
			case <-s.stop:
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				fmt.Fprint(s.out, "\r\033[K"+s.line(time.Since(s.started)))
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// line renders the current frame
func (s *spinner) line(elapsed time.Duration) string {
	n := len(gradientColors)
	color := func(i int) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(gradientColors[(i%n+n)%n])
	}

	var b strings.Builder
	b.WriteString(color(s.frame).Bold(true).Render(spinnerFrames[s.frame%len(spinnerFrames)]))
	b.WriteByte(' ')
	for i := 0; i < 16; i++ {
		b.WriteString(color(i + s.frame).Render(spinnerBar[(i+s.frame/2)%len(spinnerBar)]))
	}
	b.WriteByte(' ')
	b.WriteString(lipgloss.NewStyle().Foreground(colorText).Render(s.message))
	b.WriteByte(' ')
	b.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render(fmt.Sprintf("%.1fs", elapsed.Seconds())))
	return b.String()
}

func (s *spinner) halt() {
	s.mu.Lock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
	s.mu.Unlock()
	<-s.done
}

// stopWithSuccess stops the spinner and prints message with the wait time
func (s *spinner) stopWithSuccess(message string) {
	s.halt()
	ok := lipgloss.NewStyle().Foreground(colorSuccess)
	fmt.Fprintf(s.out, "%s %s %s\n",
		ok.Bold(true).Render("✓"),
		ok.Render(message),
		lipgloss.NewStyle().Foreground(colorTextMute).Render(fmt.Sprintf("(%.1fs)", time.Since(s.started).Seconds())),
	)
}

// stopWithError stops the spinner and clears its line
func (s *spinner) stopWithError() {
	s.halt()
}
