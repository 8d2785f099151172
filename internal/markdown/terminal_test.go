package markdown

import (
	"strings"
	"testing"
)

func TestTerminalWrapsLongParagraphs(t *testing.T) {
	t.Parallel()

	content := "This is a sentence with enough words to require wrapping when rendered into a preview panel."

	rendered, err := Terminal(content, 30)
	if err != nil {
		t.Fatalf("Terminal returned error: %v", err)
	}

	lines := 0
	for _, line := range strings.Split(rendered, "\n") {
		if strings.TrimSpace(line) != "" {
			lines++
		}
	}
	if lines < 3 {
		t.Fatalf("expected paragraph to wrap over at least 3 lines, got %d: %q", lines, rendered)
	}
}
