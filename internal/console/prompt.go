package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/hifi/internal/domain"
)

// NumberPrompt selects a track by its 1-based list number.
// Unparseable input is treated as 0, i.e. no selection.
type NumberPrompt struct {
	console *Console
}

// Select implements Selector
func (p *NumberPrompt) Select(ctx context.Context, tracks []domain.Track) (int, error) {
	fmt.Fprint(p.console.out, selectPrompt)

	line, err := p.console.readLine(ctx)
	if err != nil {
		return NoSelection, err
	}

	return parseChoice(line, len(tracks)), nil
}

// parseChoice maps a typed number to a slice index, or NoSelection
func parseChoice(input string, count int) int {
	choice, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		choice = 0
	}
	if choice < 1 || choice > count {
		return NoSelection
	}
	return choice - 1
}
