// Package console runs the line-based interactive loop: prompt for a query,
// list the top results, select one and queue it.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mmcdole/hifi/internal/domain"
	"github.com/mmcdole/hifi/internal/tui/styles"
)

const (
	queryPrompt  = "Enter song name (or q to quit): "
	selectPrompt = "\nSelect track number: "

	historyCommand = ":history"
	historyLimit   = 10
)

// NoSelection is returned by a Selector when the user picks nothing
const NoSelection = -1

// Selector picks one of the listed tracks, returning its index or NoSelection
type Selector interface {
	Select(ctx context.Context, tracks []domain.Track) (int, error)
}

type searcher interface {
	Search(ctx context.Context, query string) ([]domain.Track, error)
}

type player interface {
	Play(ctx context.Context, track domain.Track) (*domain.QueuedMedia, error)
}

type historyLister interface {
	Recent(n int) ([]domain.PlayRecord, error)
}

// Console is the interactive loop. One track resolution completes before
// the next prompt is shown.
type Console struct {
	in       *bufio.Reader
	out      io.Writer
	search   searcher
	player   player
	history  historyLister // optional
	selector Selector
	logger   *slog.Logger

	playerDone     <-chan struct{} // optional
	playerReported bool
}

// New creates a console. A nil selector uses the numeric prompt on the same
// input; a nil history disables the :history command.
func New(in io.Reader, out io.Writer, search searcher, player player, history historyLister, selector Selector, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Console{
		in:      bufio.NewReader(in),
		out:     out,
		search:  search,
		player:  player,
		history: history,
		logger:  logger,
	}
	c.selector = selector
	if c.selector == nil {
		c.selector = &NumberPrompt{console: c}
	}
	return c
}

// WatchPlayer makes the loop report, once, that the player went away.
// done is closed when the player session ends.
func (c *Console) WatchPlayer(done <-chan struct{}) {
	c.playerDone = done
}

// checkPlayer prints a one-time notice when the watched player has exited
func (c *Console) checkPlayer() {
	if c.playerDone == nil || c.playerReported {
		return
	}
	select {
	case <-c.playerDone:
		c.playerReported = true
		c.logger.Warn("player session ended")
		fmt.Fprintln(c.out, styles.ErrorStyle.Render("Player exited: tracks can no longer be queued"))
	default:
	}
}

// Run loops until the user quits, input ends, or ctx is cancelled.
// Per-track failures are printed and never end the loop.
func (c *Console) Run(ctx context.Context) error {
	for {
		c.checkPlayer()
		fmt.Fprint(c.out, queryPrompt)

		line, err := c.readLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				fmt.Fprintln(c.out)
				return nil
			}
			return err
		}

		query := strings.TrimSpace(line)
		switch {
		case query == "":
			continue
		case strings.EqualFold(query, "q"):
			return nil
		case query == historyCommand:
			c.printHistory()
			continue
		}

		if err := c.handleQuery(ctx, query); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				fmt.Fprintln(c.out)
				return nil
			}
			c.logger.Warn("track selection failed", "error", err, "query", query)
			fmt.Fprintln(c.out, styles.ErrorStyle.Render("Error: "+err.Error()))
		}
	}
}

// handleQuery runs one search, selection and playback attempt
func (c *Console) handleQuery(ctx context.Context, query string) error {
	tracks, err := c.search.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(tracks) == 0 {
		fmt.Fprintln(c.out, styles.DimStyle.Render("No results"))
		return nil
	}

	fmt.Fprintln(c.out, "Results: ")
	for i, t := range tracks {
		fmt.Fprintf(c.out, "%d. %s - %s\n", i+1, styles.TitleStyle.Render(t.Title), styles.SubtitleStyle.Render(t.Artist))
	}

	idx, err := c.selector.Select(ctx, tracks)
	if err != nil {
		return fmt.Errorf("selection failed: %w", err)
	}
	if idx < 0 || idx >= len(tracks) {
		return nil
	}

	queued, err := c.player.Play(ctx, tracks[idx])
	if err != nil {
		return err
	}

	verb := "Queued"
	if queued.Mode == domain.LoadReplace {
		verb = "Now playing"
	}
	fmt.Fprintf(c.out, "%s: %s %s\n",
		styles.SuccessStyle.Render(verb),
		queued.Track.DisplayName(),
		styles.DimStyle.Render("["+queued.Quality+"]"))
	return nil
}

// printHistory lists the most recently queued tracks
func (c *Console) printHistory() {
	if c.history == nil {
		fmt.Fprintln(c.out, styles.DimStyle.Render("History is disabled"))
		return
	}

	records, err := c.history.Recent(historyLimit)
	if err != nil {
		fmt.Fprintln(c.out, styles.ErrorStyle.Render("Error: "+err.Error()))
		return
	}
	if len(records) == 0 {
		fmt.Fprintln(c.out, styles.DimStyle.Render("No history yet"))
		return
	}

	for _, r := range records {
		fmt.Fprintf(c.out, "%s  %s - %s %s\n",
			styles.DimStyle.Render(r.QueuedAt.Local().Format("2006-01-02 15:04")),
			r.Title, r.Artist,
			styles.DimStyle.Render("["+r.Quality+"]"))
	}
}

// readLine reads one line without blocking cancellation. The read itself
// cannot be interrupted; on cancel the pending read is abandoned.
func (c *Console) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		line, err := c.in.ReadString('\n')
		if err == io.EOF && line != "" {
			// Final line without a newline
			err = nil
		}
		ch <- result{line, err}
	}()

	select {
	case r := <-ch:
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
