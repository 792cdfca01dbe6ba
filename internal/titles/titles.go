// internal/titles/titles.go
//
// Curated article titles for the daily puzzle and offline random picks.
//
// Responsibilities:
//   - Load titles from a file (TITLES_FILE) or fall back to the embedded list
//     in assets/titles.txt.
//   - Supply Random and Daily over the loaded list.
//
// List format:
//   - One title per line, surrounding whitespace trimmed.
//   - Blank lines and lines starting with '#' are skipped.
//   - Duplicates are dropped, compared case-insensitively; the first
//     spelling wins.

package titles

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/robalobadob/redactle/assets"
	"github.com/robalobadob/redactle/internal/daily"
	"github.com/robalobadob/redactle/internal/game"
)

// ErrEmpty is returned when a list has no usable titles.
var ErrEmpty = errors.New("titles: list is empty")

// List is an ordered, de-duplicated set of titles. It is immutable once built.
type List struct {
	titles []string
}

// Load reads titles from path, or from the embedded list when path is empty.
func Load(path string) (*List, error) {
	var lines []string
	var err error
	if path == "" {
		lines, err = assets.TitlesList()
	} else {
		lines, err = readTitleFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("titles: load %q: %w", path, err)
	}
	return New(lines)
}

// New builds a List from raw lines.
func New(lines []string) (*List, error) {
	l := &List{}
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		key := game.Normalize(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		l.titles = append(l.titles, t)
	}
	if len(l.titles) == 0 {
		return nil, ErrEmpty
	}
	return l, nil
}

// readTitleFile loads one title per line from a file.
func readTitleFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

// Len returns the number of titles.
func (l *List) Len() int { return len(l.titles) }

// Random returns a cryptographically random title.
func (l *List) Random() string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(l.titles))))
	if err != nil {
		return l.titles[0]
	}
	return l.titles[n.Int64()]
}

// Daily returns the title of the day for t and its date key.
func (l *List) Daily(t time.Time, salt string) (date, title string) {
	return daily.DateKey(t), l.titles[daily.TitleIndex(t, salt, len(l.titles))]
}
