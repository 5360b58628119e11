// Package pgn splits Portable Game Notation streams into games and extracts
// their tag pairs and mainline SAN moves.
package pgn

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	ResultNone     = "*"
	ResultWhiteWin = "1-0"
	ResultBlackWin = "0-1"
	ResultDraw     = "1/2-1/2"
)

var (
	ErrEmptyGame = errors.New("pgn: game has no tags or moves")
	ErrMalformed = errors.New("pgn: malformed movetext")
)

var (
	tagPairRegex    = regexp.MustCompile(`^\s*\[\s*([A-Za-z0-9_]+)\s+"((?:[^"\\]|\\.)*)"\s*\]\s*$`)
	moveNumberRegex = regexp.MustCompile(`^\d+\.+`)
)

type Tag struct {
	Key   string
	Value string
}

// Game is one parsed game: its tag section and mainline moves in SAN.
type Game struct {
	Tags  []Tag
	Moves []string
	// Result is the movetext termination marker, empty when absent.
	Result string
}

func (g *Game) Tag(key string) (string, bool) {
	for _, t := range g.Tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

// TagOr returns the trimmed tag value, or def when missing or blank.
func (g *Game) TagOr(key, def string) string {
	if v, ok := g.Tag(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

// StartFEN returns the FEN tag, empty for games from the standard position.
func (g *Game) StartFEN() string {
	return g.TagOr("FEN", "")
}

// Fingerprint identifies a game by its tag section and moves.
func (g *Game) Fingerprint() string {
	h := sha256.New()
	for _, t := range g.Tags {
		fmt.Fprintf(h, "%s=%s\n", t.Key, t.Value)
	}
	h.Write([]byte(strings.Join(g.Moves, " ")))
	return hex.EncodeToString(h.Sum(nil))
}

// Parse reads one game's text as produced by Scanner.
func Parse(raw string) (*Game, error) {
	g := &Game{}
	var (
		body    strings.Builder
		inBrace bool
	)
	for _, line := range strings.Split(raw, "\n") {
		if inBrace {
			inBrace = commentOpenAfter(line, true)
			body.WriteString(line)
			body.WriteString("\n")
			continue
		}
		if m := tagPairRegex.FindStringSubmatch(line); m != nil {
			g.Tags = append(g.Tags, Tag{Key: m[1], Value: unescape(m[2])})
			continue
		}
		if strings.HasPrefix(line, "%") {
			continue
		}
		body.WriteString(line)
		body.WriteString("\n")
		inBrace = commentOpenAfter(line, false)
	}
	moves, result, err := parseMovetext(body.String())
	if err != nil {
		return nil, err
	}
	g.Moves = moves
	g.Result = result
	if len(g.Tags) == 0 && len(g.Moves) == 0 {
		return nil, ErrEmptyGame
	}
	return g, nil
}

// commentOpenAfter reports whether a {...} comment is still open at the end
// of a movetext line. A ';' outside a comment ends the line's movetext.
func commentOpenAfter(line string, open bool) bool {
	for _, r := range line {
		switch {
		case open:
			open = r != '}'
		case r == '{':
			open = true
		case r == ';':
			return false
		}
	}
	return open
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	s = strings.ReplaceAll(s, `\"`, `"`)
	return strings.ReplaceAll(s, `\\`, `\`)
}

// parseMovetext returns mainline SAN tokens. Comments, variations, NAGs and
// move numbers are dropped; parsing stops at the result marker.
func parseMovetext(body string) ([]string, string, error) {
	var (
		moves     []string
		result    string
		token     strings.Builder
		depth     int
		inComment bool
		inLine    bool
	)
	// emit reports true once the result marker is reached.
	emit := func() bool {
		tok := moveNumberRegex.ReplaceAllString(token.String(), "")
		token.Reset()
		switch {
		case tok == "", strings.HasPrefix(tok, "$"):
			return false
		case tok == ResultWhiteWin, tok == ResultBlackWin, tok == ResultDraw, tok == ResultNone:
			result = tok
			return true
		}
		moves = append(moves, tok)
		return false
	}

	for _, r := range body {
		if inComment {
			inComment = r != '}'
			continue
		}
		if inLine {
			inLine = r != '\n'
			continue
		}
		switch {
		case r == '{', r == ';', r == '(', r == ')', unicode.IsSpace(r):
			if depth == 0 && emit() {
				return moves, result, nil
			}
			switch r {
			case '{':
				inComment = true
			case ';':
				inLine = true
			case '(':
				depth++
			case ')':
				if depth == 0 {
					return nil, "", fmt.Errorf("%w: unbalanced ')'", ErrMalformed)
				}
				depth--
			}
		case depth == 0:
			token.WriteRune(r)
		}
	}
	if inComment {
		return nil, "", fmt.Errorf("%w: unterminated comment", ErrMalformed)
	}
	if depth != 0 {
		return nil, "", fmt.Errorf("%w: unterminated variation", ErrMalformed)
	}
	emit()
	return moves, result, nil
}
