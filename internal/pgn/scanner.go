package pgn

import (
	"bufio"
	"io"
	"strings"
)

const maxLineBytes = 1 << 20

// Scanner splits a PGN stream into the raw text of each game. A tag line that
// follows movetext starts a new game.
type Scanner struct {
	sc      *bufio.Scanner
	cur     strings.Builder
	next    string
	raw     string
	hasBody bool
	// inBrace is set while a {...} comment spans lines.
	inBrace bool
	first   bool
	done    bool
}

func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Scanner{sc: sc, first: true}
}

// Scan advances to the next game. It returns false at end of input or on a
// read error; check Err afterwards.
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}
	s.cur.Reset()
	s.hasBody = false
	s.inBrace = false
	if s.next != "" {
		s.cur.WriteString(s.next)
		s.cur.WriteString("\n")
		s.next = ""
	}
	for s.sc.Scan() {
		line := s.sc.Text()
		if s.first {
			line = strings.TrimPrefix(line, "\ufeff")
			s.first = false
		}
		if s.inBrace {
			s.inBrace = commentOpenAfter(line, true)
			s.cur.WriteString(line)
			s.cur.WriteString("\n")
			continue
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && s.hasBody {
			s.next = line
			s.raw = s.cur.String()
			return true
		}
		if trimmed != "" && !strings.HasPrefix(trimmed, "[") {
			s.hasBody = true
			s.inBrace = commentOpenAfter(line, false)
		}
		s.cur.WriteString(line)
		s.cur.WriteString("\n")
	}
	s.done = true
	s.raw = s.cur.String()
	return strings.TrimSpace(s.raw) != "" && s.sc.Err() == nil
}

// Raw returns the text of the current game.
func (s *Scanner) Raw() string { return s.raw }

func (s *Scanner) Err() error { return s.sc.Err() }
