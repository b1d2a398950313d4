package ledger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"chatwheel/internal/phrase"
)

// ExportHeader marks the first line of an exported segments file.
const ExportHeader = "# TWITCH_WHEEL_EXPORT_V2"

// Export writes the ledger's top-K view as line-oriented UTF-8 text: the
// header, one SEGMENT<TAB><phrase><TAB><count> line per view entry in
// (-count, phrase) order, then one USERVOTE<TAB><sender><TAB><phrase> line,
// sorted by sender, for every sender whose current phrase is in the
// exported set.
func (l *Ledger) Export(w io.Writer, k int) error {
	view := l.TopK(k)
	exported := make(map[string]bool, len(view))

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, ExportHeader)
	for _, s := range view {
		exported[s.Phrase] = true
		fmt.Fprintf(bw, "SEGMENT\t%s\t%d\n", s.Phrase, s.Count)
	}

	senders := make([]string, 0, len(l.votes))
	for sender := range l.votes {
		senders = append(senders, sender)
	}
	sort.Strings(senders)
	for _, sender := range senders {
		if exported[l.votes[sender]] {
			fmt.Fprintf(bw, "USERVOTE\t%s\t%s\n", sender, l.votes[sender])
		}
	}
	return bw.Flush()
}

// ExportFile writes Export output to path.
func (l *Ledger) ExportFile(path string, k int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export segments: %w", err)
	}
	if err := l.Export(f, k); err != nil {
		f.Close()
		return fmt.Errorf("export segments: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export segments: %w", err)
	}
	return nil
}

// Import parses a segments file into a fresh ledger, fully replacing any
// prior state. Accepted lines, in decreasing precedence per line:
//
//	SEGMENT<TAB><phrase><TAB><count>
//	USERVOTE<TAB><sender><TAB><phrase>
//	<phrase><TAB><count>
//	<phrase> <count>        (legacy; last whitespace-separated token)
//
// Blank lines and lines starting with # are ignored; malformed lines are
// skipped individually. Imported segments are fuzzily deduplicated against
// each other in file order. User votes whose phrase survived with a
// positive count are kept; one referencing an absent phrase creates it with
// tally 1.
func Import(r io.Reader) (*Ledger, error) {
	l := New()
	pendingVotes := make(map[string]string)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) >= 3 && parts[0] == "SEGMENT" {
			p := phrase.Normalize(parts[1])
			votes := ParseCount(strings.TrimSpace(parts[2]), 0)
			if p != "" && votes > 0 {
				l.addPhrase(l.resolve(p, ""), votes)
			}
			continue
		}
		if len(parts) >= 3 && parts[0] == "USERVOTE" {
			sender := phrase.FoldSender(parts[1])
			p := phrase.Normalize(parts[2])
			if sender != "" && p != "" {
				pendingVotes[sender] = p
			}
			continue
		}

		var phraseRaw, votesRaw string
		if i := strings.LastIndex(line, "\t"); i >= 0 {
			phraseRaw, votesRaw = line[:i], line[i+1:]
		} else if i := strings.LastIndex(line, " "); i >= 0 {
			phraseRaw, votesRaw = line[:i], line[i+1:]
		} else {
			continue
		}
		p := phrase.Normalize(phraseRaw)
		votes := ParseCount(strings.TrimSpace(votesRaw), 0)
		if p == "" || votes <= 0 {
			continue
		}
		l.addPhrase(l.resolve(p, ""), votes)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("import segments: %w", err)
	}

	for sender, p := range pendingVotes {
		if l.counts[p] < 1 {
			l.addPhrase(p, 1)
		}
		l.votes[sender] = p
	}
	l.mustVerify()
	return l, nil
}

// ImportFile reads path through Import.
func ImportFile(path string) (*Ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("import segments: %w", err)
	}
	defer f.Close()
	return Import(f)
}
