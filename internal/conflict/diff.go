package conflict

import (
	"strings"
	"teamsync/internal/model"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LinePair is one row of a side-by-side comparison. Either side may be
// empty when the line exists on only one side.
type LinePair struct {
	Local   string `json:"local"`
	Remote  string `json:"remote"`
	Changed bool   `json:"changed"`
}

// Diff renders a unified-style line diff between the two captured versions
// of a conflict. Purely presentational, no state is touched.
func Diff(rec model.ConflictRecord) []string {
	out := []string{
		"--- local (" + rec.LocalVersion.ModifiedBy + ")",
		"+++ remote (" + rec.RemoteVersion.ModifiedBy + ")",
	}

	for _, d := range lineDiffs(rec.LocalVersion.Content, rec.RemoteVersion.Content) {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		default:
			prefix = "  "
		}

		for _, line := range splitDiffLines(d.Text) {
			out = append(out, prefix+line)
		}
	}

	return out
}

// SideBySideDiff aligns the two versions line by line. contextLines limits
// how many unchanged rows are kept around each change; a negative value
// keeps everything.
func SideBySideDiff(rec model.ConflictRecord, contextLines int) []LinePair {
	var pairs []LinePair
	var deleted []string

	flush := func(inserted []string) {
		n := max(len(deleted), len(inserted))
		for i := 0; i < n; i++ {
			var pair LinePair
			if i < len(deleted) {
				pair.Local = deleted[i]
			}
			if i < len(inserted) {
				pair.Remote = inserted[i]
			}
			pair.Changed = true
			pairs = append(pairs, pair)
		}
		deleted = nil
	}

	for _, d := range lineDiffs(rec.LocalVersion.Content, rec.RemoteVersion.Content) {
		lines := splitDiffLines(d.Text)

		switch d.Type {
		case diffmatchpatch.DiffDelete:
			flush(nil)
			deleted = lines
		case diffmatchpatch.DiffInsert:
			flush(lines)
		default:
			flush(nil)
			for _, line := range lines {
				pairs = append(pairs, LinePair{Local: line, Remote: line})
			}
		}
	}
	flush(nil)

	if contextLines < 0 {
		return pairs
	}

	return trimContext(pairs, contextLines)
}

func lineDiffs(local, remote string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	localChars, remoteChars, lines := dmp.DiffLinesToChars(local, remote)
	diffs := dmp.DiffMain(localChars, remoteChars, false)
	return dmp.DiffCharsToLines(diffs, lines)
}

func splitDiffLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}

	return strings.Split(text, "\n")
}

// trimContext keeps only rows within contextLines of a changed row,
// collapsing skipped runs into a single gap marker.
func trimContext(pairs []LinePair, contextLines int) []LinePair {
	keep := make([]bool, len(pairs))
	for i, p := range pairs {
		if !p.Changed {
			continue
		}

		lo := max(0, i-contextLines)
		hi := min(len(pairs)-1, i+contextLines)
		for j := lo; j <= hi; j++ {
			keep[j] = true
		}
	}

	var out []LinePair
	skipping := false
	for i, p := range pairs {
		if keep[i] {
			out = append(out, p)
			skipping = false
		} else if !skipping {
			out = append(out, LinePair{Local: "...", Remote: "..."})
			skipping = true
		}
	}

	return out
}
