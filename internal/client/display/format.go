package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golf/internal/server/core"
)

// PrettyPrintJSON prints formatted JSON
func PrettyPrintJSON(w io.Writer, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "%sError formatting JSON: %s%s\n", Red, err.Error(), Reset)
		return
	}
	fmt.Fprintln(w, string(data))
}

func rounds(b *core.BoundResponse) string {
	if b == nil {
		return "-"
	}
	return fmt.Sprintf("%d", b.NumRounds)
}

// InstanceTable prints one line per instance
func InstanceTable(w io.Writer, instances []core.InstanceResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Instance\tPlayers\tLower\tUpper\tRange\tStatus")
	for _, inst := range instances {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s%s%s\n",
			inst.Name, inst.NumPlayers, rounds(inst.Lower), rounds(inst.Upper),
			inst.Range, StatusColor(inst.Status), inst.Status, Reset)
	}
	tw.Flush()
}

// Instance prints the resolved state of a single instance
func Instance(w io.Writer, inst *core.InstanceResponse) {
	fmt.Fprintf(w, "%sInstance %s%s (%d groups of %d, %d players)\n",
		Cyan, inst.Name, Reset, inst.NumGroups, inst.GroupSize, inst.NumPlayers)
	fmt.Fprintf(w, "  Status:  %s%s%s\n", StatusColor(inst.Status), inst.Status, Reset)
	fmt.Fprintf(w, "  Range:   %s\n", inst.Range)
	fmt.Fprintf(w, "  Trivial: %d rounds\n", inst.TrivialUpperBound)
	if inst.Lower != nil {
		fmt.Fprintf(w, "  Lower:   %s\n", Bound(inst.Lower))
	}
	if inst.Upper != nil {
		fmt.Fprintf(w, "  Upper:   %s\n", Bound(inst.Upper))
	}
	if inst.Solution != "" {
		fmt.Fprintf(w, "%sSolution:%s\n", Cyan, Reset)
		Schedule(w, inst.Solution)
	}
}

// Bound renders a bound with its provenance on one line
func Bound(b *core.BoundResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %d", b.Kind, b.NumRounds)
	if b.HasSolution {
		sb.WriteString(" (solution)")
	}
	fmt.Fprintf(&sb, " by %s, %s", b.SubmitterName, b.Citation)
	if b.Construction != nil {
		fmt.Fprintf(&sb, " [%s v%d]", b.Construction.ID, b.Construction.Version)
	}
	return sb.String()
}

// Schedule prints schedule text with one round per line and aligned groups
func Schedule(w io.Writer, text string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for r, line := range strings.Split(text, "\n") {
		groups := strings.Split(line, "|")
		fmt.Fprintf(tw, "%sR%d%s\t%s\n", Yellow, r+1, Reset, strings.Join(groups, "\t"))
	}
	tw.Flush()
}
