package app

import (
	"encoding/json"
	"fmt"
	"io"

	jd "github.com/josephburnett/jd/lib"
	"github.com/xlab/treeprint"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type Reporter struct {
	out    io.Writer
	format Format
}

func NewReporter(out io.Writer, format Format) *Reporter {
	if format == "" {
		format = FormatText
	}

	return &Reporter{out: out, format: format}
}

func (r *Reporter) Write(results *Results) error {
	if r.format == FormatJSON {
		encoder := json.NewEncoder(r.out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(results)
	}

	lines := []string{
		fmt.Sprintf("Sitemaps: %d", len(results.SitemapURLs)),
		fmt.Sprintf("Discovered %d sitemap entries", results.Discovered),
		fmt.Sprintf("Allowed by robots.txt: %d (%d removed)", results.Allowed, results.Discovered-results.Allowed),
	}
	if results.RecencyApplied {
		lines = append(lines, fmt.Sprintf("Modified recently: %d", results.Recent))
	}
	lines = append(lines, fmt.Sprintf("Found %d unique URLs", results.UniqueURLs), "")

	for _, line := range lines {
		if _, err := fmt.Fprintln(r.out, line); err != nil {
			return err
		}
	}

	_, err := io.WriteString(r.out, RenderTree(results.Tree))

	return err
}

// WriteBaselineDiff prints the structural difference from baseline to tree.
// A matching tree prints a single confirmation line.
func (r *Reporter) WriteBaselineDiff(baseline Mapping, tree *Node) error {
	diff, err := DiffTrees(baseline, tree)
	if err != nil {
		return err
	}

	if diff == "" {
		_, err = fmt.Fprintln(r.out, "Tree matches baseline")

		return err
	}

	_, err = fmt.Fprintf(r.out, "Changes since baseline:\n%s", diff)

	return err
}

func DiffTrees(baseline Mapping, tree *Node) (string, error) {
	baselineJSON, err := json.Marshal(baseline)
	if err != nil {
		return "", err
	}
	treeJSON, err := json.Marshal(tree)
	if err != nil {
		return "", err
	}

	first, err := jd.ReadJsonString(string(baselineJSON))
	if err != nil {
		return "", fmt.Errorf("could not read baseline: %w", err)
	}
	second, err := jd.ReadJsonString(string(treeJSON))
	if err != nil {
		return "", fmt.Errorf("could not read tree: %w", err)
	}

	return first.Diff(second).Render(), nil
}

func RenderTree(tree *Node) string {
	root := treeprint.New()
	if tree != nil {
		addBranches(root, tree)
	}

	return root.String()
}

func addBranches(branch treeprint.Tree, node *Node) {
	for _, child := range node.Children {
		if child.IsEmpty() {
			branch.AddNode(child.Name)

			continue
		}
		addBranches(branch.AddBranch(child.Name), child)
	}
}
