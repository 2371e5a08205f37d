package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/jedib0t/go-pretty/v6/table"

	"divmap/internal/walkers"
)

// Distances computes the pairwise divergence distance between platforms
// from the line map. For platforms a and b the distance is the share of
// lines reached by exactly one of them among all lines reached by
// either; 0 means identical compilation, 1 means nothing shared.
func Distances(platforms []string, lineMap walkers.LineMap) [][]float64 {
	dist := make([][]float64, len(platforms))
	for i := range dist {
		dist[i] = make([]float64, len(platforms))
	}
	for i, a := range platforms {
		for j, b := range platforms {
			if j <= i {
				continue
			}
			divergent, union := 0, 0
			for set, lines := range lineMap {
				inA, inB := set.Contains(a), set.Contains(b)
				if inA || inB {
					union += lines
				}
				if inA != inB {
					divergent += lines
				}
			}
			d := 0.0
			if union > 0 {
				d = float64(divergent) / float64(union)
			}
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return dist
}

// DistanceMatrix renders the distance matrix as a console table.
func DistanceMatrix(platforms []string, dist [][]float64) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)

	header := table.Row{""}
	for _, name := range platforms {
		header = append(header, name)
	}
	tbl.AppendHeader(header)

	for i, name := range platforms {
		row := table.Row{name}
		for j := range platforms {
			row = append(row, fmt.Sprintf("%.3f", dist[i][j]))
		}
		tbl.AppendRow(row)
	}
	return tbl.Render() + "\n"
}

// dendroNode is one cluster in the agglomerative merge tree. Leaves
// carry a platform name; internal nodes carry the linkage height at
// which their children merged.
type dendroNode struct {
	name        string
	members     []int
	left, right *dendroNode
	height      float64
}

// cluster merges platforms bottom-up with average linkage until a
// single tree remains.
func cluster(platforms []string, dist [][]float64) *dendroNode {
	nodes := make([]*dendroNode, len(platforms))
	for i, name := range platforms {
		nodes[i] = &dendroNode{name: name, members: []int{i}}
	}

	linkage := func(a, b *dendroNode) float64 {
		sum := 0.0
		for _, i := range a.members {
			for _, j := range b.members {
				sum += dist[i][j]
			}
		}
		return sum / float64(len(a.members)*len(b.members))
	}

	for len(nodes) > 1 {
		bestI, bestJ := 0, 1
		bestDist := linkage(nodes[0], nodes[1])
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				if d := linkage(nodes[i], nodes[j]); d < bestDist {
					bestI, bestJ, bestDist = i, j, d
				}
			}
		}

		merged := &dendroNode{
			members: append(append([]int{}, nodes[bestI].members...), nodes[bestJ].members...),
			left:    nodes[bestI],
			right:   nodes[bestJ],
			height:  bestDist,
		}
		nodes[bestJ] = nodes[len(nodes)-1]
		nodes = nodes[:len(nodes)-1]
		nodes[bestI] = merged
	}
	return nodes[0]
}

func toTreeData(n *dendroNode) *opts.TreeData {
	if n.left == nil {
		return &opts.TreeData{Name: n.name}
	}
	return &opts.TreeData{
		Name:     fmt.Sprintf("d=%.3f", n.height),
		Children: []*opts.TreeData{toTreeData(n.left), toTreeData(n.right)},
	}
}

// Clustering writes an HTML page visualizing the platform merge tree.
// It is the dendrogram counterpart of the summary report: platforms
// that merge at low heights compile mostly the same code.
func Clustering(w io.Writer, title string, platforms []string, lineMap walkers.LineMap) error {
	if len(platforms) < 2 {
		return errors.Newf("clustering requires at least two platforms, got %d", len(platforms))
	}

	root := toTreeData(cluster(platforms, Distances(platforms, lineMap)))

	chart := charts.NewTree()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "900px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Platform clustering",
			Subtitle: "Average-linkage clustering of pairwise divergence distances",
		}),
	)
	chart.AddSeries("clusters", []opts.TreeData{*root})

	if err := chart.Render(w); err != nil {
		return errors.Wrap(err, "rendering clustering chart")
	}
	return nil
}

// ClusteringFilename derives the output file name for a project.
func ClusteringFilename(project string) string {
	return strings.TrimSpace(project) + "-dendrogram.html"
}
