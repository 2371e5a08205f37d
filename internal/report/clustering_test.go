package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divmap/internal/walkers"
)

// clusterMap has a and b compiling identical code while c diverges:
// d(a,b) = 0, d(a,c) = d(b,c) = 0.5.
func clusterMap() walkers.LineMap {
	return walkers.LineMap{
		walkers.NewPlatformSet("a", "b", "c"): 10,
		walkers.NewPlatformSet("a", "b"):      5,
		walkers.NewPlatformSet("c"):           5,
	}
}

func TestDistances(t *testing.T) {
	t.Parallel()

	dist := Distances([]string{"a", "b", "c"}, clusterMap())

	assert.Equal(t, 0.0, dist[0][0])
	assert.Equal(t, 0.0, dist[0][1])
	assert.Equal(t, 0.5, dist[0][2])
	assert.Equal(t, 0.5, dist[1][2])
	assert.Equal(t, dist[2][0], dist[0][2], "distance must be symmetric")
}

// TestDistances_DisjointPlatforms verifies platforms sharing no lines
// are at distance 1.
func TestDistances_DisjointPlatforms(t *testing.T) {
	t.Parallel()

	lineMap := walkers.LineMap{
		walkers.NewPlatformSet("a"): 3,
		walkers.NewPlatformSet("b"): 7,
		walkers.EmptySet:            2,
	}
	dist := Distances([]string{"a", "b"}, lineMap)
	assert.Equal(t, 1.0, dist[0][1])
}

// TestCluster verifies the closest pair merges first and the outlier
// joins last at its average distance.
func TestCluster(t *testing.T) {
	t.Parallel()

	platforms := []string{"a", "b", "c"}
	root := cluster(platforms, Distances(platforms, clusterMap()))

	require.NotNil(t, root.left)
	require.NotNil(t, root.right)
	assert.Equal(t, 0.5, root.height)
	assert.ElementsMatch(t, []int{0, 1, 2}, root.members)

	// One child is the a/b cluster at height 0, the other is the c leaf.
	inner, leaf := root.left, root.right
	if inner.left == nil {
		inner, leaf = leaf, inner
	}
	assert.Equal(t, 0.0, inner.height)
	assert.ElementsMatch(t, []int{0, 1}, inner.members)
	assert.Equal(t, "c", leaf.name)
}

func TestDistanceMatrix(t *testing.T) {
	t.Parallel()

	platforms := []string{"a", "b", "c"}
	out := DistanceMatrix(platforms, Distances(platforms, clusterMap()))

	assert.Contains(t, out, "a")
	assert.Contains(t, out, "0.000")
	assert.Contains(t, out, "0.500")
}

func TestClustering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := Clustering(&buf, "demo", []string{"a", "b", "c"}, clusterMap())
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, `"a"`)
	assert.Contains(t, html, `"c"`)
	assert.Contains(t, html, "Platform clustering")
}

func TestClustering_RequiresTwoPlatforms(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := Clustering(&buf, "demo", []string{"solo"}, walkers.LineMap{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least two platforms")
}

func TestClusteringFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "demo-dendrogram.html", ClusteringFilename("demo"))
	assert.Equal(t, "demo-dendrogram.html", ClusteringFilename("  demo "))
}
