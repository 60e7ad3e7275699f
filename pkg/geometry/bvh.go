package geometry

import (
	"errors"
	"math"
	"time"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// ErrNoPrimitives is returned by Build for an empty primitive list. The
// returned hierarchy is still usable and never reports a hit.
var ErrNoPrimitives = errors.New("no primitives to build hierarchy from")

// BuildConfig controls the binned SAH builder
type BuildConfig struct {
	Bins          int // Candidate bins along the split axis
	LeafThreshold int // Nodes with fewer primitives become leaves
	MinSplitCount int // Minimum primitives on each side of a split
}

// DefaultBuildConfig returns the reference builder settings
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		Bins:          8,
		LeafThreshold: 3,
		MinSplitCount: 3,
	}
}

func (c BuildConfig) sanitized() BuildConfig {
	def := DefaultBuildConfig()
	if c.Bins < 2 {
		c.Bins = def.Bins
	}
	if c.LeafThreshold < 1 {
		c.LeafThreshold = def.LeafThreshold
	}
	if c.MinSplitCount < 1 {
		c.MinSplitCount = 1
	}
	return c
}

// BVHNode is a node record in the flat node pool.
// Start and Count always describe the node's range in the index array.
// Left is the pool slot of the first child (the second is Left+1);
// it is 0 for leaves since the root occupies slot 0.
type BVHNode struct {
	Bounds core.AABB
	Start  int
	Count  int
	Left   int
}

// IsLeaf reports whether the node has no children
func (n BVHNode) IsLeaf() bool {
	return n.Left == 0
}

// BVH is a bounding volume hierarchy over a mesh's triangles.
// It is read-only after Build and safe for concurrent traversal.
type BVH struct {
	Primitives []Triangle
	Indices    []int
	Nodes      []BVHNode
	BuildTime  time.Duration

	config    BuildConfig
	bounds    []core.AABB
	centroids []core.Vec3
	used      int
}

// BVHStats summarizes the shape of a built hierarchy
type BVHStats struct {
	Nodes       int
	Leaves      int
	MaxDepth    int
	MaxLeafSize int
}

// Build constructs a hierarchy over a copy of prims using the binned surface
// area heuristic
func Build(prims []Triangle, config BuildConfig) (*BVH, error) {
	start := time.Now()
	b := &BVH{config: config.sanitized()}
	if len(prims) == 0 {
		return b, ErrNoPrimitives
	}

	n := len(prims)
	b.Primitives = make([]Triangle, n)
	copy(b.Primitives, prims)

	b.Indices = make([]int, n)
	b.bounds = make([]core.AABB, n)
	b.centroids = make([]core.Vec3, n)
	for i, tri := range b.Primitives {
		b.Indices[i] = i
		b.bounds[i] = tri.Bounds()
		b.centroids[i] = tri.Centroid()
	}

	b.Nodes = make([]BVHNode, 2*n-1)
	b.Nodes[0] = BVHNode{Start: 0, Count: n}
	b.used = 1
	b.subdivide(0)

	b.Nodes = b.Nodes[:b.used]
	b.bounds = nil
	b.centroids = nil
	b.BuildTime = time.Since(start)
	return b, nil
}

// rangeBounds returns the union of primitive bounds and the bounds of the
// primitive centroids over an index range
func (b *BVH) rangeBounds(start, count int) (voxel, centroid core.AABB) {
	voxel = core.EmptyAABB()
	centroid = core.EmptyAABB()
	for _, idx := range b.Indices[start : start+count] {
		voxel = voxel.Union(b.bounds[idx])
		centroid = centroid.Extend(b.centroids[idx])
	}
	return voxel, centroid
}

type sahBin struct {
	bounds core.AABB
	count  int
}

func (b *BVH) subdivide(nodeIdx int) {
	node := &b.Nodes[nodeIdx]
	voxel, centroidBounds := b.rangeBounds(node.Start, node.Count)
	node.Bounds = voxel

	if node.Count < b.config.LeafThreshold {
		return
	}

	axis := centroidBounds.LongestAxis()
	lo := centroidBounds.Min.Axis(axis)
	extent := centroidBounds.Max.Axis(axis) - lo
	if extent <= 0 {
		// All centroids coincide, no plane can separate them
		return
	}

	k := b.config.Bins
	binOf := func(primIdx int) int {
		bin := int(float64(k) * (b.centroids[primIdx].Axis(axis) - lo) / extent)
		if bin >= k {
			bin = k - 1
		}
		if bin < 0 {
			bin = 0
		}
		return bin
	}

	bins := make([]sahBin, k)
	for i := range bins {
		bins[i].bounds = core.EmptyAABB()
	}
	for _, idx := range b.Indices[node.Start : node.Start+node.Count] {
		bin := &bins[binOf(idx)]
		bin.count++
		bin.bounds = bin.bounds.Union(b.bounds[idx])
	}

	// Sweep from both ends; plane p separates bins [0..p] from [p+1..k-1]
	leftArea := make([]float64, k-1)
	leftCount := make([]int, k-1)
	rightArea := make([]float64, k-1)
	rightCount := make([]int, k-1)

	box := core.EmptyAABB()
	count := 0
	for p := 0; p < k-1; p++ {
		box = box.Union(bins[p].bounds)
		count += bins[p].count
		leftArea[p] = box.SurfaceArea()
		leftCount[p] = count
	}
	box = core.EmptyAABB()
	count = 0
	for p := k - 1; p > 0; p-- {
		box = box.Union(bins[p].bounds)
		count += bins[p].count
		rightArea[p-1] = box.SurfaceArea()
		rightCount[p-1] = count
	}

	bestPlane := -1
	bestCost := math.Inf(1)
	for p := 0; p < k-1; p++ {
		cost := float64(leftCount[p])*leftArea[p] + float64(rightCount[p])*rightArea[p]
		if cost < bestCost {
			bestCost = cost
			bestPlane = p
		}
	}

	leafCost := float64(node.Count) * voxel.SurfaceArea()
	if bestPlane < 0 || bestCost >= leafCost {
		return
	}
	if leftCount[bestPlane] < b.config.MinSplitCount || rightCount[bestPlane] < b.config.MinSplitCount {
		return
	}

	// In-place partition of the index range
	i := node.Start
	j := node.Start + node.Count - 1
	for i <= j {
		if binOf(b.Indices[i]) <= bestPlane {
			i++
		} else {
			b.Indices[i], b.Indices[j] = b.Indices[j], b.Indices[i]
			j--
		}
	}
	nLeft := i - node.Start

	left := b.used
	b.used += 2
	b.Nodes[left] = BVHNode{Start: node.Start, Count: nLeft}
	b.Nodes[left+1] = BVHNode{Start: node.Start + nLeft, Count: node.Count - nLeft}
	node.Left = left

	b.subdivide(left)
	b.subdivide(left + 1)
}

// Root returns the root node, or false for an empty hierarchy
func (b *BVH) Root() (BVHNode, bool) {
	if b == nil || len(b.Nodes) == 0 {
		return BVHNode{}, false
	}
	return b.Nodes[0], true
}

// Leaf returns the primitive indices covered by node
func (b *BVH) Leaf(node BVHNode) []int {
	return b.Indices[node.Start : node.Start+node.Count]
}

// Intersect returns every leaf whose bounds the ray enters. It does not
// resolve the closest primitive.
func (b *BVH) Intersect(ray core.Ray) []BVHNode {
	return b.IntersectInto(ray, nil)
}

// IntersectInto appends the candidate leaves for ray to dst
func (b *BVH) IntersectInto(ray core.Ray, dst []BVHNode) []BVHNode {
	if b == nil || len(b.Nodes) == 0 {
		return dst
	}

	invDir := ray.Direction.Inverse()
	var buf [64]int
	stack := append(buf[:0], 0)
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := b.Nodes[idx]
		if _, _, hit := node.Bounds.IntersectRay(ray.Origin, invDir); !hit {
			continue
		}
		if node.IsLeaf() {
			dst = append(dst, node)
			continue
		}
		stack = append(stack, node.Left+1, node.Left)
	}
	return dst
}

// Closest returns the nearest triangle hit closer than tMax and its index in
// Primitives, or (+Inf, -1)
func (b *BVH) Closest(ray core.Ray, tMax float64) (float64, int) {
	var buf [32]BVHNode
	leaves := b.IntersectInto(ray, buf[:0])

	bestT := math.Inf(1)
	bestIdx := -1
	for _, leaf := range leaves {
		for _, idx := range b.Leaf(leaf) {
			t := b.Primitives[idx].Intersect(ray)
			if t < bestT && t < tMax {
				bestT = t
				bestIdx = idx
			}
		}
	}
	return bestT, bestIdx
}

// Occluded reports whether any triangle is hit closer than tMax
func (b *BVH) Occluded(ray core.Ray, tMax float64) bool {
	var buf [32]BVHNode
	for _, leaf := range b.IntersectInto(ray, buf[:0]) {
		for _, idx := range b.Leaf(leaf) {
			if b.Primitives[idx].Intersect(ray) < tMax {
				return true
			}
		}
	}
	return false
}

// Stats walks the hierarchy and reports its shape
func (b *BVH) Stats() BVHStats {
	var stats BVHStats
	if b == nil || len(b.Nodes) == 0 {
		return stats
	}
	b.collectStats(0, 1, &stats)
	return stats
}

func (b *BVH) collectStats(idx, depth int, stats *BVHStats) {
	node := b.Nodes[idx]
	stats.Nodes++
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}
	if node.IsLeaf() {
		stats.Leaves++
		if node.Count > stats.MaxLeafSize {
			stats.MaxLeafSize = node.Count
		}
		return
	}
	b.collectStats(node.Left, depth+1, stats)
	b.collectStats(node.Left+1, depth+1, stats)
}
