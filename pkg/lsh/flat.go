package lsh

import "sort"

// BruteForceRangeSearch is the exact O(n) ground-truth comparator for
// LSHIndex.Query: it returns every PointID whose Euclidean distance to q
// is at most r, ascending by PointID. Adapted from the teacher's
// FlatIndex.RangeSearch; used by this package's tests as the recall
// oracle, never by the index itself.
func BruteForceRangeSearch(points [][]float64, q []float64, r float64) []PointID {
	var out []PointID
	for i, p := range points {
		if euclideanDistance(p, q) <= r {
			out = append(out, PointID(i))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
