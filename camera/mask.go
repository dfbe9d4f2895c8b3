// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package camera

// NeighborsOf returns the set of pixels adjacent to at least one pixel in
// mask: {i : |N(i) ∩ mask| > 0}. Implemented as a sparse adjacency-list
// walk (equivalent to a neighbor-matrix·vector product) rather than a
// dense N×N scan.
func NeighborsOf(g *Geometry, mask []bool) []bool {
	out := make([]bool, len(mask))
	for i, in := range mask {
		if !in {
			continue
		}
		for _, j := range g.Neighbors(i) {
			out[j] = true
		}
	}
	return out
}

// Dilate returns mask ∪ NeighborsOf(mask).
func Dilate(g *Geometry, mask []bool) []bool {
	out := NeighborsOf(g, mask)
	for i, in := range mask {
		if in {
			out[i] = true
		}
	}
	return out
}

// NeighborCountInSet counts how many of pixel i's neighbors are set in set.
func NeighborCountInSet(g *Geometry, i int, set []bool) int {
	count := 0
	for _, j := range g.Neighbors(i) {
		if set[j] {
			count++
		}
	}
	return count
}

// And returns the elementwise conjunction of a and b.
func And(a, b []bool) []bool {
	out := make([]bool, len(a))
	for i := range a {
		out[i] = a[i] && b[i]
	}
	return out
}

// Or returns the elementwise disjunction of a and b.
func Or(a, b []bool) []bool {
	out := make([]bool, len(a))
	for i := range a {
		out[i] = a[i] || b[i]
	}
	return out
}

// Count returns the number of true entries in mask.
func Count(mask []bool) int {
	n := 0
	for _, v := range mask {
		if v {
			n++
		}
	}
	return n
}
