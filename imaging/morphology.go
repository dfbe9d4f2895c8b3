// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package imaging

import "github.com/ctapipe-go/airshower/camera"

type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range u.parent {
		u.parent[i] = i
		u.size[i] = 1
	}
	return u
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.size[ra] < u.size[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	u.size[ra] += u.size[rb]
}

// ComputeMorphology runs a union-find connected-component analysis over
// the masked pixels using edges from the camera's neighbor graph, then
// classifies each island by pixel count (§4.2): singletons and islands of
// 2-5 pixels are small, 6-50 are medium, and larger islands are large.
func ComputeMorphology(g *camera.Geometry, mask []bool) Morphology {
	n := len(mask)
	uf := newUnionFind(n)
	for i, in := range mask {
		if !in {
			continue
		}
		for _, j := range g.Neighbors(i) {
			if mask[j] {
				uf.union(i, int(j))
			}
		}
	}

	sizes := map[int]int{}
	for i, in := range mask {
		if !in {
			continue
		}
		sizes[uf.find(i)]++
	}

	m := Morphology{NPixels: camera.Count(mask), NIslands: len(sizes)}
	for _, size := range sizes {
		switch {
		case size <= 5:
			m.NSmallIslands++
		case size <= 50:
			m.NMediumIslands++
		default:
			m.NLargeIslands++
		}
	}
	return m
}
