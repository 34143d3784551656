// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"math"
	"sort"
)

// Offline ranking-quality metrics. These evaluate recorded search sessions
// against known-relevant selections; nothing in the live pipeline depends
// on them.

// MeanReciprocalRank computes MRR from the 1-indexed positions where the
// selected result appeared. Non-positive positions are ignored.
func MeanReciprocalRank(positions []int) float64 {
	sum := 0.0
	n := 0
	for _, p := range positions {
		if p > 0 {
			sum += 1.0 / float64(p)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// PrecisionAtK returns the fraction of the top k retrieved IDs that are
// relevant.
func PrecisionAtK(relevant map[string]struct{}, retrieved []string, k int) float64 {
	if k <= 0 {
		return 0
	}
	if len(retrieved) > k {
		retrieved = retrieved[:k]
	}
	hits := 0
	for _, id := range retrieved {
		if _, ok := relevant[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

// DCGAtK computes discounted cumulative gain over relevance scores in
// rank order.
func DCGAtK(relevance []float64, k int) float64 {
	if k <= 0 {
		return 0
	}
	if k < len(relevance) {
		relevance = relevance[:k]
	}
	dcg := 0.0
	for i, rel := range relevance {
		dcg += (math.Pow(2, rel) - 1) / math.Log2(float64(i)+2)
	}
	return dcg
}

// NDCGAtK normalizes DCG@k by the ideal ordering's DCG, yielding a value
// in [0, 1].
func NDCGAtK(relevance []float64, k int) float64 {
	if k <= 0 {
		return 0
	}
	dcg := DCGAtK(relevance, k)

	ideal := append([]float64(nil), relevance...)
	sort.Sort(sort.Reverse(sort.Float64Slice(ideal)))
	idcg := DCGAtK(ideal, k)
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

// ClickThroughRate returns clicks over impressions, 0 when there are no
// impressions.
func ClickThroughRate(clicks, impressions int) float64 {
	if impressions <= 0 {
		return 0
	}
	return float64(clicks) / float64(impressions)
}
