// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

// Merge concatenates lists in priority order, keeps the first occurrence of
// each ProdID and truncates the result to n items.
func Merge(n int, lists ...List) List {
	if n <= 0 {
		return List{}
	}

	total := 0
	for _, l := range lists {
		total += len(l)
	}

	out := make(List, 0, min(n, total))
	seen := make(map[string]struct{}, total)
	for _, l := range lists {
		for _, it := range l {
			if len(out) == n {
				return out
			}
			if _, dup := seen[it.Product.ProdID]; dup {
				continue
			}
			seen[it.Product.ProdID] = struct{}{}
			out = append(out, it)
		}
	}
	return out
}
