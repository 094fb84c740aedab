package pipeline

import (
	"maps"
	"slices"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
)

// mergeBindGroupLayouts unions the per-group entries of several stages. Entries sharing a binding
// index have their visibility flags combined; the first stage's entry supplies the buffer layout.
func mergeBindGroupLayouts(stages ...map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	byGroup := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	labels := make(map[int]string)

	for _, stage := range stages {
		for g, desc := range stage {
			if byGroup[g] == nil {
				byGroup[g] = make(map[uint32]wgpu.BindGroupLayoutEntry)
				labels[g] = desc.Label
			}
			for _, e := range desc.Entries {
				if prev, ok := byGroup[g][e.Binding]; ok {
					prev.Visibility |= e.Visibility
					e = prev
				}
				byGroup[g][e.Binding] = e
			}
		}
	}

	merged := make(map[int]wgpu.BindGroupLayoutDescriptor, len(byGroup))
	for g, entries := range byGroup {
		list := slices.Collect(maps.Values(entries))
		sort.Slice(list, func(i, j int) bool { return list[i].Binding < list[j].Binding })
		merged[g] = wgpu.BindGroupLayoutDescriptor{Label: labels[g], Entries: list}
	}
	return merged
}

// MaxGroup returns the highest group index in layouts, or -1 when there are none.
func MaxGroup(layouts map[int]wgpu.BindGroupLayoutDescriptor) int {
	highest := -1
	for g := range layouts {
		highest = max(highest, g)
	}
	return highest
}
