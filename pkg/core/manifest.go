package core

// TimeSpine describes a time spine table and the custom granularities it defines.
type TimeSpine struct {
	Name                string
	PrimaryGranularity  TimeGranularity
	CustomGranularities []CustomGranularity
}

// ProjectConfiguration holds manifest-wide settings.
type ProjectConfiguration struct {
	TimeSpines []TimeSpine
}

// Manifest is a frozen semantic manifest: every semantic model and metric of a project.
type Manifest struct {
	SemanticModels       []*SemanticModel
	Metrics              []*Metric
	ProjectConfiguration ProjectConfiguration
}

// CustomGranularities returns every custom granularity configured on any time spine.
func (m *Manifest) CustomGranularities() []CustomGranularity {
	var grains []CustomGranularity
	for _, spine := range m.ProjectConfiguration.TimeSpines {
		grains = append(grains, spine.CustomGranularities...)
	}
	return grains
}

// MinTimeSpineGranularity returns the finest primary grain among the time spines.
// Returns false when no time spine is configured.
func (m *Manifest) MinTimeSpineGranularity() (TimeGranularity, bool) {
	if len(m.ProjectConfiguration.TimeSpines) == 0 {
		return GranularityDay, false
	}
	minGrain := m.ProjectConfiguration.TimeSpines[0].PrimaryGranularity
	for _, spine := range m.ProjectConfiguration.TimeSpines[1:] {
		minGrain = min(minGrain, spine.PrimaryGranularity)
	}
	return minGrain, true
}
