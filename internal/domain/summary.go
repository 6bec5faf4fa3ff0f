package domain

// TurbineCount is the number of records one turbine contributed under one model.
type TurbineCount struct {
	Turbine string `json:"turbine"`
	Model   string `json:"model"`
	Records int    `json:"records"`
}

// Summary is the overview shown before charts are generated.
type Summary struct {
	TotalRecords   int            `json:"total_records"`
	UniqueTurbines int            `json:"unique_turbines"`
	UniqueModels   int            `json:"unique_models"`
	SkippedRows    int            `json:"skipped_rows"`
	Turbines       []TurbineCount `json:"turbines"`
}

// Summarize counts records per (turbine, model) pair in first-seen order.
// Blank model cells are not counted as a model.
func Summarize(ds Dataset) Summary {
	type key struct{ turbine, model string }
	index := make(map[key]int)
	turbines := make(map[string]struct{})
	models := make(map[string]struct{})

	s := Summary{TotalRecords: len(ds.Records), SkippedRows: ds.SkippedRows}
	for _, r := range ds.Records {
		turbines[r.Turbine] = struct{}{}
		if r.Model != "" {
			models[r.Model] = struct{}{}
		}
		k := key{r.Turbine, r.Model}
		i, ok := index[k]
		if !ok {
			i = len(s.Turbines)
			index[k] = i
			s.Turbines = append(s.Turbines, TurbineCount{Turbine: r.Turbine, Model: r.Model})
		}
		s.Turbines[i].Records++
	}
	s.UniqueTurbines = len(turbines)
	s.UniqueModels = len(models)
	return s
}
