package domain

// NotAvailable stands in for metadata the export does not carry.
const NotAvailable = "N/A"

// Metadata describes where and when a turbine's samples were recorded. It is
// what archive filenames and chart titles are built from.
type Metadata struct {
	Site     string `json:"site"`
	Customer string `json:"customer"`
	Week     Week   `json:"week"`
}

// TurbineGroup holds all records of one turbine together with the attributes
// derived from them.
type TurbineGroup struct {
	Turbine string
	Model   string
	Metadata

	// HasValidity is true when the export carried a validity column.
	HasValidity bool
	Records     []Record
}

// OperatingPoints returns the records that carry both wind speed and power.
func (g TurbineGroup) OperatingPoints() []Record {
	out := make([]Record, 0, len(g.Records))
	for _, r := range g.Records {
		if r.HasOperatingPoint() {
			out = append(out, r)
		}
	}
	return out
}

// GroupTurbines partitions the dataset by turbine identifier. Groups are returned
// in the order their identifier first appears. For each group the first
// non-blank model, site, customer and week is authoritative; columns absent from
// the export yield NotAvailable. An empty dataset yields an empty slice.
func GroupTurbines(ds Dataset) []TurbineGroup {
	index := make(map[string]int)
	var groups []TurbineGroup
	for _, rec := range ds.Records {
		i, ok := index[rec.Turbine]
		if !ok {
			i = len(groups)
			index[rec.Turbine] = i
			groups = append(groups, TurbineGroup{Turbine: rec.Turbine, HasValidity: ds.Schema.HasValidity})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}

	for i := range groups {
		g := &groups[i]
		g.Model = firstValue(g.Records, true, func(r Record) string { return r.Model })
		g.Site = firstValue(g.Records, ds.Schema.HasSite, func(r Record) string { return r.Site })
		g.Customer = firstValue(g.Records, ds.Schema.HasCustomer, func(r Record) string { return r.Customer })
		g.Week = CoerceWeek(firstValue(g.Records, ds.Schema.HasWeek, func(r Record) string { return r.Week }))
	}
	return groups
}

func firstValue(records []Record, present bool, field func(Record) string) string {
	if !present {
		return NotAvailable
	}
	for _, r := range records {
		if v := field(r); v != "" {
			return v
		}
	}
	return NotAvailable
}
