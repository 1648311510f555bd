package domain

// Sentinels assigned when a region code is not in the lookup table. They are
// ordinary values downstream, never an error condition.
const (
	UndefinedDivision        = "Undefined Division"
	UndefinedOperationalUnit = "Undefined Unit"
)

// RegionAssignment is the administrative placement of a region code.
type RegionAssignment struct {
	Division        string
	OperationalUnit string
}

// RegionLookup resolves a region code to its division and operational unit.
type RegionLookup interface {
	Locate(region string) (RegionAssignment, bool)
}

// StaticRegionLookup is a fixed in-memory lookup table.
type StaticRegionLookup map[string]RegionAssignment

// Locate implements RegionLookup.
func (l StaticRegionLookup) Locate(region string) (RegionAssignment, bool) {
	assignment, ok := l[region]
	return assignment, ok
}

// DefaultRegionLookup returns the current national division table.
func DefaultRegionLookup() StaticRegionLookup {
	table := StaticRegionLookup{}
	assign := func(division, unit string, regions ...string) {
		for _, region := range regions {
			table[region] = RegionAssignment{Division: division, OperationalUnit: unit}
		}
	}
	assign("DIV 01", "GO 01", "AL", "PB", "PE", "RN")
	assign("DIV 02", "GO 01", "BA", "SE")
	assign("DIV 03", "GO 01", "MA", "PI", "CE")
	assign("DIV 04", "GO 02", "AP", "PA")
	assign("DIV 05", "GO 02", "AM", "RO", "RR", "AC")
	assign("DIV 06", "GO 02", "DF", "GO")
	assign("DIV 07", "GO 02", "MT", "MS")
	assign("DIV 08", "GO 03", "SP")
	assign("DIV 09", "GO 03", "RJ", "MG")
	assign("DIV 10", "GO 03", "ES", "PR", "SC", "RS")
	return table
}
