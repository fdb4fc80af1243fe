package domain

// InvestName is the placeholder the ATCF parser uses for systems that have
// not been named yet.
const InvestName = "INVEST"

// Wind radii codes emitted by the ATCF parser.
const (
	RadiiAsymmetric = "AAA" // single radius, NE quadrant carries the value
	RadiiQuadrant   = "NEQ" // full NE/SE/SW/NW quadrant radii
)

// AtcfFile is the parsed ATCF deck for one system. Data is ordered newest
// first: Data[0] is the current record, Data[1] the previous advisory.
type AtcfFile struct {
	Data []AtcfRecord `json:"data"`
}

// Current returns the newest record, or nil for an empty deck.
func (f *AtcfFile) Current() *AtcfRecord {
	if f == nil || len(f.Data) == 0 {
		return nil
	}
	return &f.Data[0]
}

// Previous returns the second-newest record, or nil if there is no history.
func (f *AtcfFile) Previous() *AtcfRecord {
	if f == nil || len(f.Data) < 2 {
		return nil
	}
	return &f.Data[1]
}

// AtcfRecord is one advisory line. Optional numeric fields are pointers so
// an absent value is distinguishable from zero.
type AtcfRecord struct {
	Basin string `json:"basin"`
	GenNo int    `json:"genNo"`
	Level string `json:"level"`
	Name  string `json:"name"`

	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`

	MaxSusWind *int `json:"maxSusWind"`
	WindGust   *int `json:"windGust"`
	MaxWindRad *int `json:"maxWindRad"`

	MinSeaLevelPsur *int `json:"minSeaLevelPsur"`
	OuterPsur       *int `json:"outerPsur"`
	OuterRad        *int `json:"outerRad"`

	Depth string `json:"depth"`

	WindRad *WindRadii `json:"windRad"`
	EyeDia  *int       `json:"eyeDia"`

	Invest *InvestSpawn `json:"invest"`
	Trans  *Transition  `json:"trans"`
	Diss   *Dissipation `json:"diss"`

	Date Timestamp `json:"date"`
}

// WindRadii carries the wind radius intensity and, depending on Code, either
// a single asymmetric radius or per-quadrant radii.
type WindRadii struct {
	Code string `json:"code"`
	Rad  *int   `json:"rad"`
	NE   *int   `json:"ne"`
	SE   *int   `json:"se"`
	SW   *int   `json:"sw"`
	NW   *int   `json:"nw"`
}

// InvestSpawn marks a genesis area that was assigned an invest number.
type InvestSpawn struct {
	To InvestRef `json:"to"`
}

// InvestRef identifies an invest within its basin, e.g. "95" for AL95.
type InvestRef struct {
	ID string `json:"id"`
}

// Transition marks an invest or disturbance upgraded to a numbered system.
type Transition struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Dissipation marks the final advisory for a system.
type Dissipation struct {
	Date Timestamp `json:"date,omitempty"`
}
