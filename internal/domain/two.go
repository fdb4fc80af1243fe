package domain

// TwoFile is the parsed Tropical Weather Outlook, keyed by basin name
// ("atlantic", "eastPacific", ...).
type TwoFile struct {
	Basins map[string]*TwoBasin `json:"basins"`
}

// TwoBasin is one basin's outlook block.
type TwoBasin struct {
	IssuedOn *IssuedOn `json:"issuedOn"`
	Areas    []TwoArea `json:"areas"`
}

// IssuedOn holds the basin's issuance time.
type IssuedOn struct {
	ISO Timestamp `json:"iso"`
}

// TwoArea is one watched disturbance area.
type TwoArea struct {
	ID       string   `json:"id,omitempty"`
	Title    string   `json:"title"`
	TwoDay   *Outlook `json:"twoDay"`
	SevenDay *Outlook `json:"sevenDay"`
}

// Outlook is a formation probability. A nil Outlook means unknown.
type Outlook struct {
	Chance int `json:"chance"`
}
