package entity

type Engine string

const (
	EngineRod    Engine = "rod"
	EngineStatic Engine = "static"
)

type ScanStatus string

const (
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusFailed    ScanStatus = "failed"
)

// Target is one page to load and run the beacon against.
type Target struct {
	PageURL string
	Beacon  BeaconConfig
}

type ScanReport struct {
	PageURL string       `json:"page_url"`
	Status  ScanStatus   `json:"status"`
	Window  WindowSize   `json:"window"`
	Result  BeaconResult `json:"result"`
	Error   string       `json:"error,omitempty"`
}
