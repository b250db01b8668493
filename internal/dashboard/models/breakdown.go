package models

// DateRange adalah rentang tanggal kalender (YYYY-MM-DD). Kosong berarti tanpa
// batas di sisi tersebut; End inklusif sampai 23:59:59.999.
type DateRange struct {
	Start string `json:"start" query:"start"`
	End   string `json:"end" query:"end"`
}

// HasBothBounds reports whether both ends of the range are set.
func (r DateRange) HasBothBounds() bool {
	return r.Start != "" && r.End != ""
}

// BreakdownResult is the two-bucket appointment count shown on the dashboard.
type BreakdownResult struct {
	Test     int `json:"test"`
	Packages int `json:"packages"`
}

// Label is the bucket an appointment is classified into.
type Label string

const (
	LabelTest    Label = "test"
	LabelPackage Label = "package"
)

// Add increments the bucket for l.
func (b *BreakdownResult) Add(l Label) {
	switch l {
	case LabelPackage:
		b.Packages++
	default:
		b.Test++
	}
}

type ResolveState string

const (
	StateIdle      ResolveState = "idle"
	StateResolving ResolveState = "resolving"
	StateResolved  ResolveState = "resolved"
	StateDegraded  ResolveState = "degraded"
)

// Outcome is what one Resolve call produced. A superseded or cancelled
// outcome carries no result and was never applied.
type Outcome struct {
	BreakdownResult
	Range      DateRange    `json:"range"`
	Generation uint64       `json:"generation"`
	Superseded bool         `json:"superseded"`
	Cancelled  bool         `json:"cancelled,omitempty"`
	State      ResolveState `json:"state"`
}

// Applied reports whether the outcome reached the visible slot.
func (o Outcome) Applied() bool {
	return !o.Superseded && !o.Cancelled
}
