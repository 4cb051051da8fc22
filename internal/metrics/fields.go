package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrMethod   = "method"
	AttrPath     = "path"
	AttrStatus   = "status"
	AttrProvider = "provider"
	AttrJob      = "job"
	AttrChannel  = "channel"
	AttrOutcome  = "outcome"
)
