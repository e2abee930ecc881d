package enums

// ServiceabilityStatus is the outcome of a pincode delivery check.
type ServiceabilityStatus string

const (
	ServiceabilityServiceable    ServiceabilityStatus = "serviceable"
	ServiceabilityNotServiceable ServiceabilityStatus = "not_serviceable"
)

// ServiceabilityReason explains a not_serviceable outcome.
type ServiceabilityReason string

const (
	ReasonNoCoverage          ServiceabilityReason = "no-coverage"
	ReasonTemporarilyEmbargo  ServiceabilityReason = "temporarily-embargoed"
	ReasonCashOnlyUnsupported ServiceabilityReason = "cash-only-unsupported"
)

func (s ServiceabilityStatus) String() string { return string(s) }

func (r ServiceabilityReason) String() string { return string(r) }
