package ipmatch

const (
	securityEventChainTooLong    = "chain_too_long"
	securityEventInvalidIP       = "invalid_ip"
	securityEventOverrideIgnored = "override_ignored"
	securityEventUnspecifiedIP   = "unspecified_ip"
	securityEventMalformedRange  = "malformed_range"
)

const (
	checkResultMatch    = "match"
	checkResultNoMatch  = "no_match"
	checkResultRejected = "rejected"

	resolveResultResolved = "resolved"
	resolveResultEmpty    = "empty"
)
