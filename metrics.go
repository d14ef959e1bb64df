package ipmatch

// Metrics records membership and resolution outcomes emitted by Matcher and
// Resolver.
//
// Implementations should be safe for concurrent use.
type Metrics interface {
	// RecordRangeCheck is called once per membership check with result
	// "match", "no_match" or "rejected" (candidate or range list unusable).
	RecordRangeCheck(result string)
	// RecordRangeSkipped is called for every range token skipped while
	// parsing a range list.
	RecordRangeSkipped(reason string)
	// RecordResolution is called once per client address resolution with the
	// winning source and result "resolved" or "empty".
	RecordResolution(source, result string)
	// RecordSecurityEvent is called when a security-relevant condition is
	// observed.
	RecordSecurityEvent(event string)
}

// noopMetrics is the default Metrics implementation when metrics are not
// explicitly configured.
type noopMetrics struct{}

func (noopMetrics) RecordRangeCheck(string) {}

func (noopMetrics) RecordRangeSkipped(string) {}

func (noopMetrics) RecordResolution(string, string) {}

func (noopMetrics) RecordSecurityEvent(string) {}
