package telemetry

type resultStatus int

const (
	statusSuccess resultStatus = iota
	statusUnavailable
	statusError
)

// ProbeResult is the outcome of a single probe invocation. Every failure mode
// is captured as data; nothing crosses the resolver boundary as a Go error.
type ProbeResult struct {
	status    resultStatus
	values    []float64
	estimated bool
	reason    string
	err       error
}

// Success wraps a single measured value.
func Success(value float64) ProbeResult {
	return ProbeResult{status: statusSuccess, values: []float64{value}}
}

// SuccessVector wraps one reading per device, e.g. per-GPU temperatures from
// a single vendor CLI call. An empty vector is Unavailable.
func SuccessVector(values []float64) ProbeResult {
	if len(values) == 0 {
		return Unavailable("no readings")
	}

	return ProbeResult{status: statusSuccess, values: values}
}

// Synthetic wraps a load-derived estimate produced when every ranked probe
// was unavailable.
func Synthetic(value float64) ProbeResult {
	return ProbeResult{status: statusSuccess, values: []float64{value}, estimated: true}
}

// Unavailable marks an expected, routine miss: no device, no driver, tool not
// on PATH, probe timed out.
func Unavailable(reason string) ProbeResult {
	return ProbeResult{status: statusUnavailable, reason: reason}
}

// Failure marks an unexpected probe error. The resolver treats it like
// Unavailable but keeps the cause for debug logging.
func Failure(err error) ProbeResult {
	return ProbeResult{status: statusError, err: err}
}

func (r ProbeResult) OK() bool {
	return r.status == statusSuccess
}

func (r ProbeResult) IsUnavailable() bool {
	return r.status == statusUnavailable
}

func (r ProbeResult) Failed() bool {
	return r.status == statusError
}

func (r ProbeResult) IsSynthetic() bool {
	return r.estimated
}

// Value returns the representative reading: the maximum across the vector,
// so the hottest card governs displayed status.
func (r ProbeResult) Value() float64 {
	if len(r.values) == 0 {
		return 0
	}

	maxVal := r.values[0]
	for _, v := range r.values[1:] {
		if v > maxVal {
			maxVal = v
		}
	}

	return maxVal
}

// Values returns the full per-device vector for detail views.
func (r ProbeResult) Values() []float64 {
	return r.values
}

func (r ProbeResult) Reason() string {
	if r.status == statusError && r.err != nil {
		return r.err.Error()
	}

	return r.reason
}

func (r ProbeResult) Err() error {
	return r.err
}

// Sample converts a successful result into a MetricSample for the given
// metric, preserving the estimated flag.
func (r ProbeResult) Sample(metric Metric) MetricSample {
	if r.estimated {
		return NewEstimatedSample(metric, r.Value())
	}

	return NewSample(metric, r.Value())
}
