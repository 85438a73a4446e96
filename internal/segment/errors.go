package segment

import "fmt"

// The four error kinds are deliberately distinct types so the transport
// layer can map them to status codes without string matching: bad input
// is the caller's fault, everything else is a broken deployment.

// InputError reports a caller-supplied value that is missing, non-numeric,
// or outside the accepted range. Negative, NaN and infinite values are
// rejected: none of the three RFM signals has a meaningful value there.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

// ConfigError reports a missing or inconsistent business-rules entry.
// Rules validation catches these at load time; seeing one from Classify
// means a deployment shipped an unvalidated configuration.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("business rules %s: %s", e.Key, e.Reason)
}

// UnknownClusterError reports a clusterer index with no entry in the
// configured index-to-name table. This is a model/config version
// mismatch, never coerced to a default segment.
type UnknownClusterError struct {
	Index int
}

func (e *UnknownClusterError) Error() string {
	return fmt.Sprintf("cluster index %d has no segment mapping", e.Index)
}

// InferenceError wraps a scaler or clusterer failure during the
// clustering fallback. Stage is "scale" or "predict".
type InferenceError struct {
	Stage string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("model inference (%s): %v", e.Stage, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }
