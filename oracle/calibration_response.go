package oracle

// CalibrationResponse captures the parts of an HTTP response relevant to
// deciding whether the padding was valid: status code, an optional
// Location header, and — only when considerBody is set — the response body
// and content length. It is a plain comparable value (no pointers or
// slices) so it can be used directly as a map key when counting frequencies
// during calibration (spec §4.5) and as part of the cache's outer key
// (spec §4.9).
type CalibrationResponse struct {
	Status int

	HasLocation bool
	Location    string

	ConsiderBody     bool
	Body             string
	HasContentLength bool
	ContentLength    int64
}
