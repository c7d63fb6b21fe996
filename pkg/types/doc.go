// Package types holds the error taxonomy and resource limits shared by the
// asset codecs.
//
// Every decode or encode failure is reported as an *Error carrying one of a
// small, stable set of kinds (bad magic, truncated buffer, unsupported type,
// limit exceeded, invalid offset, invalid graph). Callers branch on the kind
// with errors.Is against the exported sentinels:
//
//	c, err := uvar.Decode(data, nil)
//	if errors.Is(err, types.ErrTruncated) {
//	    // short read
//	}
//
// This package has no dependencies beyond the standard library.
package types
