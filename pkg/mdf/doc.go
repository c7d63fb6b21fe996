// Package mdf reads and writes material definition files (.mdf2.<rev>).
//
// A material file is a header followed by one fixed-size header per
// material. Each material header points at its own texture, parameter and
// GPU-buffer tables, and all names share one de-duplicated UTF-16 string
// pool. Parameter values live in a separate float block per material.
//
// The revision is not stored in the file; it comes from the numeric suffix
// of the file name (RevisionFromPath). Which fields exist at a revision is
// decided by one table, see Has and Gates.
//
//	rev, ok := mdf.RevisionFromPath("mat/body.mdf2.31")
//	f, err := mdf.Decode(data, rev, nil)
//	f.Materials[0].Flags = f.Materials[0].Flags.WithPriorityBias(rev, -2)
//	out, err := mdf.Encode(f, nil)
//
// Counts, sizes and hashes in the material headers are always derived from
// the live lists when encoding; decoded values are informational only.
package mdf
