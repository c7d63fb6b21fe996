package mdf

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joshuapare/reasset/internal/buf"
)

// Plausible reports whether data looks like a material file at revision
// rev. It checks the header, every material header's offsets and table
// extents, GPU-buffer count parity and the name hashes, without following
// strings beyond the material names.
func Plausible(data []byte, rev int) bool {
	c := buf.NewReader(data)
	var f File
	count, err := readFileHeader(c, &f)
	if err != nil {
		return false
	}
	if _, err := buf.CheckTable(len(data), c.Tell(), count, materialHeaderSize(rev)); err != nil {
		return false
	}
	for range count {
		h, err := readHeader(c, rev)
		if err != nil || !headerPlausible(c, h, rev) {
			return false
		}
	}
	return true
}

func extentOK(size int, off uint64, count int32, rec int) bool {
	if off == 0 || count < 0 {
		return true
	}
	_, err := buf.CheckTable(size, int(min(off, uint64(size)+1)), int(count), rec)
	return err == nil
}

func headerPlausible(c *buf.Cursor, h header, rev int) bool {
	size := c.Len()
	if Has(rev, FieldGPUBuffers) && h.gpbNameCount != h.gpbDataCount {
		return false
	}
	for _, off := range []uint64{h.texHdrOff, h.paramHdrOff, h.gpbOff} {
		if off != 0 && !c.InBounds(off) {
			return false
		}
	}
	if !extentOK(size, h.texHdrOff, h.texCount, textureSize(rev)) ||
		!extentOK(size, h.paramHdrOff, h.paramCount, paramRecordSize) ||
		!extentOK(size, h.gpbOff, h.gpbNameCount, gpuBufferRecordSize) {
		return false
	}
	if h.paramsSize >= 0 {
		if h.paramCount == 0 && h.paramsSize == 0 {
			if h.paramsOff > uint64(size) {
				return false
			}
		} else {
			if !c.InBounds(h.paramsOff) || h.paramsOff+uint64(h.paramsSize) > uint64(size) {
				return false
			}
		}
	}
	name, err := readString(c, h.nameOff)
	if err != nil {
		return false
	}
	return name == "" || h.nameHash != 0
}

// RevisionFromPath returns the revision encoded in a material file name
// such as "body.mdf2.31".
func RevisionFromPath(path string) (int, bool) {
	base := strings.ToLower(filepath.Base(path))
	i := strings.LastIndexByte(base, '.')
	if i < 0 || !strings.HasSuffix(base[:i], ".mdf2") {
		return 0, false
	}
	rev, err := strconv.Atoi(base[i+1:])
	if err != nil || rev < 0 {
		return 0, false
	}
	return rev, true
}

// KnownRevisions lists the revisions seen in released files, newest first.
var KnownRevisions = []int{32, 31, 23, 21, 19, 13, 10, 6}

// GuessRevision returns the first of KnownRevisions at which data is
// plausible. Revisions sharing a layout are indistinguishable, so the
// result is only meaningful for decoding, not as a version label.
func GuessRevision(data []byte) (int, bool) {
	for _, rev := range KnownRevisions {
		if Plausible(data, rev) {
			return rev, true
		}
	}
	return 0, false
}
