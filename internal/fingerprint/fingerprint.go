// Package fingerprint derives the deterministic content digest that is
// anchored on the ledger for each reading.
//
// The canonical encoding is
//
//	sensor_id=<int>|timestamp=<unix seconds>|co2=<2dp>|temperature=<2dp>
//
// hashed with BLAKE2b-256 and rendered as lowercase hex. Anyone holding the
// four field values can recompute it without access to the reading store.
package fingerprint

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Size is the length of a fingerprint in hex characters.
const Size = blake2b.Size256 * 2

const (
	delimiter = "|"
	precision = 2
	version   = "v1"
)

// Fields is the semantic content of a reading.
type Fields struct {
	SensorID    int64
	Timestamp   time.Time
	CO2         float64
	Temperature float64
}

// Canonical renders f in the fixed field-delimited encoding.
func Canonical(f Fields) string {
	var b strings.Builder
	b.WriteString("sensor_id=")
	b.WriteString(strconv.FormatInt(f.SensorID, 10))
	b.WriteString(delimiter)
	b.WriteString("timestamp=")
	b.WriteString(strconv.FormatInt(f.Timestamp.Unix(), 10))
	b.WriteString(delimiter)
	b.WriteString("co2=")
	b.WriteString(formatFloat(f.CO2))
	b.WriteString(delimiter)
	b.WriteString("temperature=")
	b.WriteString(formatFloat(f.Temperature))
	return b.String()
}

// Of returns the hex digest of f.
func Of(f Fields) string {
	sum := blake2b.Sum256([]byte(Canonical(f)))
	return hex.EncodeToString(sum[:])
}

// Memo is the tagged string embedded in the ledger transaction.
func Memo(protocol, digest string) string {
	return protocol + ":" + version + ":" + digest
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', precision, 64)
	// -0.00 and 0.00 are the same reading.
	if s == "-0.00" {
		return "0.00"
	}
	return s
}
