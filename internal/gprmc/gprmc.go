// Package gprmc renders the fixed-position GPRMC sentence the emitter puts on the wire.
//
// The sentence ends with a bare '*' and carries no checksum digits. Consumers of this
// fixture expect exactly that shape, it is not NMEA 0183 conformant.
package gprmc

import (
	"time"
)

const (
	Prefix     = "$GPRMC,"
	Terminator = "*"

	Status    = "A"
	Latitude  = "4722.6790,N"
	Longitude = "0832.7730,E"
	Speed     = "00.0"
	Track     = "00.0"
	Variation = "0.0,E"
	Mode      = "A"

	// Go reference layouts for the two variable fields
	timeLayout = "150405"
	dateLayout = "020106"
)

// Format returns the sentence for the given instant, using the location carried by t
func Format(t time.Time) string {
	return Prefix +
		t.Format(timeLayout) + "," +
		Status + "," +
		Latitude + "," +
		Longitude + "," +
		Speed + "," +
		Track + "," +
		t.Format(dateLayout) + "," +
		Variation + "," +
		Mode + Terminator
}
