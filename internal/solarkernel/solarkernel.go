// Package solarkernel computes the sun's topocentric altitude at a UTC
// instant and samples it across a civil day. The algorithm is the
// Jean Meeus / NOAA Solar Position Algorithm chain: mean longitude and
// anomaly of the sun, equation of center, true and apparent longitude,
// obliquity of the ecliptic, declination, and hour angle, composed into
// altitude via the standard horizontal-coordinate formula.
//
// The implementation is pure and deterministic: no global state, no
// wall clock, no locale. Every function is a total function of its
// float64 inputs; there is no failure mode at this precision class
// (roughly 0.01 degrees of altitude over +/-100 years of the present
// epoch).
package solarkernel

import (
	"math"
	"time"

	"github.com/jcom-dev/chronos/internal/models"
)

const (
	julianDayJan12000    = 2451545.0
	julianDaysPerCentury = 36525.0
)

// julianDay returns the Julian Day for a UTC instant.
func julianDay(t time.Time) float64 {
	t = t.UTC()
	y, m, d := t.Date()
	year, month := float64(y), float64(m)
	if month <= 2 {
		year--
		month += 12
	}
	a := math.Floor(year / 100)
	b := 2 - a + math.Floor(a/4)

	dayFrac := float64(d) + (float64(t.Hour())+float64(t.Minute())/60+float64(t.Second())/3600+float64(t.Nanosecond())/3.6e12)/24

	return math.Floor(365.25*(year+4716)) + math.Floor(30.6001*(month+1)) + dayFrac + b - 1524.5
}

func julianCenturies(jd float64) float64 {
	return (jd - julianDayJan12000) / julianDaysPerCentury
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
func toDeg(rad float64) float64 { return rad * 180 / math.Pi }

func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// sunGeometricMeanLongitude in degrees.
func sunGeometricMeanLongitude(t float64) float64 {
	return normalizeDegrees(280.46646 + t*(36000.76983+0.0003032*t))
}

// sunGeometricMeanAnomaly in degrees.
func sunGeometricMeanAnomaly(t float64) float64 {
	return 357.52911 + t*(35999.05029-0.0001537*t)
}

// earthOrbitEccentricity, unitless.
func earthOrbitEccentricity(t float64) float64 {
	return 0.016708634 - t*(0.000042037+0.0000001267*t)
}

// sunEquationOfCenter in degrees.
func sunEquationOfCenter(t float64) float64 {
	m := toRad(sunGeometricMeanAnomaly(t))
	return math.Sin(m)*(1.914602-t*(0.004817+0.000014*t)) +
		math.Sin(2*m)*(0.019993-0.000101*t) +
		math.Sin(3*m)*0.000289
}

// sunTrueLongitude in degrees.
func sunTrueLongitude(t float64) float64 {
	return sunGeometricMeanLongitude(t) + sunEquationOfCenter(t)
}

// sunApparentLongitude in degrees (corrects for nutation and aberration
// via the omega term).
func sunApparentLongitude(t float64) float64 {
	trueLon := sunTrueLongitude(t)
	omega := 125.04 - 1934.136*t
	return trueLon - 0.00569 - 0.00478*math.Sin(toRad(omega))
}

// meanObliquityOfEcliptic in degrees.
func meanObliquityOfEcliptic(t float64) float64 {
	seconds := 21.448 - t*(46.8150+t*(0.00059-t*0.001813))
	return 23 + (26+seconds/60)/60
}

// obliquityCorrection in degrees.
func obliquityCorrection(t float64) float64 {
	omega := 125.04 - 1934.136*t
	return meanObliquityOfEcliptic(t) + 0.00256*math.Cos(toRad(omega))
}

// sunDeclination in degrees.
func sunDeclination(t float64) float64 {
	obliquity := toRad(obliquityCorrection(t))
	apparentLon := toRad(sunApparentLongitude(t))
	return toDeg(math.Asin(math.Sin(obliquity) * math.Sin(apparentLon)))
}

// equationOfTime returns the difference between true solar time and
// mean solar time, in minutes.
func equationOfTime(t float64) float64 {
	epsilon := toRad(obliquityCorrection(t) / 2)
	y := math.Tan(epsilon)
	y *= y

	l0 := toRad(sunGeometricMeanLongitude(t))
	e := earthOrbitEccentricity(t)
	m := toRad(sunGeometricMeanAnomaly(t))

	sin2l0 := math.Sin(2 * l0)
	sinm := math.Sin(m)
	cos2l0 := math.Cos(2 * l0)
	sin4l0 := math.Sin(4 * l0)
	sin2m := math.Sin(2 * m)

	eot := y*sin2l0 - 2*e*sinm + 4*e*y*sinm*cos2l0 - 0.5*y*y*sin4l0 - 1.25*e*e*sin2m
	return toDeg(eot) * 4
}

// Declination returns the sun's declination in degrees at a UTC instant.
// Exported so the Event Scheduler can evaluate the Asr shadow-ratio
// altitude from the noon declination without re-deriving the whole
// Meeus chain itself.
func Declination(instant time.Time) float64 {
	return sunDeclination(julianCenturies(julianDay(instant)))
}

// Altitude returns the sun's altitude above the horizon, in degrees, at
// a UTC instant for a geographic point. Positive is above the horizon,
// negative below. Refraction is not applied here: callers compare
// against the already-refraction-corrected -0.833 degree horizon
// threshold, not against a refracted altitude value.
func Altitude(instant time.Time, point models.GeoPoint) float64 {
	jd := julianDay(instant)
	t := julianCenturies(jd)

	eot := equationOfTime(t)
	decl := toRad(sunDeclination(t))

	// True solar time in minutes since local midnight UTC, corrected by
	// longitude (4 minutes per degree) and the equation of time.
	minutesUTC := float64(instant.UTC().Hour())*60 + float64(instant.UTC().Minute()) + float64(instant.UTC().Second())/60
	trueSolarTime := math.Mod(minutesUTC+eot+4*point.Lon, 1440)
	if trueSolarTime < 0 {
		trueSolarTime += 1440
	}

	hourAngleDeg := trueSolarTime/4 - 180
	hourAngle := toRad(hourAngleDeg)

	lat := toRad(point.Lat)
	sinAlt := math.Sin(lat)*math.Sin(decl) + math.Cos(lat)*math.Cos(decl)*math.Cos(hourAngle)
	sinAlt = math.Max(-1, math.Min(1, sinAlt))
	return toDeg(math.Asin(sinAlt))
}

// Sample is one (UTC instant, altitude degrees) pair on an AltitudeCurve.
type Sample struct {
	UTC      time.Time
	Altitude float64
}

// AltitudeCurve is an ordered, 1-minute-resolution sampling of the sun's
// altitude across a civil day, with enough lookahead past local
// midnight to resolve events that spill into the next civil day at
// high latitude (see SampleDay).
type AltitudeCurve struct {
	Samples []Sample
	Peak    Sample
	Nadir   Sample
}

// AltitudeAt returns the altitude at UTC instant t by nearest sample;
// callers needing sub-minute precision should call Altitude directly.
func (c AltitudeCurve) AltitudeAt(t time.Time) float64 {
	if len(c.Samples) == 0 {
		return 0
	}
	best := c.Samples[0]
	bestDiff := math.Abs(t.Sub(best.UTC).Seconds())
	for _, s := range c.Samples[1:] {
		d := math.Abs(t.Sub(s.UTC).Seconds())
		if d < bestDiff {
			best, bestDiff = s, d
		}
	}
	return best.Altitude
}

// SampleDay evaluates the sun's altitude at one-minute resolution across
// the 24-hour civil day defined by tz and date, extending one additional
// civil day of lookahead so that events which fall after local midnight
// at extreme latitudes (late Isha, early Fajr) remain detectable on the
// curve. Samples are clipped to the target civil day plus lookahead by
// the caller (the Event Scheduler); SampleDay itself never drops data.
func SampleDay(date time.Time, point models.GeoPoint, tz *time.Location) AltitudeCurve {
	y, m, d := date.In(tz).Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, tz)

	const (
		minutesPerDay  = 1440
		lookaheadDays  = 2 // target day + one extra civil day
		sampleInterval = time.Minute
	)

	total := minutesPerDay * lookaheadDays
	samples := make([]Sample, 0, total+1)

	var peak, nadir Sample
	peak.Altitude = math.Inf(-1)
	nadir.Altitude = math.Inf(1)

	for i := 0; i <= total; i++ {
		instant := startOfDay.Add(time.Duration(i) * sampleInterval)
		alt := Altitude(instant.UTC(), point)
		s := Sample{UTC: instant.UTC(), Altitude: alt}
		samples = append(samples, s)

		// Peak/nadir are reported for the target civil day only; the
		// lookahead samples exist purely to let the scheduler resolve
		// events that spill past local midnight.
		if i <= minutesPerDay {
			if alt > peak.Altitude {
				peak = s
			}
			if alt < nadir.Altitude {
				nadir = s
			}
		}
	}

	return AltitudeCurve{Samples: samples, Peak: peak, Nadir: nadir}
}
