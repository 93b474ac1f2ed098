package detector

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// SpeedOfLight in m/s.
const SpeedOfLight = 299792458.0

// WGS-84 reference ellipsoid.
const (
	wgs84Radius     = 6378137.0
	wgs84Flattening = 1 / 298.257223563
)

// Site describes the location and arm orientation of an interferometer.
// Angles are radians; azimuths are measured East of North.
type Site struct {
	Latitude  float64
	Longitude float64
	Elevation float64 // metres above the ellipsoid
	XAzimuth  float64
	YAzimuth  float64
}

var sites = Set[Site]{
	H1: {
		Latitude:  0.81079526383,
		Longitude: -2.08405676917,
		Elevation: 142.554,
		XAzimuth:  5.65487724844,
		YAzimuth:  4.08408092164,
	},
	L1: {
		Latitude:  0.53342313506,
		Longitude: -1.58430937078,
		Elevation: -6.574,
		XAzimuth:  4.40317772346,
		YAzimuth:  2.83238139666,
	},
	V1: {
		Latitude:  0.76151183984,
		Longitude: 0.18333805213,
		Elevation: 51.884,
		XAzimuth:  0.33916285222,
		YAzimuth:  5.05155183261,
	},
}

// Site returns the site description of d.
func (d Detector) Site() Site {
	return sites[d]
}

// Vertex returns the Earth-fixed Cartesian position of the beam splitter.
func (s Site) Vertex() r3.Vec {
	e2 := wgs84Flattening * (2 - wgs84Flattening)
	sinLat, cosLat := math.Sincos(s.Latitude)
	sinLon, cosLon := math.Sincos(s.Longitude)
	n := wgs84Radius / math.Sqrt(1-e2*sinLat*sinLat)

	return r3.Vec{
		X: (n + s.Elevation) * cosLat * cosLon,
		Y: (n + s.Elevation) * cosLat * sinLon,
		Z: (n*(1-e2) + s.Elevation) * sinLat,
	}
}

// Arms returns the Earth-fixed unit vectors along the X and Y arms.
func (s Site) Arms() (x, y r3.Vec) {
	sinLat, cosLat := math.Sincos(s.Latitude)
	sinLon, cosLon := math.Sincos(s.Longitude)

	north := r3.Vec{X: -sinLat * cosLon, Y: -sinLat * sinLon, Z: cosLat}
	east := r3.Vec{X: -sinLon, Y: cosLon}

	arm := func(az float64) r3.Vec {
		sinAz, cosAz := math.Sincos(az)
		return r3.Add(r3.Scale(cosAz, north), r3.Scale(sinAz, east))
	}
	return arm(s.XAzimuth), arm(s.YAzimuth)
}

// Response returns the detector response tensor D = (x x^T - y y^T)/2.
func (s Site) Response() *mat.SymDense {
	x, y := s.Arms()

	d := mat.NewSymDense(3, nil)
	d.SymRankOne(d, 0.5, vec(x))
	d.SymRankOne(d, -0.5, vec(y))
	return d
}

// AntennaPattern returns the plus and cross responses of d to a source at
// right ascension ra and declination dec (radians) with polarization psi,
// observed at the given GPS time.
func (d Detector) AntennaPattern(ra, dec, psi, gps float64) (fplus, fcross float64) {
	gha := GMST(gps) - ra
	sinG, cosG := math.Sincos(gha)
	sinD, cosD := math.Sincos(dec)
	sinP, cosP := math.Sincos(psi)

	x := mat.NewVecDense(3, []float64{
		-cosP*sinG - sinP*cosG*sinD,
		-cosP*cosG + sinP*sinG*sinD,
		sinP * cosD,
	})
	y := mat.NewVecDense(3, []float64{
		sinP*sinG - cosP*cosG*sinD,
		sinP*cosG + cosP*sinG*sinD,
		cosP * cosD,
	})

	resp := d.Site().Response()
	fplus = mat.Inner(x, resp, x) - mat.Inner(y, resp, y)
	fcross = 2 * mat.Inner(x, resp, y)
	return fplus, fcross
}

// TimeDelayFromEarthCenter returns the arrival time at d minus the arrival
// time at the geocentre, in seconds, for a plane wave from (ra, dec).
func (d Detector) TimeDelayFromEarthCenter(ra, dec, gps float64) float64 {
	gha := GMST(gps) - ra
	sinG, cosG := math.Sincos(gha)
	sinD, cosD := math.Sincos(dec)

	toSource := r3.Vec{X: cosD * cosG, Y: -cosD * sinG, Z: sinD}
	return -r3.Dot(toSource, d.Site().Vertex()) / SpeedOfLight
}

// GMST returns Greenwich mean sidereal time (radians, [0, 2*pi)) at the
// given GPS time. A fixed 18 s GPS-UTC offset is applied.
func GMST(gps float64) float64 {
	const (
		gpsEpochJD = 2444244.5
		j2000JD    = 2451545.0
		leap       = 18.0
		day        = 86400.0
	)

	jd := gpsEpochJD + (gps-leap)/day
	t := (jd - j2000JD) / 36525

	sec := 67310.54841 + (876600*3600+8640184.812866)*t + 0.093104*t*t - 6.2e-6*t*t*t
	sec = math.Mod(sec, day)
	if sec < 0 {
		sec += day
	}
	return sec / day * 2 * math.Pi
}

func vec(v r3.Vec) *mat.VecDense {
	return mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
}
