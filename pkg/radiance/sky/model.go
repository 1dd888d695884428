package sky

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/radsky/radsky/pkg/gendaylit"
	"github.com/radsky/radsky/pkg/sunpath"
	"github.com/radsky/radsky/pkg/wea"
)

// sunpathModel is the production SunModel: solar geometry from pkg/sunpath
// and disc radiance from pkg/gendaylit.
type sunpathModel struct {
	sp *sunpath.Sunpath
}

// NewSunpathModel builds the production SunModel for a site. north is the
// scene north rotation in degrees clockwise from true north.
func NewSunpathModel(site wea.Location, north float64) SunModel {
	return &sunpathModel{
		sp: sunpath.New(site.Latitude, site.Longitude, site.TimeZone, north),
	}
}

func (m *sunpathModel) Position(month, day int, hour float64) (float64, r3.Vec) {
	sun := m.sp.Position(month, day, hour)
	return sun.AltitudeDeg, sun.Vector()
}

func (m *sunpathModel) Radiance(altitudeDeg float64, month, day int, hour, dnr, dhr float64) (float64, error) {
	return gendaylit.SolarRadiance(altitudeDeg, month, day, hour, dnr, dhr)
}
