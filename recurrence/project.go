package recurrence

import (
	"time"

	"github.com/cyp0633/librecur/datetime"
)

// Projector maps zone-naive engine instants back into real zones. The system zone is
// injected so results do not depend on the process environment.
type Projector struct {
	system *time.Location
}

// NewProjector creates a Projector for system. Nil means time.Local.
func NewProjector(system *time.Location) *Projector {
	if system == nil {
		system = time.Local
	}
	return &Projector{system: system}
}

// Project returns the occurrence the naive instant stands for in origin. A universal
// origin shows the same absolute instant in the system zone. Any other origin keeps
// the instant's wall clock through the system zone and again into origin.
func (p *Projector) Project(instant time.Time, origin *time.Location) time.Time {
	if datetime.IsUniversal(origin) {
		return instant.In(p.system)
	}
	return datetime.KeepLocal(p.ProjectToSystemZone(instant), origin)
}

// ProjectToSystemZone keeps the instant's UTC wall clock and reads it in the system zone.
func (p *Projector) ProjectToSystemZone(instant time.Time) time.Time {
	return datetime.KeepLocal(instant.UTC(), p.system)
}
