package medications

import (
	"fmt"
	"math"
	"time"
)

const (
	MaxNameLength = 100

	// MaxCount es el tope de dosage_mg y prescribed_per_day (columnas INTEGER).
	MaxCount = math.MaxInt32
)

// Medication es un medicamento prescrito con su dosis y esquema diario.
type Medication struct {
	ID string

	Name             string
	DosageMg         int
	PrescribedPerDay int // tomas esperadas por día

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m Medication) String() string {
	return fmt.Sprintf("%s (%dmg)", m.Name, m.DosageMg)
}

// Summary es el medicamento junto con su adherencia global.
type Summary struct {
	Medication
	Adherence float64
}
