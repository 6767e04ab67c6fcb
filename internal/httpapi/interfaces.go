package httpapi

import (
	"github.com/adilkt/fleetbook/internal/service/emi"
	"github.com/adilkt/fleetbook/internal/service/report"
	"github.com/adilkt/fleetbook/internal/service/share"
	"github.com/adilkt/fleetbook/internal/service/vehicle"
)

// Store is the full storage surface the HTTP layer wires into the services.
// The embedded interfaces overlap (GetVehicle and friends appear in several);
// any store satisfying all of them may back the API.
type Store interface {
	vehicle.Repo
	vehicle.Writer
	report.Repo
	share.Repo
	share.Writer
	emi.Repo
	emi.Writer
}
