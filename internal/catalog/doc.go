// Package catalog persists the definitions of the GPIO lines this daemon
// manages: which pin each line binds to, its display name, and the level
// it is driven to on attach.
//
// The catalogue stores definitions only. The live on/off value lives in
// the driver's state register and is deliberately not persisted; a restart
// re-attaches every catalogued line at its configured default level.
//
// # Usage
//
//	repo := catalog.NewSQLiteRepository(db.DB)
//	defs, err := repo.List(ctx)
//	for _, def := range defs {
//	    manager.Attach(def.DriverConfig())
//	}
package catalog
