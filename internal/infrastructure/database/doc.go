// Package database opens and migrates the SQLite store behind the message
// journal.
//
// Open configures the connection for the journal's access pattern: WAL mode
// lets status reads proceed while the journal writes, and the pool is
// capped at one connection to match SQLite's single-writer model. Lock
// contention waits out the configured busy timeout instead of failing
// immediately. The database file is created on first open with 0600
// permissions.
//
//	db, err := database.Open(database.Config{
//	    Path:        cfg.Journal.Path,
//	    BusyTimeout: cfg.Journal.BusyTimeout,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Schema migrations are embedded through the migrations package and applied
// in version order. The schema stays additive so a down migration can
// always run: new columns are nullable or carry defaults, and nothing is
// dropped or renamed once released. Each version ships an .up.sql and a
// .down.sql file.
package database
