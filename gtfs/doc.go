/*
Package gtfs loads a static GTFS schedule and indexes it for analysis.

The index is an immutable snapshot of one published schedule: routes, trips,
per-trip stop sequences with clock times, and stops with parent-station
links. Clock times are parsed at load time into un-normalized service-day
seconds, so post-midnight values like "25:15:00" survive intact; a malformed
clock time fails the load.

# Basic Usage

Load from a feed zip or extracted directory:

	index, err := gtfs.Load("gtfs.zip")
	if err != nil {
	    log.Fatal(err)
	}

	trips := index.TripsFor("A", "0", "Weekday")
	stopTimes := index.StopTimesFor(trips[0].ID)
	parent := index.ParentID("H11N") // "H11"

# Performance: Cache the Index

Parse the feed once at startup and keep the index in memory. For repeated
CLI runs against the same feed, a SQLite snapshot avoids re-parsing:

	db, _ := gtfs.OpenDB("schedule.db")
	_ = index.SaveTo(db)

	// later
	index, _ = gtfs.LoadFrom(db)

# Determinism

Every accessor that returns a collection returns it in a sorted, stable
order. Analyses built on the index are pure functions of their inputs, so
repeated runs produce byte-identical derived tables.
*/
package gtfs
