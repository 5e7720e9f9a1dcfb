/*
Package analysis derives operational analytics from a loaded schedule.

It answers four questions about a route:

  - what is the canonical rider-facing station order, including routes that
    split into branches (StationOrder, MergeStationOrders)
  - which trips run express versus local in each geographic region they
    traverse, and during which hours (Classify, ExpressWindow, plus the
    skip-stop special case in AnalyzeSkipStop)
  - how long does it take to travel between any two stations, optionally
    restricted to a time-of-day window and combined across both directions
    (TravelTimeMatrix, CombineBidirectional)
  - how long does a rider wait between trains, for one route, an isolated
    branch, or a corridor served by several interchangeable routes
    (Headways, BranchHeadways, CombinedHeadways)

All functions are pure: they read the immutable schedule index and return
fresh derived values, so independent analyses may run concurrently. Absence
of data (no trips, fewer than two departures) yields empty results; only a
specific identifier that resolves to nothing, such as a branch terminal
name, is reported as a NotFoundError.
*/
package analysis
