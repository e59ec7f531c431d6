/*
Package ports defines the driven ports (interfaces) of the loop builder.

These interfaces decouple the orchestrator from the programs that place residues and
locate gaps, and from where build reports are kept.

# Key Interfaces

  - ModelGenerator: produces a full candidate structure for one segment trial.
  - SegmentFinder: locates the missing segments of a parent structure.
  - ReportStore: persists BuildReports by run id (file, redis or memory).
  - DistributedLocker: serializes builds that share an output location.
*/
package ports
