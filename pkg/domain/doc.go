/*
Package domain contains the core domain models of the loop builder.

It defines the entities that flow through a build: the missing Segments found in a
parent structure, the SegmentModels accepted for them, the score mapping attached to
each model and the BuildReport summarizing a run. This package is kept pure and free
of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Segment: a missing residue region of one chain, with its accepted models.
  - SegmentModel: one accepted trial, its structural file and its scores.
  - Scores: the name -> value mapping written by scorers and read by filters.
  - LifecycleHooks: the structured events emitted by the build orchestrator.
  - BuildReport: the per-segment attempts, acceptances and final status of a run.
*/
package domain
