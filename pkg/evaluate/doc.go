/*
Package evaluate implements the scorer/filter pipeline that gates acceptance of trial
models.

A Scorer computes metrics and records them in the model's score mapping; it never
rejects. A Filter reads the mapping and returns whether the model is acceptable.
Every evaluator carries a display identifier and an immutable Config assembled from
three layers: BaseDefaults, the kind's defaults and the caller's overrides.

The Pipeline runs all scorers unconditionally, in order, then the filters in order,
stopping at the first rejection.
*/
package evaluate
