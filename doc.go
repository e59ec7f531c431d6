/*
Package loopbuild builds atomic models for the missing segments ("loops") of a
macromolecular structure.

For every segment it runs a retry loop: a ModelGenerator produces a candidate
structure, the candidate is trimmed to the segment's residue range, scored by the
configured scorers and gated by the configured filters. Accepted candidates are
merged into one multi-model mmCIF file per segment, and the segments and models are
summarized in segments.csv and models.csv.

# Usage

	builder, err := loopbuild.New("1abc.cif", "out",
		loopbuild.WithFinder(finder),
		loopbuild.WithGenerator(generator),
		loopbuild.WithScorers(evaluate.ScorerFunc("rmsd", scoreRMSD)),
		loopbuild.WithFilters(threshold),
	)
	if err != nil {
		log.Fatal(err)
	}

	res, err := builder.Build(ctx, 5, loopbuild.WithMaxTries(100))
	if err != nil {
		log.Fatal(err)
	}
	for _, s := range res.Report.Segments {
		fmt.Println(s.Identifier, s.Accepted, s.Status)
	}

Generators, finders and quality tools are usually external programs; see
pkg/adapters/process for adapters that run them from a tools file.
*/
package loopbuild
