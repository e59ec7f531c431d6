package loopbuild_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aretw0/loopbuild"
	"github.com/aretw0/loopbuild/internal/testutils"
	"github.com/aretw0/loopbuild/pkg/adapters/memory"
	"github.com/aretw0/loopbuild/pkg/domain"
	"github.com/aretw0/loopbuild/pkg/evaluate"
	"github.com/aretw0/loopbuild/pkg/ports"
	"github.com/aretw0/loopbuild/pkg/structure"
)

// ExampleBuilder_Build builds two models for one loop with an in-process generator
// and keeps only candidates with enough atoms.
func ExampleBuilder_Build() {
	out, err := os.MkdirTemp("", "loopbuild-example-")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(out)

	generator := ports.GeneratorFunc(func(_ context.Context, seg *domain.Segment, trialID, _ string) (*structure.Document, error) {
		cif := testutils.BuildCIF("candidate", testutils.ChainResidues("B", 598, 606))
		return structure.Parse(strings.NewReader(cif), trialID)
	})

	threshold, err := evaluate.NewThreshold("enough_atoms", evaluate.Config{"key": "atom_count", "min": 8})
	if err != nil {
		log.Fatal(err)
	}
	atoms, err := evaluate.NewAtomCount("", nil)
	if err != nil {
		log.Fatal(err)
	}

	builder, err := loopbuild.New("1abc.cif", out,
		loopbuild.WithFinder(memory.NewFinder(domain.Segment{
			Identifier:        "loop_1",
			ChainName:         "B",
			ResidueStartSeqID: 600,
			ResidueNames:      []string{"GLY", "ALA"},
		})),
		loopbuild.WithGenerator(generator),
		loopbuild.WithScorers(atoms),
		loopbuild.WithFilters(threshold),
	)
	if err != nil {
		log.Fatal(err)
	}

	res, err := builder.Build(context.Background(), 2)
	if err != nil {
		log.Fatal(err)
	}
	for _, s := range res.Report.Segments {
		fmt.Println(s.Identifier, s.Accepted, s.Attempts, s.Status)
	}
	// Output:
	// loop_1 2 2 quota
}
