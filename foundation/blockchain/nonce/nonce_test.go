package nonce_test

import (
	"testing"

	"github.com/racechain/racechain/foundation/blockchain/nonce"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_NoRepeats(t *testing.T) {
	t.Log("Given the need to validate the nonce stream never repeats.")
	{
		t.Logf("\tTest 0:\tWhen drawing enough values to span several chunks.")
		{
			gen := nonce.NewGeneratorWithSeed(1)

			const draws = 350_000
			seen := make(map[uint64]struct{}, draws)

			for i := 0; i < draws; i++ {
				n := gen.Next()
				if _, exists := seen[n]; exists {
					t.Fatalf("\t%s\tTest 0:\tShould never produce %d twice (draw %d).", failed, n, i)
				}
				seen[n] = struct{}{}
			}
			t.Logf("\t%s\tTest 0:\tShould never produce a value twice across %d draws.", success, draws)
		}
	}
}

func Test_Reproducible(t *testing.T) {
	t.Log("Given the need to validate seeded streams are reproducible.")
	{
		t.Logf("\tTest 0:\tWhen two generators share a seed.")
		{
			gen1 := nonce.NewGeneratorWithSeed(42)
			gen2 := nonce.NewGeneratorWithSeed(42)

			for i := 0; i < 1_000; i++ {
				if n1, n2 := gen1.Next(), gen2.Next(); n1 != n2 {
					t.Fatalf("\t%s\tTest 0:\tShould produce identical streams: draw %d got %d and %d.", failed, i, n1, n2)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould produce identical streams.", success)
		}

		t.Logf("\tTest 1:\tWhen two generators use different seeds.")
		{
			gen1 := nonce.NewGeneratorWithSeed(1)
			gen2 := nonce.NewGeneratorWithSeed(2)

			diverged := false
			for i := 0; i < 1_000; i++ {
				if gen1.Next() != gen2.Next() {
					diverged = true
					break
				}
			}

			if !diverged {
				t.Fatalf("\t%s\tTest 1:\tShould produce different orderings.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould produce different orderings.", success)
		}
	}
}
