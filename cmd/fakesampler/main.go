// Command fakesampler stands in for the quantum factoring host script. Each
// run prints a few status lines and then one measured value on the last
// line, the way the real script does. It is used by the end-to-end tests and
// for trying the exec sampler without a simulator.
//
// Usage:
//
//	fakesampler [-seed S] [-fail] N
//
// About half of the outputs are nontrivial factors of N, the rest are odd
// integers below 2N. A fixed seed makes every run print the same value.
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
)

func main() {
	seed := flag.Uint64("seed", 0, "random seed (0 = random)")
	fail := flag.Bool("fail", false, "exit with status 1 without printing a value")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: fakesampler [-seed S] [-fail] N")
		os.Exit(2)
	}
	n, err := strconv.ParseUint(flag.Arg(0), 10, 64)
	if err != nil || n == 0 {
		fmt.Fprintf(os.Stderr, "invalid N %q\n", flag.Arg(0))
		os.Exit(2)
	}
	if *fail {
		fmt.Fprintln(os.Stderr, "simulator crashed")
		os.Exit(1)
	}

	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewPCG(*seed, n))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	fmt.Printf("Factoring N=%d\n", n)
	fmt.Println("Running Grover iterations...")
	fmt.Println(measure(rng, n))
}

// measure draws one output.
func measure(rng *rand.Rand, n uint64) uint64 {
	factors := nontrivialFactors(n)
	if len(factors) > 0 && rng.IntN(2) == 0 {
		return factors[rng.IntN(len(factors))]
	}
	// Odd values 1, 3, ..., 2n-1.
	return 2*rng.Uint64N(n) + 1
}

func nontrivialFactors(n uint64) []uint64 {
	var out []uint64
	for d := uint64(2); d*d <= n; d++ {
		if n%d == 0 {
			out = append(out, d)
			if d != n/d {
				out = append(out, n/d)
			}
		}
	}
	return out
}
