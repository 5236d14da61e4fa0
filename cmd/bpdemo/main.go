// Command bpdemo runs a single-value range proof, an aggregated
// multi-value range proof, and a batch verification of several proofs
// together, printing generation and verification timings for each.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"golang.org/x/sync/errgroup"

	"github.com/takakv/ristretto-bulletproofs/batch"
	"github.com/takakv/ristretto-bulletproofs/curve"
	"github.com/takakv/ristretto-bulletproofs/generators"
	"github.com/takakv/ristretto-bulletproofs/rangeproof"
	"github.com/takakv/ristretto-bulletproofs/transcript"
)

type options struct {
	Bits        int `short:"n" long:"bits" default:"32" description:"bit width of each range proof"`
	Aggregation int `short:"m" long:"aggregation" default:"4" description:"number of values in the aggregated demo proof"`
	BatchSize   int `short:"b" long:"batch" default:"8" description:"number of independent proofs to batch-verify"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}

	pcGens := generators.DefaultPedersenGens()
	bpGens := generators.NewBulletproofGens("bpdemo v1", 64, opts.BatchSize*opts.Aggregation)

	runSingle(bpGens, pcGens, opts.Bits)
	runAggregated(bpGens, pcGens, opts.Bits, opts.Aggregation)
	runBatch(bpGens, pcGens, opts.Bits, opts.BatchSize)
}

func runSingle(bpGens *generators.BulletproofGens, pcGens *generators.PedersenGens, n int) {
	fmt.Println("Single-value range proof")

	v := uint64(1037578891)
	vBlinding := curve.MustRandomScalar()

	startProve := time.Now()
	proverTr := transcript.New("bpdemo single")
	proof, commitment, err := rangeproof.ProveSingle(bpGens, pcGens, proverTr, v, vBlinding, n)
	if err != nil {
		fmt.Println("prove failed:", err)
		return
	}
	fmt.Println("Prove time:", time.Since(startProve))

	encoded, err := proof.MarshalBinary()
	if err != nil {
		fmt.Println("encode failed:", err)
		return
	}
	fmt.Println("Proof size (bytes):", len(encoded))

	startVerify := time.Now()
	verifierTr := transcript.New("bpdemo single")
	err = proof.VerifySingle(bpGens, pcGens, verifierTr, commitment, n)
	fmt.Println("Verify time:", time.Since(startVerify))
	fmt.Println("Valid:", err == nil)
	fmt.Println()
}

func runAggregated(bpGens *generators.BulletproofGens, pcGens *generators.PedersenGens, n, m int) {
	fmt.Println("Aggregated range proof")

	values := make([]uint64, m)
	blindings := make([]curve.Scalar, m)
	for i := range values {
		values[i] = uint64(1000000+i) * uint64(i+1)
		blindings[i] = curve.MustRandomScalar()
	}

	startProve := time.Now()
	proverTr := transcript.New("bpdemo aggregated")
	proof, commitments, err := rangeproof.ProveMultiple(bpGens, pcGens, proverTr, values, blindings, n)
	if err != nil {
		fmt.Println("prove failed:", err)
		return
	}
	fmt.Println("Prove time:", time.Since(startProve))

	startVerify := time.Now()
	verifierTr := transcript.New("bpdemo aggregated")
	err = proof.VerifyMultiple(bpGens, pcGens, verifierTr, commitments, n)
	fmt.Println("Verify time:", time.Since(startVerify))
	fmt.Println("Valid:", err == nil)
	fmt.Println()
}

func runBatch(bpGens *generators.BulletproofGens, pcGens *generators.PedersenGens, n, count int) {
	fmt.Println("Batch verification")

	startProve := time.Now()
	views := make([]batch.ProofView, count)
	var group errgroup.Group
	group.SetLimit(4)
	for i := 0; i < count; i++ {
		i := i
		group.Go(func() error {
			v := uint64(500000 + i)
			vBlinding := curve.MustRandomScalar()

			proverTr := transcript.New("bpdemo batch")
			proof, commitment, err := rangeproof.ProveSingle(bpGens, pcGens, proverTr, v, vBlinding, n)
			if err != nil {
				return err
			}
			views[i] = batch.ProofView{
				Proof:            proof,
				Transcript:       transcript.New("bpdemo batch"),
				ValueCommitments: []curve.Point{commitment},
				N:                n,
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		fmt.Println("prove failed:", err)
		return
	}
	fmt.Println("Prove time (", count, "proofs, 4-way parallel):", time.Since(startProve))

	start := time.Now()
	err := batch.VerifyBatch(bpGens, pcGens, views)
	fmt.Println("Batch verify time:", time.Since(start))
	fmt.Println("Valid:", err == nil)
}
