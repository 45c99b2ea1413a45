// Package main inspects network archive files: it lists the archived
// generations and summarizes the weight distribution of a chosen record.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/klepto/archive"
)

func main() {
	// CLI flags
	archivePath := flag.String("archive", "", "Archive file to inspect (required)")
	generation := flag.Int("generation", -1, "Generation to summarize (-1 = list records only)")
	flag.Parse()

	if *archivePath == "" {
		log.Fatal("--archive is required")
	}

	r, err := archive.OpenReader(*archivePath)
	if err != nil {
		log.Fatalf("failed to open archive: %v", err)
	}
	defer r.Close()

	gens := r.Generations()
	if len(gens) == 0 {
		log.Fatalf("%s holds no records", *archivePath)
	}

	if *generation < 0 {
		listRecords(r, gens)
		return
	}
	summarize(r, *generation)
}

func listRecords(r *archive.Reader, gens []int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "generation\tindividuals\tstate size\tcompressed bytes")
	for _, g := range gens {
		snap, err := r.Extract(g)
		if err != nil {
			log.Fatalf("failed to read record %d: %v", g, err)
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", snap.Generation, snap.Count, snap.StateSize, len(snap.Compressed))
	}
	w.Flush()
}

func summarize(r *archive.Reader, generation int) {
	snap, err := r.Extract(generation)
	if err != nil {
		log.Fatalf("failed to read record: %v", err)
	}

	data := make([]float32, snap.Count*snap.StateSize)
	if err := snap.Decompress(data); err != nil {
		log.Fatalf("failed to decompress record: %v", err)
	}

	values := make([]float64, len(data))
	zeros := 0
	min, max := float64(data[0]), float64(data[0])
	for i, v := range data {
		f := float64(v)
		values[i] = f
		if f == 0 {
			zeros++
		}
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
	}

	fmt.Printf("generation:   %d\n", snap.Generation)
	fmt.Printf("individuals:  %d\n", snap.Count)
	fmt.Printf("state size:   %d floats\n", snap.StateSize)
	fmt.Printf("weight mean:  %.6f\n", stat.Mean(values, nil))
	fmt.Printf("weight std:   %.6f\n", stat.StdDev(values, nil))
	fmt.Printf("weight range: [%.6f, %.6f]\n", min, max)
	fmt.Printf("zero weights: %d (%.1f%%)\n", zeros, 100*float64(zeros)/float64(len(values)))
}
