// coldcopy-bench drives the coldcopy core through the standard benchmark
// matrix: the same fixed copy pattern measured under each eviction strategy.
// It owns everything the core deliberately does not: iteration counts,
// repetition, summary statistics and reporting.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/coldbench/coldcopy"
)

type caseSpec struct {
	name string
	cfg  coldcopy.Config
}

func main() {
	var (
		evictor    = flag.String("evictor", "all", "eviction strategy: none, lineflush, bulkoverwrite, tlbinvalidate, all")
		copies     = flag.Int("copies", coldcopy.DefaultCopyCount, "buffer copies per pool")
		iterations = flag.Int("iterations", 10000, "measured iterations per case")
		sourceSize = flag.Int("source-size", coldcopy.DefaultSourceSize, "source pattern size in bytes")
		scratchMB  = flag.Int("scratch-mb", coldcopy.DefaultScratchMultiple*coldcopy.L3CacheSize/(1024*1024), "bulk-overwrite scratch size in MB")
		guardMB    = flag.Int("guard-mb", coldcopy.DefaultGuardPadding/(1024*1024), "scratch guard padding in MB")
		repeats    = flag.Int("repetitions", 4, "repetitions per case")
		session    = flag.String("log", "", "session name for JSON logging (empty disables)")
	)
	flag.Parse()

	if *session != "" {
		if err := coldcopy.InitRunLogger(*session); err != nil {
			log.Fatalf("init run logger: %v", err)
		}
	}

	cases := buildCases(*evictor, *copies, *iterations, *sourceSize, *scratchMB, *guardMB)
	if len(cases) == 0 {
		fmt.Fprintf(os.Stderr, "unknown evictor %q\n", *evictor)
		os.Exit(1)
	}

	for _, cs := range cases {
		for rep := 0; rep < *repeats; rep++ {
			runCase(cs, rep, *session != "")
		}
	}

	if *session != "" {
		fmt.Printf("\nsession log: %s\n", coldcopy.SessionFile())
	}
}

func buildCases(evictor string, copies, iterations, sourceSize, scratchMB, guardMB int) []caseSpec {
	base := coldcopy.Config{
		SourceSize:     sourceSize,
		CopyCount:      copies,
		Alignment:      coldcopy.PageAlign,
		PerCopyPadding: coldcopy.PageAlign,
		Iterations:     iterations,
	}

	all := []caseSpec{
		{name: "rotation_only", cfg: withEvictor(base, coldcopy.EvictorNone, scratchMB, guardMB)},
		{name: "line_flush", cfg: withEvictor(base, coldcopy.EvictorLineFlush, scratchMB, guardMB)},
		{name: "capacity_flush", cfg: withEvictor(base, coldcopy.EvictorBulkOverwrite, scratchMB, guardMB)},
		{name: "tlb_toggle", cfg: withEvictor(base, coldcopy.EvictorTlbInvalidate, scratchMB, guardMB)},
	}

	switch strings.ToLower(evictor) {
	case "all":
		return all
	case "none":
		return all[:1]
	case "lineflush":
		return all[1:2]
	case "bulkoverwrite":
		return all[2:3]
	case "tlbinvalidate":
		return all[3:4]
	}
	return nil
}

func withEvictor(cfg coldcopy.Config, kind coldcopy.EvictorKind, scratchMB, guardMB int) coldcopy.Config {
	cfg.Evictor = kind
	if kind == coldcopy.EvictorBulkOverwrite {
		cfg.ScratchSize = scratchMB * 1024 * 1024
		cfg.GuardPadding = guardMB * 1024 * 1024
	}
	return cfg
}

func runCase(cs caseSpec, rep int, logging bool) {
	cycle, err := coldcopy.NewBenchmarkCycle(cs.cfg)
	if err != nil {
		fmt.Printf("%-16s rep %d: skipped (%v)\n", cs.name, rep, err)
		if logging {
			coldcopy.LogRunError(cs.name, err)
		}
		return
	}

	res, err := cycle.Run()
	if err != nil {
		fmt.Printf("%-16s rep %d: failed (%v)\n", cs.name, rep, err)
		if logging {
			coldcopy.LogRunError(cs.name, err)
		}
		return
	}

	mean, p50, p99 := summarize(res.Durations)
	perIter := float64(res.TotalBytesMoved) / float64(res.SampleCount)
	fmt.Printf("%-16s rep %d: %6d samples  mean %8.1f ns  p50 %8.1f ns  p99 %8.1f ns  %6.2f GB/s  alloc %d MB\n",
		cs.name, rep, res.SampleCount,
		mean*1e9, p50*1e9, p99*1e9,
		perIter/mean/1e9,
		res.TotalBytesAllocated/(1024*1024))

	if logging {
		coldcopy.LogRunRecord(coldcopy.NewRunRecord(fmt.Sprintf("%s_rep%d", cs.name, rep), cs.cfg, res))
	}
}

func summarize(durations []float64) (mean, p50, p99 float64) {
	if len(durations) == 0 {
		return 0, 0, 0
	}
	sorted := append([]float64{}, durations...)
	sort.Float64s(sorted)
	var sum float64
	for _, d := range sorted {
		sum += d
	}
	mean = sum / float64(len(sorted))
	p50 = sorted[len(sorted)/2]
	p99 = sorted[int(math.Ceil(float64(len(sorted))*0.99))-1]
	return mean, p50, p99
}
