package cmd

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/memory"
	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/sim"
	"github.com/sarchlab/vmsim/tracing"
	"github.com/sarchlab/vmsim/vm/mmu"
	"github.com/sarchlab/vmsim/vm/tlb"
	"github.com/sarchlab/vmsim/workload"
)

var runFlags = struct {
	numAccesses     uint64
	seed            int64
	traceFile       string
	maxAddress      uint64
	writeRatio      float64
	localityRatio   float64
	invalidateRatio float64

	pageSizeBits uint64
	l1Capacity   int
	l2Capacity   int
	l1LatencyNs  float64
	l2LatencyNs  float64
	walkLatency  int
	memLatency   int

	dbPath       string
	csvTracePath string
	traceDB      bool
	monitorPort  int
	openBrowser  bool
}{}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a workload against the simulated TLB",
	Long: `Run drives the simulated TLB with either a randomly generated ` +
		`workload or a trace file, then prints the TLB statistics and the ` +
		`simulated time.`,
	Run: func(cmd *cobra.Command, _ []string) {
		applyEnvDefaults(cmd)
		runSimulation(cmd)
		atexit.Exit(0)
	},
}

//nolint:funlen
func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Uint64Var(&runFlags.numAccesses,
		"num-accesses", 100000,
		"number of accesses to generate")
	runCmd.Flags().Int64Var(&runFlags.seed,
		"seed", 1,
		"seed of the random workload generator")
	runCmd.Flags().StringVar(&runFlags.traceFile,
		"trace-file", "",
		"replay accesses from a trace file instead of generating them")
	runCmd.Flags().Uint64Var(&runFlags.maxAddress,
		"max-address", 1<<30,
		"upper bound of the generated virtual addresses")
	runCmd.Flags().Float64Var(&runFlags.writeRatio,
		"write-ratio", 0.3,
		"fraction of accesses that are writes")
	runCmd.Flags().Float64Var(&runFlags.localityRatio,
		"locality-ratio", 0.8,
		"fraction of accesses that revisit a recent page")
	runCmd.Flags().Float64Var(&runFlags.invalidateRatio,
		"invalidate-ratio", 0.001,
		"fraction of operations that invalidate a recent page")

	runCmd.Flags().Uint64Var(&runFlags.pageSizeBits,
		"page-size-bits", 12,
		"page size as a power of 2")
	runCmd.Flags().IntVar(&runFlags.l1Capacity,
		"l1-capacity", 16,
		"number of entries in the L1 TLB")
	runCmd.Flags().IntVar(&runFlags.l2Capacity,
		"l2-capacity", 64,
		"number of entries in the L2 TLB")
	runCmd.Flags().Float64Var(&runFlags.l1LatencyNs,
		"l1-latency", 1,
		"L1 lookup latency in nanoseconds")
	runCmd.Flags().Float64Var(&runFlags.l2LatencyNs,
		"l2-latency", 4,
		"L2 lookup latency in nanoseconds")
	runCmd.Flags().IntVar(&runFlags.walkLatency,
		"walk-latency", 100,
		"page walk latency in cycles")
	runCmd.Flags().IntVar(&runFlags.memLatency,
		"mem-latency", 100,
		"memory write back latency in cycles")

	runCmd.Flags().StringVar(&runFlags.dbPath,
		"db", "",
		"record statistics into an SQLite database at this path")
	runCmd.Flags().StringVar(&runFlags.csvTracePath,
		"csv-trace", "",
		"write a task trace into a CSV file at this path")
	runCmd.Flags().BoolVar(&runFlags.traceDB,
		"db-trace", false,
		"also record the task trace into the database (requires --db)")
	runCmd.Flags().IntVar(&runFlags.monitorPort,
		"monitor", 0,
		"start the monitoring server on this port")
	runCmd.Flags().BoolVar(&runFlags.openBrowser,
		"open-browser", false,
		"open the monitoring page in a browser")
}

// applyEnvDefaults lets a .env file provide values for the flags that are
// not set on the command line.
func applyEnvDefaults(cmd *cobra.Command) {
	if !cmd.Flags().Changed("db") {
		if v, ok := os.LookupEnv("VMSIM_DB"); ok {
			runFlags.dbPath = v
		}
	}

	if !cmd.Flags().Changed("monitor") {
		if v, ok := os.LookupEnv("VMSIM_MONITOR_PORT"); ok {
			port, err := strconv.Atoi(v)
			if err != nil {
				log.Panicf("cannot parse VMSIM_MONITOR_PORT=%q", v)
			}
			runFlags.monitorPort = port
		}
	}
}

type statsTableEntry struct {
	L1Hits          uint64
	L1Misses        uint64
	L1Invalidations uint64
	L2Hits          uint64
	L2Misses        uint64
	L2Invalidations uint64
	WriteBacks      uint64
	SimulatedTime   float64
}

func runSimulation(cmd *cobra.Command) {
	clock := sim.NewAccumulator()

	dram := memory.MakeBuilder().
		WithClock(clock).
		WithLatency(runFlags.memLatency).
		Build("DRAM")

	walker := mmu.MakeBuilder().
		WithClock(clock).
		WithLog2PageSize(runFlags.pageSizeBits).
		WithPageWalkingLatency(runFlags.walkLatency).
		WithAutoPageAllocation(true).
		Build("MMU")

	theTLB := tlb.MakeBuilder().
		WithClock(clock).
		WithTranslationProvider(walker).
		WithWriteBackSink(dram).
		WithL1Capacity(runFlags.l1Capacity).
		WithL2Capacity(runFlags.l2Capacity).
		WithL1Latency(sim.VTimeInSec(runFlags.l1LatencyNs) * sim.Nanosecond).
		WithL2Latency(sim.VTimeInSec(runFlags.l2LatencyNs) * sim.Nanosecond).
		WithLog2PageSize(runFlags.pageSizeBits).
		Build("TLB")

	recorder := setupRecording(clock, theTLB, walker, dram)
	setupCSVTracing(clock, theTLB, walker, dram)

	runner := workload.NewRunner(theTLB, accessSource(cmd))

	monitorRun(clock, runner, theTLB, walker, dram)

	completed, err := runner.Run()
	if err != nil {
		log.Panicf("simulation failed after %d accesses: %s", completed, err)
	}

	reportStats(clock, theTLB, dram, recorder)
}

func accessSource(_ *cobra.Command) workload.AccessSource {
	if runFlags.traceFile != "" {
		file, err := os.Open(runFlags.traceFile)
		if err != nil {
			log.Panic(err)
		}

		atexit.Register(func() { file.Close() })

		return workload.NewTraceReader(file)
	}

	return workload.MakeGeneratorBuilder().
		WithSeed(runFlags.seed).
		WithNumAccesses(runFlags.numAccesses).
		WithMaxAddress(runFlags.maxAddress).
		WithWriteRatio(runFlags.writeRatio).
		WithLocalityRatio(runFlags.localityRatio).
		WithInvalidateRatio(runFlags.invalidateRatio).
		WithLog2PageSize(runFlags.pageSizeBits).
		Build()
}

func setupRecording(
	clock sim.TimeTeller,
	domains ...tracing.NamedHookable,
) datarecording.DataRecorder {
	if runFlags.dbPath == "" {
		return nil
	}

	recorder := datarecording.New(runFlags.dbPath)
	recorder.CreateTable("stats", statsTableEntry{})

	if runFlags.traceDB {
		tracer := tracing.NewDBTracer(clock, recorder)
		for _, d := range domains {
			tracing.CollectTrace(d, tracer)
		}
	}

	return recorder
}

func setupCSVTracing(
	clock sim.TimeTeller,
	domains ...tracing.NamedHookable,
) {
	if runFlags.csvTracePath == "" {
		return
	}

	writer := tracing.NewCSVTraceWriter(runFlags.csvTracePath)
	writer.Init()

	tracer := tracing.NewCSVTracer(clock, writer)
	for _, d := range domains {
		tracing.CollectTrace(d, tracer)
	}
}

func monitorRun(
	clock sim.TimeTeller,
	runner *workload.Runner,
	components ...sim.Component,
) {
	if runFlags.monitorPort == 0 {
		return
	}

	monitor := monitoring.NewMonitor().
		WithPortNumber(runFlags.monitorPort)
	if runFlags.openBrowser {
		monitor = monitor.WithBrowser()
	}

	monitor.RegisterClock(clock)
	monitor.RegisterRunner(runner)
	for _, c := range components {
		monitor.RegisterComponent(c)
	}

	total := runFlags.numAccesses
	if runFlags.traceFile != "" {
		total = 0
	}
	bar := monitor.CreateProgressBar("accesses", total)
	runner.WithProgressCounter(bar)

	monitor.StartServer()
}

func reportStats(
	clock sim.TimeTeller,
	theTLB *tlb.Comp,
	dram *memory.Comp,
	recorder datarecording.DataRecorder,
) {
	fmt.Printf("L1 hits:            %d\n", theTLB.L1Hits())
	fmt.Printf("L1 misses:          %d\n", theTLB.L1Misses())
	fmt.Printf("L1 invalidations:   %d\n", theTLB.L1Invalidations())
	fmt.Printf("L2 hits:            %d\n", theTLB.L2Hits())
	fmt.Printf("L2 misses:          %d\n", theTLB.L2Misses())
	fmt.Printf("L2 invalidations:   %d\n", theTLB.L2Invalidations())
	fmt.Printf("Frame write backs:  %d\n", dram.WriteBackCount())
	fmt.Printf("Simulated time:     %.10f s\n", clock.CurrentTime())

	if recorder != nil {
		recorder.InsertData("stats", statsTableEntry{
			L1Hits:          theTLB.L1Hits(),
			L1Misses:        theTLB.L1Misses(),
			L1Invalidations: theTLB.L1Invalidations(),
			L2Hits:          theTLB.L2Hits(),
			L2Misses:        theTLB.L2Misses(),
			L2Invalidations: theTLB.L2Invalidations(),
			WriteBacks:      dram.WriteBackCount(),
			SimulatedTime:   float64(clock.CurrentTime()),
		})
		recorder.Flush()
	}
}
