// Command sheafbench drives concurrent push/pop load against a sheaf.Stack
// and, for comparison, against the external ring buffer the teacher repo
// this module was built from benchmarks itself against. It renders a
// throughput-over-time chart with go-echarts, the same tool the teacher
// repo pulls in for exactly this purpose.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	lenshood "github.com/LENSHOOD/go-lock-free-ring-buffer"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/00xc-go/sheaf"
)

func main() {
	slots := flag.Int("slots", 8, "number of sheaf slots / producer-consumer pairs")
	duration := flag.Duration("duration", 2*time.Second, "how long to drive each benchmark")
	sampleEvery := flag.Duration("sample", 100*time.Millisecond, "throughput sampling interval")
	out := flag.String("out", "sheafbench.html", "output HTML chart path")
	flag.Parse()

	sheafSamples := runSheafBench(*slots, *duration, *sampleEvery)
	ringSamples := runRingBench(*slots, *duration, *sampleEvery)

	if err := renderChart(*out, sheafSamples, ringSamples, *sampleEvery); err != nil {
		log.Fatalf("sheafbench: %v", err)
	}
	fmt.Printf("wrote %s\n", *out)
}

// runSheafBench pushes and pops from nslots goroutine pairs against a
// single sheaf.Stack, sampling cumulative successful-op counts every
// sampleEvery.
func runSheafBench(nslots int, duration, sampleEvery time.Duration) []float64 {
	provider := sheaf.NewHeapProvider(4096)
	stack, err := sheaf.New(nslots, provider)
	if err != nil {
		log.Fatalf("sheafbench: sheaf.New: %v", err)
	}
	defer stack.Release()

	var ops atomic.Uint64
	stop := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < nslots; i++ {
		wg.Add(2)
		slotIdx := i
		go func() {
			defer wg.Done()
			var v uint64
			for {
				select {
				case <-stop:
					return
				default:
				}
				if stack.Push(v, slotIdx) == nil {
					v++
					ops.Add(1)
				}
			}
		}()
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if _, err := stack.Pop(slotIdx); err == nil {
					ops.Add(1)
				}
			}
		}()
	}

	samples := sampleThroughput(duration, sampleEvery, &ops)
	close(stop)
	wg.Wait()
	return samples
}

// runRingBench drives the same workload shape against the external
// comparison ring buffer.
//
// New/Offer/Poll below reconstruct github.com/LENSHOOD/go-lock-free-ring-buffer
// v0.2.0's surface from the teacher's import alone; its source was not part
// of the retrieval pack and isn't reachable from this environment, so this
// signature is unverified — confirm it against the real module (pkg.go.dev
// or `go doc`) before depending on this command. A mismatch only breaks
// this standalone benchmark binary, not the sheaf package itself. See
// DESIGN.md.
func runRingBench(nslots int, duration, sampleEvery time.Duration) []float64 {
	rb := lenshood.New[uint64](uint64(1024))

	var ops atomic.Uint64
	stop := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < nslots; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			var v uint64
			for {
				select {
				case <-stop:
					return
				default:
				}
				if rb.Offer(v) {
					v++
					ops.Add(1)
				}
			}
		}()
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if _, ok := rb.Poll(); ok {
					ops.Add(1)
				}
			}
		}()
	}

	samples := sampleThroughput(duration, sampleEvery, &ops)
	close(stop)
	wg.Wait()
	return samples
}

// sampleThroughput records the cumulative op count every sampleEvery until
// duration elapses, returning per-interval deltas (ops/interval).
func sampleThroughput(duration, sampleEvery time.Duration, ops *atomic.Uint64) []float64 {
	ticker := time.NewTicker(sampleEvery)
	defer ticker.Stop()

	deadline := time.Now().Add(duration)
	var samples []float64
	var last uint64

	for time.Now().Before(deadline) {
		<-ticker.C
		cur := ops.Load()
		samples = append(samples, float64(cur-last))
		last = cur
	}
	return samples
}

func renderChart(path string, sheafSamples, ringSamples []float64, sampleEvery time.Duration) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "sheaf vs. reference ring buffer throughput",
			Subtitle: fmt.Sprintf("ops per %s window", sampleEvery),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "sample"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ops/window"}),
	)

	n := len(sheafSamples)
	if len(ringSamples) > n {
		n = len(ringSamples)
	}
	xAxis := make([]string, n)
	for i := range xAxis {
		xAxis[i] = fmt.Sprintf("%d", i)
	}

	line.SetXAxis(xAxis).
		AddSeries("sheaf", toLineData(sheafSamples, n)).
		AddSeries("reference ring buffer", toLineData(ringSamples, n))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return line.Render(f)
}

func toLineData(samples []float64, n int) []opts.LineData {
	data := make([]opts.LineData, n)
	for i := range data {
		if i < len(samples) {
			data[i] = opts.LineData{Value: samples[i]}
		} else {
			data[i] = opts.LineData{Value: 0}
		}
	}
	return data
}
