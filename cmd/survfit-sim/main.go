// Dev tool to generate synthetic censored survival data and check that
// the closed-form estimator recovers the true rate
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/grekov/survfit/internal/fit"
	"github.com/grekov/survfit/internal/model"
)

func main() {
	n := flag.Int("n", 500, "observations to generate")
	rate := flag.Float64("rate", 0.1, "true exponential rate")
	censorAt := flag.Float64("censor-at", 15, "administrative censoring time")
	seed := flag.Uint64("seed", 42, "random seed")
	out := flag.String("out", "", "optional CSV output path")
	flag.Parse()

	src := rand.NewSource(*seed)
	exp := distuv.Exponential{Rate: *rate, Src: src}

	obs := make([]model.Observation, *n)
	censored := 0
	for i := range obs {
		t := exp.Rand()
		if t > *censorAt {
			obs[i] = model.Observation{Time: *censorAt, Censored: true}
			censored++
		} else {
			obs[i] = model.Observation{Time: t}
		}
	}

	fmt.Printf("Generated %d observations, true rate %g, %d censored at t=%g (%.1f%%)\n",
		*n, *rate, censored, *censorAt, 100*float64(censored)/float64(*n))

	if *out != "" {
		if err := writeCSV(*out, obs); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *out)
	}

	ds, err := model.NewDataset(obs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	estimates, err := fit.Fit(ds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	est := estimates[0]
	relErr := (est.Rate - *rate) / *rate
	fmt.Printf("MLE: %g (%d events over %.2f exposure), relative error %+.2f%%\n",
		est.Rate, est.Events, est.Exposure, 100*relErr)
}

func writeCSV(path string, obs []model.Observation) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := fmt.Fprintln(f, "time,event"); err != nil {
		return err
	}
	for _, o := range obs {
		event := 1
		if o.Censored {
			event = 0
		}
		if _, err := fmt.Fprintf(f, "%g,%d\n", o.Time, event); err != nil {
			return err
		}
	}
	return nil
}
