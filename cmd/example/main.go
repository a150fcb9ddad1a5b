package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/bartolsthoorn/gopresolve/presolve"
	"github.com/bartolsthoorn/gopresolve/simplex"
)

func main() {
	verbose := flag.Bool("v", false, "log every reduction")
	passes := flag.Int("passes", presolve.DefaultPasses, "maximum number of presolve passes")
	flag.Parse()

	// Minimize: 2a + 3b + c + d
	// Subject to:
	//   a + b     >= 2
	//   b + c      = 3
	//   c + d     <= 4
	//   2d        <= 3
	//   0 <= a,b,c,d <= 10
	model := presolve.Model{
		ColCosts: []float64{2.0, 3.0, 1.0, 1.0},
		ColLower: []float64{0.0, 0.0, 0.0, 0.0},
		ColUpper: []float64{10.0, 10.0, 10.0, 10.0},
	}
	model.AddGeRow([]float64{1.0, 1.0, 0.0, 0.0}, 2.0)
	model.AddEqRow([]float64{0.0, 1.0, 1.0, 0.0}, 3.0)
	model.AddLeRow([]float64{0.0, 0.0, 1.0, 1.0}, 4.0)
	model.AddDenseRow(math.Inf(-1), []float64{0.0, 0.0, 0.0, 2.0}, 3.0)

	level := presolve.LogSummary
	if *verbose {
		level = presolve.LogTrace
	}
	logger := &presolve.Logger{Level: level, Msg: os.Stderr}

	p, err := presolve.Presolve(&model, presolve.WithPasses(*passes), presolve.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Reduced model: %d rows, %d columns\n", p.Model.NumConstraints(), p.Model.NumVars())

	reduced, err := simplex.NewSolver().Solve(p.Model)
	if err != nil {
		log.Fatal(err)
	}
	if !reduced.HasSolution() {
		fmt.Println("Status:", reduced.Status)
		return
	}

	solution, err := p.Postsolve(reduced)
	if err != nil {
		log.Fatal(err)
	}
	for j, v := range solution.ColValues {
		fmt.Printf("x%d = %.2f (%s)\n", j, v, solution.ColBasis[j])
	}
	for i := range solution.RowBasis {
		fmt.Printf("row %d: activity %.2f, dual %.2f (%s)\n", i, solution.Activity(i), solution.Dual(i), solution.RowBasis[i])
	}
	fmt.Printf("Objective = %.2f\n", solution.Objective)
}
