package presolve_test

import (
	"fmt"
	"log"

	"github.com/bartolsthoorn/gopresolve/presolve"
	"github.com/bartolsthoorn/gopresolve/simplex"
)

func ExampleModel_Solve() {
	model := presolve.Model{
		ColCosts: []float64{1.0, 1.0},
		ColLower: []float64{0.0, 0.0},
		ColUpper: []float64{0.5, 0.5},
	}
	model.AddEqRow([]float64{1.0, 1.0}, 1.0) // x + y = 1

	solution, err := model.Solve(simplex.NewSolver())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(solution.Status)
	fmt.Printf("%.2f %.2f\n", solution.ColValues[0], solution.ColValues[1])
	// Output:
	// Optimal
	// 0.50 0.50
}

func ExamplePresolve() {
	model := presolve.Model{
		ColCosts: []float64{1.0, 1.0},
		ColLower: []float64{0.0, 0.0},
		ColUpper: []float64{0.5, 0.5},
	}
	model.AddEqRow([]float64{1.0, 1.0}, 1.0)

	p, err := presolve.Presolve(&model)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(p.Model.NumVars(), p.Model.NumConstraints())

	// The reduced model is empty, so there is nothing left to solve.
	solution, err := p.Postsolve(&presolve.Solution{Status: presolve.ModelStatusModelEmpty})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%.2f %.2f objective %.2f\n", solution.ColValues[0], solution.ColValues[1], solution.Objective)
	// Output:
	// 0 0
	// 0.50 0.50 objective 1.00
}
