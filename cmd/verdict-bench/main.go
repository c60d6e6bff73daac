/*-------------------------------------------------------------------------
 *
 * main.go
 *    Bench CLI for the Verdict filter compiler
 *
 * Compiles a corpus of filter expressions repeatedly and reports
 * per-expression timing and plan size.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <support@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/cmd/verdict-bench/main.go
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/verdictml/verdict/internal/filter"
)

type benchCase struct {
	Name       string `json:"name"`
	Expression string `json:"-"`
}

type benchResult struct {
	Name         string  `json:"name"`
	Iterations   int     `json:"iterations"`
	Predicates   int     `json:"predicates"`
	ArgCount     int     `json:"arg_count"`
	AvgCompileUS float64 `json:"avg_compile_us"`
	MinCompileUS float64 `json:"min_compile_us"`
	MaxCompileUS float64 `json:"max_compile_us"`
}

var corpus = []benchCase{
	{
		Name:       "single-equality",
		Expression: `{"op":"eq","lhs":{"name":"label.key","dtype":"string"},"rhs":{"type":"string","value":"animal"}}`,
	},
	{
		Name: "conjunction",
		Expression: `{"op":"and","args":[
			{"op":"eq","lhs":{"name":"label.key","dtype":"string"},"rhs":{"type":"string","value":"animal"}},
			{"op":"eq","lhs":{"name":"label.value","dtype":"string"},"rhs":{"type":"string","value":"cat"}}]}`,
	},
	{
		Name: "negated-subtree",
		Expression: `{"op":"not","arg":{"op":"or","args":[
			{"op":"eq","lhs":{"name":"dataset.name","dtype":"string"},"rhs":{"type":"string","value":"validation"}},
			{"op":"eq","lhs":{"name":"model.name","dtype":"string"},"rhs":{"type":"string","value":"resnet50"}}]}}`,
	},
	{
		Name: "raster-area",
		Expression: `{"op":"and","args":[
			{"op":"eq","lhs":{"name":"label.key","dtype":"string"},"rhs":{"type":"string","value":"road"}},
			{"op":"gt","lhs":{"name":"annotation.raster","dtype":"raster","attribute":"area"},"rhs":{"type":"integer","value":100}}]}`,
	},
	{
		Name: "deep-mixed-tree",
		Expression: `{"op":"xor","args":[
			{"op":"and","args":[
				{"op":"eq","lhs":{"name":"label.key","dtype":"string"},"rhs":{"type":"string","value":"animal"}},
				{"op":"not","arg":{"op":"isnull","arg":{"name":"annotation.box","dtype":"box"}}}]},
			{"op":"or","args":[
				{"op":"eq","lhs":{"name":"datum.uid","dtype":"string"},"rhs":{"type":"string","value":"img-001"}},
				{"op":"eq","lhs":{"name":"datum.uid","dtype":"string"},"rhs":{"type":"string","value":"img-002"}}]}]}`,
	},
}

func main() {
	iterations := 1000
	if len(os.Args) > 1 {
		fmt.Sscanf(os.Args[1], "%d", &iterations)
	}
	if iterations <= 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [iterations]\n", os.Args[0])
		os.Exit(1)
	}

	results := make([]benchResult, 0, len(corpus))

	for _, bc := range corpus {
		expr, err := filter.Parse([]byte(bc.Expression))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: case %s failed to parse: %v\n", bc.Name, err)
			os.Exit(1)
		}

		var total, min, max time.Duration
		var query *filter.FinalQuery

		for i := 0; i < iterations; i++ {
			start := time.Now()
			query, err = filter.Compile(expr, filter.PivotDatum, filter.LinkGroundTruths, []string{"datums.id"})
			elapsed := time.Since(start)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: case %s failed to compile: %v\n", bc.Name, err)
				os.Exit(1)
			}

			total += elapsed
			if min == 0 || elapsed < min {
				min = elapsed
			}
			if elapsed > max {
				max = elapsed
			}
		}

		_, sets, err := filter.Linearize(expr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: case %s failed to linearize: %v\n", bc.Name, err)
			os.Exit(1)
		}

		results = append(results, benchResult{
			Name:         bc.Name,
			Iterations:   iterations,
			Predicates:   len(sets),
			ArgCount:     len(query.Args),
			AvgCompileUS: float64(total.Microseconds()) / float64(iterations),
			MinCompileUS: float64(min.Microseconds()),
			MaxCompileUS: float64(max.Microseconds()),
		})
	}

	output, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to encode results: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(output))
}
