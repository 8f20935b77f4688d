package main

import (
	"fmt"

	"github.com/gosuri/uitable"
)

// printTable renders a header row plus whatever the fill callback adds.
func printTable(headers []string, fill func(add func(...interface{}))) {
	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = true

	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	table.AddRow(row...)

	fill(func(cells ...interface{}) {
		table.AddRow(cells...)
	})

	fmt.Println(table)
}
