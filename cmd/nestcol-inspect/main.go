package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"nestcol/colfile"
	"nestcol/columnar"
	"nestcol/ingest"
)

func main() {
	var (
		inPath      = flag.String("in", "", "Path or HTTP(S) URL of the parquet file to inspect")
		outPath     = flag.String("out", "", "Optional output path; flattened rows are written there as a columnar file")
		compression = flag.String("compression", "snappy", "Data page compression for -out: none, gzip, snappy or zstd")
		limit       = flag.Int("limit", 0, "Maximum number of rows to read (0 = all)")
	)
	flag.Parse()

	if *inPath == "" {
		fmt.Println("Usage: nestcol-inspect -in <file.parquet> [-out <file.ncf>] [-limit N]")
		fmt.Println("Examples:")
		fmt.Println("  nestcol-inspect -in data/people.parquet")
		fmt.Println("  nestcol-inspect -in https://example.com/people.parquet -limit 1000")
		fmt.Println("  nestcol-inspect -in data/people.parquet -out people.ncf -compression zstd")
		flag.PrintDefaults()
		os.Exit(1)
	}

	reader, err := ingest.Open(*inPath)
	if err != nil {
		log.Fatalf("Failed to open input: %v", err)
	}
	defer reader.Close()

	fmt.Printf("File: %s (%d rows)\n", *inPath, reader.NumRows())

	columns, err := reader.ReadTable(*limit)
	if err != nil {
		log.Fatalf("Failed to read table: %v", err)
	}

	table := make(columnar.Table, len(columns))
	for i, col := range columns {
		table[i] = col.View()
	}

	fields := reader.Schema().Fields()
	fmt.Printf("\nColumns (%d):\n", len(table))
	for i, col := range table {
		printColumn(fields[i].Name(), col, 1)
	}

	flattened, err := columnar.FlattenNestedColumns(table, nil, nil, columnar.NullabilityForce)
	if err != nil {
		log.Fatalf("Failed to flatten table: %v", err)
	}

	fmt.Printf("\nFlattened leaves (%d):\n", flattened.Table.NumColumns())
	for i, leaf := range flattened.Table {
		fmt.Printf("  [%d] %-8s rows=%d nulls=%d\n", i, leaf.DataType, leaf.Size, leaf.NullCount())
	}

	if *outPath == "" {
		return
	}

	comp, err := colfile.ParseCompressionType(*compression)
	if err != nil {
		log.Fatalf("Invalid compression: %v", err)
	}
	opts := colfile.DefaultOptions()
	opts.DataCompression = comp

	writer, err := colfile.NewChunkedWriter(*outPath, colfile.SchemaFromTable(flattened.Table), opts)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	if err := writer.WriteChunk(flattened.Table); err != nil {
		log.Fatalf("Failed to write chunk: %v", err)
	}
	if err := writer.Close(); err != nil {
		log.Fatalf("Failed to close output file: %v", err)
	}
	fmt.Printf("\nWrote %d rows to %s (%s)\n", flattened.Table.NumRows(), *outPath, comp)
}

// printColumn prints one column and, for structs, its members indented
func printColumn(name string, v columnar.ColumnView, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	fmt.Printf("%s%-12s %-8s rows=%d nulls=%d\n", indent, name, v.DataType, v.Size, v.NullCount())
	if v.DataType == columnar.DataTypeStruct {
		for c := range v.Children {
			printColumn(fmt.Sprintf("m%d", c), v.Child(c), depth+1)
		}
	}
}
