package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"survivorrl/internal/state"
)

func runEncode(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	path := fs.String("state", "", "observation JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("encode requires --state")
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		return err
	}
	var obs state.Observation
	if err := json.Unmarshal(data, &obs); err != nil {
		return fmt.Errorf("decode observation %s: %w", *path, err)
	}
	if !state.Validate(obs) {
		return fmt.Errorf("observation %s is not valid", *path)
	}

	fmt.Println(formatVector(state.Encode(obs)))
	return nil
}

func runDecode(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	vector := fs.String("vector", "", "comma-separated state vector")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *vector == "" {
		return errors.New("decode requires --vector")
	}

	values, err := parseFloatList(*vector)
	if err != nil {
		return err
	}
	if len(values) != state.VectorSize {
		return fmt.Errorf("state vector must have %d values, got %d", state.VectorSize, len(values))
	}
	return printJSON(state.Decode(values))
}

func formatVector(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
