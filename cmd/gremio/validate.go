// Copyright 2026 © The Gremio Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jllopis/gremio/pkg/catalog"
)

type validateResult struct {
	Catalog checkResult   `json:"catalog"`
	Roles   []checkResult `json:"roles"`
	Overall string        `json:"overall"`
}

type checkResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "error"
	Message string `json:"message,omitempty"`
}

func runValidate(global globalFlags, args []string) {
	if len(args) != 1 {
		fatal(fmt.Errorf("usage: gremio validate <catalog file>"))
	}
	path := args[0]

	result := validateResult{Roles: []checkResult{}, Overall: "ok"}

	cat, err := catalog.LoadFile(path)
	if err != nil {
		result.Catalog = checkResult{
			Name:    path,
			Status:  "error",
			Message: err.Error(),
		}
		result.Overall = "error"
	} else {
		result.Catalog = checkResult{Name: path, Status: "ok"}
		for _, role := range cat.Roles {
			result.Roles = append(result.Roles, checkResult{
				Name:    role.Name,
				Status:  "ok",
				Message: fmt.Sprintf("%d skill(s)", len(role.Skills)),
			})
		}
	}

	if global.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fatal(err)
		}
	} else {
		printCheck(result.Catalog)
		for _, role := range result.Roles {
			printCheck(role)
		}
		fmt.Println("overall:", result.Overall)
	}

	if result.Overall != "ok" {
		os.Exit(1)
	}
}

func printCheck(c checkResult) {
	if c.Message != "" {
		fmt.Printf("%-8s %s (%s)\n", c.Status, c.Name, c.Message)
		return
	}
	fmt.Printf("%-8s %s\n", c.Status, c.Name)
}
