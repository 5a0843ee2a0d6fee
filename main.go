// Package main provides a stub entry point for rv32isim.
//
// For the real CLI, use: go run ./cmd/rv32i
package main

import "fmt"

func main() {
	fmt.Println("rv32isim - RV32I+M instruction set interpreter")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rv32i' for the full CLI.")
}
