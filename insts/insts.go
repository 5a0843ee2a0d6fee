// Package insts provides RV32I+M instruction formats and decoding.
//
// This package turns a raw 32-bit instruction word into a structured
// Instruction: opcode, format, combined funct code, register indices,
// and sign-extended (or, for U-type, deliberately un-extended — see
// Instruction) immediate. It does not execute anything; semantics live in
// package emu.
//
// Usage:
//
//	dec := insts.NewDecoder()
//	in, err := dec.Decode(0x00a58533) // add a0, a1, a0
package insts
