// Package main provides the entry point for rv32isim.
// rv32isim is a functional RV32I+M instruction set interpreter.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/madenetwork/rv32isim/emu"
	"github.com/madenetwork/rv32isim/loader"
)

var (
	memSize  = flag.Uint64("mem", 1<<20, "guest memory size in bytes")
	block    = flag.Uint64("block", 1024, "instructions to execute per poll of the video port")
	maxSteps = flag.Uint64("max", 0, "stop after this many instructions (0 = run until a fault)")
	pcFlag   = flag.String("pc", "", "override the entry point (hex, e.g. 0x1000)")
	spFlag   = flag.String("sp", "", "override the initial stack pointer (hex, e.g. 0x8000)")
	verbose  = flag.Bool("v", false, "verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: rv32i [options] <program.elf>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	prog, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	pc0 := prog.EntryPoint
	if *pcFlag != "" {
		pc0, err = parseHexWord(*pcFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -pc: %v\n", err)
			os.Exit(1)
		}
	}

	sp0 := prog.InitialSP
	if *spFlag != "" {
		sp0, err = parseHexWord(*spFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -sp: %v\n", err)
			os.Exit(1)
		}
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", programPath)
		fmt.Printf("Entry point: 0x%08x\n", pc0)
		fmt.Printf("Stack pointer: 0x%08x\n", sp0)
		fmt.Printf("Text range: [0x%08x, 0x%08x)\n", prog.TextStart, prog.TextEnd)
		fmt.Printf("Segments: %d\n", len(prog.Segments))
	}

	segments := make([]emu.LoadSegment, len(prog.Segments))
	for i, seg := range prog.Segments {
		segments[i] = emu.LoadSegment{Addr: seg.VirtAddr, Data: seg.Data}
	}

	cpu := emu.NewCPU()
	if err := cpu.Load(segments, uint32(*memSize), prog.TextStart, prog.TextEnd, pc0, sp0); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading into guest memory: %v\n", err)
		os.Exit(1)
	}

	exitCode := run(cpu)
	os.Exit(exitCode)
}

// run drives the CPU forward in blocks of *block steps, polling the
// video port between blocks, until the core faults or -max is reached.
func run(cpu *emu.CPU) int {
	for {
		for i := uint64(0); i < *block; i++ {
			if *maxSteps != 0 && cpu.InstructionCount() >= *maxSteps {
				if *verbose {
					fmt.Printf("Stopped after %d instructions (-max reached)\n", cpu.InstructionCount())
				}
				return 0
			}

			if _, err := cpu.Step(); err != nil {
				fmt.Fprintf(os.Stderr, "Execution halted: %v\n", err)
				if *verbose {
					fmt.Printf("Instructions executed: %d\n", cpu.InstructionCount())
				}
				return 1
			}
		}

		if sample, updated, err := emu.PollVideoPort(cpu.Memory()); err != nil {
			fmt.Fprintf(os.Stderr, "Video port read failed: %v\n", err)
			return 1
		} else if updated && *verbose {
			fmt.Printf("ball: (%d, %d)\n", sample.BallLeft, sample.BallTop)
		}
	}
}

func parseHexWord(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, err
	}
	if v > 0xFFFFFFFF {
		return 0, fmt.Errorf("%w: 0x%x does not fit in 32 bits", emu.ErrValueOverflow, v)
	}
	return uint32(v), nil
}
