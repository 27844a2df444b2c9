// Package cpu implements the Intel 8080 microprocessor and an assembler for it.
//
// State holds the complete architectural state: seven 8-bit registers, the
// flags register, the program counter, the stack pointer, 64KB of memory and
// the halt and interrupt-enable flip-flops. Step decodes and executes exactly
// one instruction against a State, performing port I/O through an io.Bus, and
// returns the number of clock cycles the real processor would have spent.
//
// Step is synchronous and never fails. Undefined opcodes execute as 4-cycle
// no-ops, and the undocumented aliases of NOP, JMP, CALL and RET decode as
// their canonical instruction.
//
// The assembler accepts the documented 8080 mnemonics with labels, macros,
// equates and compile-time expression evaluation.
package cpu
