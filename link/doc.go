// Package link places assembled blocks in memory and resolves the label
// references left in them by the assembler.
package link
