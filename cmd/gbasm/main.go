// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezrec/gbasm/isa"
	"github.com/ezrec/gbasm/toolchain"
	"github.com/ezrec/gbasm/translate"
)

func main() {
	opts := toolchain.DefaultOptions()
	var lang string

	rootCmd := &cobra.Command{
		Use:   "gbasm [flags] input.asm",
		Short: "Assembler for the Game Boy and Intel 8080",
		Long: `gbasm assembles a source file into a flat binary image, starting at
address zero. Blocks without an explicit [org(...)] follow the block
before them, and label references are resolved when linking.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if len(lang) != 0 {
				if err = translate.SetLanguage(lang); err != nil {
					return
				}
			}
			return opts.Run(args[0])
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.Arch, "arch", "a", opts.Arch,
		"target architecture ("+strings.Join(isa.Names(), ", ")+")")
	flags.StringVarP(&opts.Output, "output", "o", "", "output binary (default: input with a .gb extension)")
	flags.StringVar(&opts.Symbols, "output-symbols", "", "symbol file to write")
	flags.StringVar(&opts.Listing, "listing", "", "listing file to write")
	flags.StringVar(&opts.Sprites, "sprites", "", "sprite sheet image (PNG, GIF, JPEG or BMP) to embed")
	flags.IntVar(&opts.SpritesOrg, "sprites-org", opts.SpritesOrg, "address of the sprite sheet block")
	flags.StringArrayVarP(&opts.Defines, "define", "D", nil, "predefine a constant, as NAME=EXPR")
	flags.BoolVar(&opts.AllowOverlap, "allow-overlap", false, "let later blocks overwrite earlier ones")
	flags.StringVar(&lang, "lang", "", "language of diagnostics (default: system locale)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose mode")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(toolchain.Diagnostic(err))
		os.Exit(1)
	}
}
