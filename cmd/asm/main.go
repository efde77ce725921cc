package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli"

	xasm "xasm"
)

func main() {
	app := cli.NewApp()
	app.Name = "xasm"
	app.Usage = "cross-assembler for the 6502 instruction-set family"
	app.ArgsUsage = "source.asm"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "cpu", Value: "6502", Usage: "target CPU: 6502, 65SC02, 65C02, 45GS02, 65816"},
		cli.BoolFlag{Name: "x", Usage: "strip hex-listing columns from the input before parsing"},
		cli.BoolFlag{Name: "d", Usage: "write a pass/symbol debug trace to Debug.lst"},
		cli.StringSliceFlag{Name: "D", Usage: "define a symbol as NAME=VALUE, locked against redefinition"},
		cli.BoolFlag{Name: "i", Usage: "ignore case in symbols"},
		cli.BoolFlag{Name: "n", Usage: "include line numbers in the listing"},
		cli.BoolFlag{Name: "p", Usage: "write preprocessed source to source.pp"},
		cli.BoolFlag{Name: "b", Usage: "enable branch optimization"},
		cli.IntFlag{Name: "errmax", Value: 50, Usage: "stop after this many non-fatal errors"},
	}
	app.Action = runAssemble
	app.Commands = []cli.Command{
		{
			Name:   "man",
			Usage:  "print the manual page",
			Hidden: true,
			Action: func(c *cli.Context) error {
				man, err := app.ToMan()
				if err != nil {
					return cli.NewExitError(err.Error(), 1)
				}
				fmt.Println(man)
				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAssemble(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.NewExitError("missing source file argument", 1)
	}
	source := c.Args().First()

	// Without an explicit -cpu, a `.src` source keeps Options.CPU unset so
	// NewAssembler applies its BSO default (45GS02).
	var cpu xasm.CPU
	if c.IsSet("cpu") || !strings.HasSuffix(strings.ToLower(source), ".src") {
		var ok bool
		cpu, ok = xasm.ParseCPUFlag(c.String("cpu"))
		if !ok {
			return cli.NewExitError(fmt.Sprintf("unrecognized -cpu value %q", c.String("cpu")), 1)
		}
	}

	defines, err := parseDefines(c.StringSlice("D"))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	opts := xasm.Options{
		InputFile:          source,
		CPU:                cpu,
		IgnoreCase:         c.Bool("i"),
		StripHex:           c.Bool("x"),
		Defines:            defines,
		IncludeLineNumbers: c.Bool("n"),
		WritePreproc:       c.Bool("p"),
		BranchOpt:          c.Bool("b"),
		ErrorMax:           c.Int("errmax"),
	}

	if c.Bool("d") {
		f, err := os.Create("Debug.lst")
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		defer f.Close()
		opts.Debug = xasm.NewTraceLogger(f)
	}

	asm := xasm.NewAssembler(opts)
	errs, fatalErr := asm.Assemble()
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, e.Error())
	}
	if fatalErr != nil {
		return cli.NewExitError(fatalErr.Error(), 1)
	}
	if len(errs) > 0 {
		return cli.NewExitError(fmt.Sprintf("%d error(s)", len(errs)), 1)
	}

	if err := xasm.WriteStores(asm); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	if opts.WritePreproc {
		if err := os.WriteFile(siblingPath(source, ".pp"), []byte(strings.Join(asm.PreprocessedSource(), "\n")+"\n"), 0o644); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
	}

	if err := os.WriteFile(siblingPath(source, ".lst"), []byte(xasm.WriteListing(asm)+"\n"+xasm.WriteCrossReference(asm)), 0o644); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	return nil
}

// siblingPath derives an output filename from the source path by
// replacing its extension, e.g. "src/main.asm" -> "src/main.lst".
func siblingPath(source, ext string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + ext
}

func parseDefines(raw []string) (map[string]int, error) {
	out := make(map[string]int)
	for _, d := range raw {
		name, valStr, ok := strings.Cut(d, "=")
		if !ok {
			return nil, fmt.Errorf("malformed -D %q, want NAME=VALUE", d)
		}
		val, err := strconv.ParseInt(strings.TrimSpace(valStr), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed -D value in %q: %w", d, err)
		}
		out[strings.TrimSpace(name)] = int(val)
	}
	return out, nil
}
