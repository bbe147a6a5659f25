// cmd/cirtc/main.go is the translation core's demonstration harness: it
// reads a JSON fixture standing in for a semantic analyzer's resolved AST
// (spec §1 excludes lexing/parsing/semantic analysis) and drives
// internal/translator end to end, printing a summary of the produced
// ir.Module. This mirrors the teacher's cmd/sentra entry point in spirit —
// a thin binary wrapping the library packages — built with cobra the way
// the pack's z80opt CLI is, rather than the teacher's own hand-rolled flag
// dispatch, since cobra is the stack this module commits to (see DESIGN.md).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cirt/internal/ir"
	"cirt/internal/targetenv"
	"cirt/internal/translator"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "cirtc",
		Short: "cirtc translates a resolved C AST fixture into IR",
	}
	root.AddCommand(newTranslateCommand())
	return root
}

func newTranslateCommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "translate <fixture.json>",
		Short: "Translate a JSON AST fixture into an IR module summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading fixture: %w", err)
			}
			tu, err := decodeFixture(data)
			if err != nil {
				return fmt.Errorf("decoding fixture: %w", err)
			}

			oracle := targetenv.NewDefaultOracle(targetenv.DefaultConfig())
			t := translator.New(oracle)
			module, err := t.Translate(tu)
			if err != nil {
				return fmt.Errorf("translating: %w", err)
			}

			printModuleSummary(cmd, module, verbose)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every lowered instruction")
	return cmd
}

func printModuleSummary(cmd *cobra.Command, module *ir.Module, verbose bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "module %s\n", module.ModuleID)
	fmt.Fprintf(out, "  %d type entries, %d identifiers, %d named data objects\n",
		len(module.Types), len(module.Identifiers), len(module.NamedData))
	fmt.Fprintf(out, "  %d string literals, %d inline-asm descriptors\n",
		len(module.StringLiterals), len(module.InlineAssemblies))

	for name, fn := range module.Functions {
		fmt.Fprintf(out, "  function %s: %d instructions\n", name, len(fn.Body.Instructions))
		if !verbose {
			continue
		}
		for i, instr := range fn.Body.Instructions {
			fmt.Fprintf(out, "    %4d: %s\n", i, instr.Op)
		}
	}
}
