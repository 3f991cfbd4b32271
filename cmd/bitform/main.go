// Command bitform is a small front end over the bitform library: it packs
// and unpacks dtype literals and runs schema files against bit-literal
// input, for exercising the library from a shell without writing Go.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dsnet/bitform/grammar"
	"github.com/dsnet/bitform/schema"
	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("bitform: ")

	rootCmd := &cobra.Command{
		Use:   "bitform",
		Short: "Inspect and exercise bitform dtype and schema definitions",
	}

	packCmd := &cobra.Command{
		Use:   "pack <dtype> <value>",
		Short: "Pack a value into its dtype's bit representation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := grammar.ParseBits(fmt.Sprintf("%s=%s", args[0], args[1]))
			if err != nil {
				return err
			}
			fmt.Println(b.String())
			return nil
		},
	}

	unpackCmd := &cobra.Command{
		Use:   "unpack <dtype> <bit-literal>",
		Short: "Unpack a bit literal according to a dtype",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := grammar.ParseDtype(args[0])
			if err != nil {
				return err
			}
			b, err := grammar.ParseBits(args[1])
			if err != nil {
				return err
			}
			val, consumed, err := d.Unpack(b)
			if err != nil {
				return err
			}
			fmt.Printf("%s (%d bits consumed of %d)\n", val, consumed, b.Len())
			return nil
		},
	}

	parseCmd := &cobra.Command{
		Use:   "parse <schema-file> <bit-literal>",
		Short: "Parse a bit literal against a schema file and print the value tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			root, err := grammar.ParseSchema(string(src))
			if err != nil {
				return err
			}
			b, err := grammar.ParseBits(args[1])
			if err != nil {
				return err
			}
			s := schema.New(root)
			consumed, err := s.Parse(b, 0)
			if err != nil {
				return err
			}
			val, err := s.Unpack()
			if err != nil {
				return err
			}
			fmt.Printf("consumed %d of %d bits\n", consumed, b.Len())
			printValue(os.Stdout, val, 0)
			return nil
		},
	}

	rootCmd.AddCommand(packCmd, unpackCmd, parseCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func printValue(w *os.File, v schema.Value, depth int) {
	indent := strings.Repeat("  ", depth)
	if v.Leaf {
		fmt.Fprintf(w, "%s%s: %s\n", indent, nameOrAnon(v.Name), v.Dtype)
		return
	}
	fmt.Fprintf(w, "%s%s:\n", indent, nameOrAnon(v.Name))
	for _, c := range v.Children {
		printValue(w, c, depth+1)
	}
}

func nameOrAnon(name string) string {
	if name == "" {
		return "<anon>"
	}
	return name
}
