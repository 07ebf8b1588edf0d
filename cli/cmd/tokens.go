package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/repr"
	"github.com/rdnformat/rdn/rdnparser"
	"github.com/spf13/cobra"
)

var (
	tokensCmd = &cobra.Command{
		Use:   "tokens <file>",
		Short: "Dump the token stream of an RDN document for debugging",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				_ = cmd.Help()
				return errors.New("need to specify argument <file>")
			}
			opts, err := readerOptions()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			r := rdnparser.NewReader(data, true, rdnparser.NewReaderState(opts))
			for {
				ok, err := r.Read()
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				if !ok {
					return nil
				}
				fmt.Printf("%4d %-14s %s\n",
					r.TokenStartIndex(), r.TokenKind(), repr.String(string(r.ValueSpan())))
			}
		},
	}
)

func init() {
	rootCmd.AddCommand(tokensCmd)
}
