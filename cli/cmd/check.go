package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rdnformat/rdn"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	checkCmd = &cobra.Command{
		Use:   "check [file...]",
		Short: "Validate RDN documents; reads stdin when no files are given",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readerOptions()
			if err != nil {
				return err
			}

			failed := 0
			if len(args) == 0 {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return err
				}
				if !report("<stdin>", data, opts) {
					failed++
				}
			}
			for _, filename := range args {
				data, err := os.ReadFile(filename)
				if err != nil {
					logrus.Errorf("%s: %v", filename, err)
					failed++
					continue
				}
				if !report(filename, data, opts) {
					failed++
				}
			}
			if failed > 0 {
				return errors.New(fmt.Sprintf("%d document(s) failed validation", failed))
			}
			return nil
		},
	}
)

func report(filename string, data []byte, opts rdn.Options) bool {
	_, err := rdn.Parse(data, opts)
	if err == nil {
		fmt.Printf("%s: ok\n", filename)
		return true
	}
	var perr *rdn.ParseError
	if errors.As(err, &perr) {
		pos := perr.Err.Pos
		msg := fmt.Sprintf("%s:%d:%d: %s (at %s)", filename, pos.Line, pos.Col, perr.Err.Reason, perr.Path)
		if term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Printf("\x1b[31m%s\x1b[0m\n", msg)
		} else {
			fmt.Println(msg)
		}
	} else {
		fmt.Printf("%s: %v\n", filename, err)
	}
	return false
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
