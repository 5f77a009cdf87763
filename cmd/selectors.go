package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sigscan/internal/selectors"
)

var (
	selectorsFlags codeFlags
	selectorsGas   uint64
)

var selectorsCommand = &cobra.Command{
	Use:   "selectors",
	Short: "print function selectors found in the dispatcher",
	Long:  ``,
	Run: func(*cobra.Command, []string) {
		exit(printSelectors())
	},
}

func init() {
	selectorsFlags.register(selectorsCommand)
	selectorsCommand.Flags().Uint64Var(&selectorsGas, "gas", 0, "gas limit, 0 for default")
}

func printSelectors() error {
	if selectorsGas > 0 {
		cfg.SelectorsGas = selectorsGas
	}
	code, err := selectorsFlags.load()
	if err != nil {
		return err
	}
	found, gasUsed := selectors.Extract(code, cfg.SelectorsGas)
	log.Debugf("gas used %d", gasUsed)
	for _, sel := range selectors.Sorted(found) {
		fmt.Println(sel)
	}
	return nil
}
