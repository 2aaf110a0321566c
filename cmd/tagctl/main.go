// Command tagctl imports and exports tag configuration data against the same
// database the server uses, without going through the HTTP API.
//
// Usage:
//
//	tagctl import --industry Cement --equipment KILN generic_tags.xlsx
//	tagctl export tags --format xlsx --out ./exports
//	tagctl export generic-tags --industry Cement --equipment KILN
//	tagctl catalog --format json
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/plant-tag-config/config"
)

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd(config.New(), os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
