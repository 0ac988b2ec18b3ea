package main

import (
	"errors"
	"log"
	"os"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("calc: ")
	if err := newRootCmd().Execute(); err != nil {
		// Failed expressions were already reported one by one.
		if !errors.Is(err, errFailed) {
			log.Print(err)
		}
		os.Exit(1)
	}
}
