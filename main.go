package main

import (
	"context"
	"log"
	"os"

	"github.com/hashmap-kz/slackrep/cmd"
)

func main() {
	if err := cmd.App().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
