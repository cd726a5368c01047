package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/masmgr/githar-go/cmd"
)

func main() {
	cmd.Run()
}
