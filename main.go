// personreg は人物レコードを管理するHTTP APIサーバー。
//
// 使い方:
//
//	personreg [serve|migrate|healthcheck]
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/personreg/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "personreg: %v\n", err)
		os.Exit(1)
	}
}
