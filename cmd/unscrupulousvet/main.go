// Command unscrupulousvet runs the unscrupulous analyzer as a vet tool.
//
//	go vet -vettool=$(which unscrupulousvet) ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/rawbytedev/unscrupulous/analyzer"
)

func main() { singlechecker.Main(analyzer.Analyzer) }
