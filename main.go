package main

import (
	"fmt"
	"os"

	"fjacquet/spendcat/cmd/categories"
	"fjacquet/spendcat/cmd/insights"
	"fjacquet/spendcat/cmd/model"
	"fjacquet/spendcat/cmd/predict"
	"fjacquet/spendcat/cmd/root"
	"fjacquet/spendcat/cmd/train"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(predict.Cmd)
	root.Cmd.AddCommand(train.Cmd)
	root.Cmd.AddCommand(insights.Cmd)
	root.Cmd.AddCommand(model.Cmd)
	root.Cmd.AddCommand(categories.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
