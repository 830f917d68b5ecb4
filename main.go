package main

import (
	"fmt"

	"github.com/othellosim/desim/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		fmt.Println(err.Error())
		return
	}
}
