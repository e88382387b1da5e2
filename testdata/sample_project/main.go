package main

import (
	"fmt"

	"example.com/sample/auth"
)

func main() {
	fmt.Println(auth.Token("demo"))
}
