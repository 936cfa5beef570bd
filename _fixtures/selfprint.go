package main

import "fmt"

// scratch is a writable word-aligned region memory round-trip tests can
// safely peek and poke without corrupting the running program.
var scratch [64]byte

func main() {
	fmt.Println("hello")
}
