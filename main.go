package main

import "github.com/Aashish23092/ocr-green-finance/cmd"

func main() {
	cmd.Execute()
}
