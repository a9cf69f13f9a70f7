// Package main содержит консольную утилиту tvctl для работы с базой клиентов
// без HTTP-сервиса: просмотр, продление, выгрузка и загрузка данных.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := execute(newCLI(os.Stdin, os.Stdout), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
