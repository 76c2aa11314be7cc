package main

import (
	"github.com/labstack/gommon/color"
	"github.com/rolevate/roomgo/internal/app/status"
)

func main() {
	printBanner()
	status.Execute()
}

var version string

func printBanner() {
	banner := `
 ____   ___   ___  __  __
|  _ \ / _ \ / _ \|  \/  |
| |_) | | | | | | | |\/| |
|  _ <| |_| | |_| | |  | |
|_| \_\\___/ \___/|_|  |_|
 ____ _____  _  _____ _   _ ____
/ ___|_   _|/ \|_   _| | | / ___|
\___ \ | | / _ \ | | | | | \___ \
 ___) || |/ ___ \| | | |_| |___) |
|____/ |_/_/   \_\_|  \___/|____/  v: %s

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("github.com/rolevate/roomgo"))
}
