package main

import (
	"github.com/labstack/gommon/color"
	"github.com/rolevate/roomgo/internal/app/broker"
)

func main() {
	printBanner()
	broker.Execute()
}

var version string

func printBanner() {
	banner := `
 ____   ___   ___  __  __
|  _ \ / _ \ / _ \|  \/  |
| |_) | | | | | | | |\/| |
|  _ <| |_| | |_| | |  | |
|_| \_\\___/ \___/|_|  |_|
 ____  _____ ____ ____ ___ ___  _   _
/ ___|| ____/ ___/ ___|_ _/ _ \| \ | |
\___ \|  _| \___ \___ \| | | | |  \| |
 ___) | |___ ___) |__) | | |_| | |\  |
|____/|_____|____/____/___\___/|_| \_| v: %s

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("github.com/rolevate/roomgo"))
}
